package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
    uid, ok := c.Get(ctxUserID).(uint64)
    return uid, ok && uid > 0
}

// Role returns the role claim stored by JWTAuth, or "" for anonymous requests.
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// subjectKey is the identity used in rate-limit keys; "anon" when no token
// has been verified yet.
func subjectKey(c echo.Context) string {
    if uid, ok := UserID(c); ok {
        return strconv.FormatUint(uid, 10)
    }
    return "anon"
}

func parseUint(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) }
