package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinema-booking/internal/config"
)

// teeWriter forwards the response and keeps up to limit bytes of the body.
type teeWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (w *teeWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
    if room := w.limit - w.size; w.limit <= 0 {
        w.buf.Write(b)
    } else if room > 0 {
        w.buf.Write(b[:min(int64(len(b)), room)])
    }
    w.size += int64(len(b))
    return w.ResponseWriter.Write(b)
}

// cacheKey is prefix:route:digest so every entry of a route can be purged
// with one pattern.
func cacheKey(prefix string, c echo.Context) string {
    r := c.Request()
    sum := sha1.Sum([]byte(r.Method + "?" + r.URL.RawQuery))
    return fmt.Sprintf("%s:%s:%x", prefix, c.Path(), sum)
}

// Payload layout: [4 status][4 header length][header JSON][body].
func packResponse(status int, header http.Header, body []byte) ([]byte, error) {
    hdr, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8, 8+len(hdr)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
    out = append(out, hdr...)
    return append(out, body...), nil
}

func unpackResponse(bs []byte) (int, http.Header, []byte, bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status := int(binary.BigEndian.Uint32(bs[0:4]))
    n := int(binary.BigEndian.Uint32(bs[4:8]))
    if n < 0 || 8+n > len(bs) {
        return 0, nil, nil, false
    }
    hdr := http.Header{}
    if n > 0 {
        if err := json.Unmarshal(bs[8:8+n], &hdr); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, hdr, bs[8+n:], true
}

// NewRedisCache replays successful responses for the configured methods from
// Redis, marking them with X-Cache HIT or MISS. Only catalogue routes are
// wrapped with it.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    limit := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            key := cacheKey(cfg.Prefix, c)
            res := c.Response()

            if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
                if status, hdr, body, ok := unpackResponse(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            res.Header().Add(k, v)
                        }
                    }
                    res.Header().Set("X-Cache", "HIT")
                    res.WriteHeader(status)
                    _, err := res.Write(body)
                    return err
                }
            }

            tw := &teeWriter{ResponseWriter: res.Writer, status: http.StatusOK, limit: limit}
            res.Writer = tw
            res.Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            // truncated bodies are never stored
            if tw.status != http.StatusOK || (limit > 0 && tw.size > limit) {
                return nil
            }
            hdr := res.Header().Clone()
            hdr.Del("X-Cache")
            payload, err := packResponse(tw.status, hdr, tw.buf.Bytes())
            if err != nil {
                return nil
            }
            if err := rdb.SetEx(context.WithoutCancel(c.Request().Context()), key, payload, ttl).Err(); err != nil {
                c.Logger().Warnf("cache: store %s: %v", key, err)
            }
            return nil
        }
    }
}

// PurgeCache drops every cached response of the given routes after the
// wrapped handler answers 2xx.  Writes to catalogue data are wrapped with it.
func PurgeCache(cfg config.CacheConfig, rdb *redis.Client, routes ...string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if err := next(c); err != nil {
                return err
            }
            if st := c.Response().Status; st < 200 || st > 299 {
                return nil
            }
            ctx := context.WithoutCancel(c.Request().Context())
            for _, route := range routes {
                if err := purgeRoute(ctx, rdb, cfg.Prefix, route); err != nil {
                    c.Logger().Warnf("cache: purge %s: %v", route, err)
                }
            }
            return nil
        }
    }
}

func purgeRoute(ctx context.Context, rdb *redis.Client, prefix, route string) error {
    match := prefix + ":" + route + ":*"
    var cursor uint64
    for {
        keys, next, err := rdb.Scan(ctx, cursor, match, 100).Result()
        if err != nil {
            return err
        }
        if len(keys) > 0 {
            if err := rdb.Del(ctx, keys...).Err(); err != nil {
                return err
            }
        }
        if next == 0 {
            return nil
        }
        cursor = next
    }
}
