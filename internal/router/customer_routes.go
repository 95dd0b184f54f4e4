package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// RegisterCustomer registers the authenticated booking endpoints under /v1.
// Both roles may book.  Checkout and promotion preview sit behind the token
// bucket, which runs after JWTAuth so buckets are keyed by user.
func RegisterCustomer(e *echo.Echo, cart *handler.CartHandler, b *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	g.POST("/cart/apply-promotion", cart.ApplyPromotion, limit)
	g.POST("/bookings", b.Create, limit)
	// ownership is checked in the handler; admins may read any history
	g.GET("/bookings/:userId", b.ListForUser)
}
