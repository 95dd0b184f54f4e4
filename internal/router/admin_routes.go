package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// RegisterAdmin registers ADMIN-scoped promotion management and ticket
// repricing under /v1/admin.  purge runs after a successful price change so
// the cached price list never outlives it.
func RegisterAdmin(e *echo.Echo, p *handler.PromotionHandler, tp *handler.TicketPriceHandler, jwtSecret string, purge echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/promotions", p.Create)
	g.GET("/promotions", p.List)
	g.DELETE("/promotions/:id", p.Delete)
	g.PUT("/ticket-types/:type", tp.Update, purge)
}
