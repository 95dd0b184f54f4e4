package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
)

// TicketTypesPath is the cached price list route; price changes purge it.
const TicketTypesPath = "/v1/ticket-types"

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterPublic registers the catalogue reads a guest needs to build a cart
// and the cart preview.  Nothing here requires a token.  The price list is
// wrapped with the Redis response cache; seat maps change with every
// booking and are never cached.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, cart *handler.CartHandler, cache echo.MiddlewareFunc) {
	e.GET(TicketTypesPath, cat.TicketTypes, cache)
	e.GET("/v1/shows", cat.SearchShows)
	e.GET("/v1/shows/:id/seats", cat.ShowSeats)
	e.POST("/v1/cart/calculate", cart.Calculate)
}
