package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"
)

// PriceAdmin changes the authoritative price list.
type PriceAdmin interface {
    SetPrice(ctx context.Context, ticketType string, price decimal.Decimal) error
}

// TicketPriceHandler lets admins reprice ticket types.
type TicketPriceHandler struct {
    Repo PriceAdmin
}

func NewTicketPriceHandler(repo PriceAdmin) *TicketPriceHandler {
    if repo == nil {
        panic("nil PriceAdmin passed to NewTicketPriceHandler")
    }
    return &TicketPriceHandler{Repo: repo}
}

type setPriceRequest struct {
    Price *decimal.Decimal `json:"price" validate:"required"`
}

// Update handles PUT /v1/admin/ticket-types/:type.  The price must be
// positive with at most two decimal places; unknown types are 404.
func (h *TicketPriceHandler) Update(c echo.Context) error {
    ticketType := strings.TrimSpace(c.Param("type"))
    var req setPriceRequest
    if err := bindValid(c, &req); err != nil {
        return writeError(c, err)
    }
    price := *req.Price
    if !price.IsPositive() || !price.Equal(price.Round(2)) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price value"})
    }
    if err := h.Repo.SetPrice(c.Request().Context(), ticketType, price); err != nil {
        return writeError(c, err)
    }
    c.Logger().Infof("ticket type %s repriced to %s", ticketType, money(price))
    return c.JSON(http.StatusOK, echo.Map{"ticket_type": ticketType, "price": money(price)})
}
