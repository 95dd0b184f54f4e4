package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/middleware"
    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/service"
)

// CartCalculator prices a cart without side effects.
type CartCalculator interface {
    Calculate(ctx context.Context, cart model.Cart) (*model.PricedCart, error)
}

// PromotionPreviewer checks that a code exists and is unused by the user.
type PromotionPreviewer interface {
    Preview(ctx context.Context, userID uint64, code string) (*model.Promotion, error)
}

// CartHandler serves the cart preview endpoints.  Carts live on the client;
// these handlers only price and check them.
type CartHandler struct {
    Pricer CartCalculator
    Promos PromotionPreviewer
}

func NewCartHandler(pricer CartCalculator, promos PromotionPreviewer) *CartHandler {
    if pricer == nil || promos == nil {
        panic("nil dependency passed to NewCartHandler")
    }
    return &CartHandler{Pricer: pricer, Promos: promos}
}

// Calculate handles POST /v1/cart/calculate.  Every item price is checked
// against the server price list; an empty cart prices to zero.
func (h *CartHandler) Calculate(c echo.Context) error {
    var cart model.Cart
    if err := bindValid(c, &cart); err != nil {
        return writeError(c, err)
    }
    priced, err := h.Pricer.Calculate(c.Request().Context(), cart)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, newPricedCartView(priced, service.OnlineFee))
}

type applyPromotionRequest struct {
    UserID    uint64 `json:"user_id"`
    PromoCode string `json:"promo_code" validate:"required,max=64"`
}

// ApplyPromotion handles POST /v1/cart/apply-promotion.  It is a preview:
// the code is redeemed only when a booking using it is committed.
func (h *CartHandler) ApplyPromotion(c echo.Context) error {
    uid, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req applyPromotionRequest
    if err := bindValid(c, &req); err != nil {
        return writeError(c, err)
    }
    if req.UserID != 0 && req.UserID != uid {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    promo, err := h.Promos.Preview(c.Request().Context(), uid, req.PromoCode)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message":   "Promotion applied successfully",
        "promotion": newPromotionView(promo),
    })
}
