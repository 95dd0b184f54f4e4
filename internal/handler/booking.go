package handler

import (
    "context"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking/internal/middleware"
    "github.com/iliyamo/cinema-booking/internal/model"
    "github.com/iliyamo/cinema-booking/internal/service"
)

// BookingService is the checkout side of the booking core.
type BookingService interface {
    Checkout(ctx context.Context, req service.CheckoutRequest) (*model.Booking, error)
    ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// BookingHandler exposes checkout and booking history.
type BookingHandler struct {
    Bookings BookingService
}

func NewBookingHandler(bookings BookingService) *BookingHandler {
    if bookings == nil {
        panic("nil BookingService passed to NewBookingHandler")
    }
    return &BookingHandler{Bookings: bookings}
}

type createBookingRequest struct {
    Cart   *model.Cart `json:"cart" validate:"required"`
    CardID uint64      `json:"card_id" validate:"required"`
}

// Create handles POST /v1/bookings: price the cart again, charge the saved
// card, claim the seats and store the booking.  The buyer is always the
// token's subject.
func (h *BookingHandler) Create(c echo.Context) error {
    uid, ok := middleware.UserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createBookingRequest
    if err := bindValid(c, &req); err != nil {
        return writeError(c, err)
    }
    b, err := h.Bookings.Checkout(c.Request().Context(), service.CheckoutRequest{
        UserID: uid,
        Cart:   *req.Cart,
        CardID: req.CardID,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, newBookingView(b))
}

// ListForUser handles GET /v1/bookings/:userId.  Customers may only read
// their own history; admins may read anyone's.
func (h *BookingHandler) ListForUser(c echo.Context) error {
    target, err := strconv.ParseUint(c.Param("userId"), 10, 64)
    if err != nil || target == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    uid, _ := middleware.UserID(c)
    if uid != target && middleware.Role(c) != model.RoleAdmin {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    list, err := h.Bookings.ListForUser(c.Request().Context(), target)
    if err != nil {
        return writeError(c, err)
    }
    out := make([]bookingView, len(list))
    for i := range list {
        out[i] = newBookingView(&list[i])
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}
