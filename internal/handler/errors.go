package handler

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/labstack/gommon/log"

    "github.com/iliyamo/cinema-booking/internal/repository"
    "github.com/iliyamo/cinema-booking/internal/service"
)

// writeError turns a service or repository error into the JSON response the
// API documents. Unknown errors are logged and answered with a generic 500.
func writeError(c echo.Context, err error) error {
    var taken *service.SeatTakenError
    if errors.As(err, &taken) {
        return c.JSON(http.StatusConflict, echo.Map{"error": taken.Error(), "seats": taken.Seats})
    }

    status := http.StatusInternalServerError
    switch {
    case errors.Is(err, service.ErrValidation),
        errors.Is(err, service.ErrPriceMismatch),
        errors.Is(err, service.ErrInvalidPromotion),
        errors.Is(err, service.ErrDuplicateRedemption):
        status = http.StatusBadRequest
    case errors.Is(err, service.ErrPriceNotFound),
        errors.Is(err, service.ErrCardNotFound),
        errors.Is(err, service.ErrShowNotFound),
        errors.Is(err, service.ErrPromotionNotFound):
        status = http.StatusNotFound
    case errors.Is(err, service.ErrSeatTaken),
        errors.Is(err, repository.ErrPromotionSent),
        errors.Is(err, repository.ErrConflict):
        status = http.StatusConflict
    case errors.Is(err, service.ErrPaymentDeclined):
        status = http.StatusPaymentRequired
    }

    if status == http.StatusInternalServerError {
        c.Logger().Errorj(log.JSON{
            "msg":    "request failed",
            "method": c.Request().Method,
            "path":   c.Path(),
            "error":  err.Error(),
        })
        return c.JSON(status, echo.Map{"error": "internal error"})
    }
    return c.JSON(status, echo.Map{"error": err.Error()})
}

// bindValid decodes the body into v and runs the registered validator.
// Both failures come back as service.ErrValidation.
func bindValid(c echo.Context, v interface{}) error {
    if err := c.Bind(v); err != nil {
        return fmt.Errorf("%w: malformed request body", service.ErrValidation)
    }
    return c.Validate(v)
}
