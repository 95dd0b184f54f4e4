package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

type nopPromos struct{}

func (nopPromos) Create(context.Context, *model.Promotion) error   { return nil }
func (nopPromos) List(context.Context) ([]model.Promotion, error) { return nil, nil }
func (nopPromos) Delete(context.Context, uint64) error           { return nil }

type nopPrices struct{}

func (nopPrices) SetPrice(context.Context, string, decimal.Decimal) error { return nil }

type nopBookings struct{}

func (nopBookings) Checkout(context.Context, service.CheckoutRequest) (*model.Booking, error) {
	return nil, service.ErrValidation
}
func (nopBookings) ListForUser(context.Context, uint64) ([]model.Booking, error) { return nil, nil }

type nopPricer struct{}

func (nopPricer) Calculate(context.Context, model.Cart) (*model.PricedCart, error) {
	return &model.PricedCart{}, nil
}
func (nopPricer) Preview(context.Context, uint64, string) (*model.Promotion, error) {
	return nil, service.ErrInvalidPromotion
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func TestRouteGuards(t *testing.T) {
	const secret = "router-secret"
	e := echo.New()
	e.Validator = handler.NewRequestValidator()
	cart := handler.NewCartHandler(nopPricer{}, nopPricer{})
	RegisterCustomer(e, cart, handler.NewBookingHandler(nopBookings{}), secret, passThrough)
	purged := 0
	purge := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			purged++
			return err
		}
	}
	RegisterAdmin(e, handler.NewPromotionHandler(nopPromos{}), handler.NewTicketPriceHandler(nopPrices{}), secret, purge)

	send := func(method, path, role, body string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if role != "" {
			tok, err := utils.NewAccessToken(secret, 8, role, 5)
			require.NoError(t, err)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	call := func(method, path, role string) int { return send(method, path, role, "") }

	assert.Equal(t, http.StatusUnauthorized, call(http.MethodGet, "/v1/bookings/8", ""))
	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/v1/bookings/8", model.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, call(http.MethodGet, "/v1/bookings/8", "OWNER"))
	assert.Equal(t, http.StatusForbidden, call(http.MethodGet, "/v1/admin/promotions", model.RoleCustomer))
	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/v1/admin/promotions", model.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, send(http.MethodPut, "/v1/admin/ticket-types/Adult", model.RoleCustomer, `{"price":13.5}`))
	assert.Equal(t, 0, purged)
	assert.Equal(t, http.StatusOK, send(http.MethodPut, "/v1/admin/ticket-types/Adult", model.RoleAdmin, `{"price":13.5}`))
	assert.Equal(t, 1, purged)
}
