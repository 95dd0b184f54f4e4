// Package service holds the booking core: cart pricing, promotion
// redemption, seat allocation and the checkout coordinator that ties them
// to payment capture and confirmation dispatch.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/payment"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

var (
	// ErrValidation marks malformed requests: missing cart or card, empty
	// cart at checkout, the same seat twice.
	ErrValidation = errors.New("invalid request")

	ErrPriceMismatch    = errors.New("price mismatch")
	ErrInvalidPromotion = errors.New("invalid promotion code")

	// Errors passed through from storage and payment so callers need only
	// this package for errors.Is.
	ErrPriceNotFound       = repository.ErrPriceNotFound
	ErrPromotionNotFound   = repository.ErrPromotionNotFound
	ErrDuplicateRedemption = repository.ErrDuplicateRedemption
	ErrSeatTaken           = repository.ErrSeatTaken
	ErrCardNotFound        = repository.ErrCardNotFound
	ErrShowNotFound        = repository.ErrShowNotFound
	ErrPaymentDeclined     = payment.ErrDeclined
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// PricingError names the cart line a pricing check failed on.
type PricingError struct {
	Err        error // ErrPriceNotFound or ErrPriceMismatch
	ShowID     uint64
	TicketType string
}

func (e *PricingError) Error() string {
	if errors.Is(e.Err, ErrPriceNotFound) {
		return fmt.Sprintf("price not found for show ID: %d and type: %s", e.ShowID, e.TicketType)
	}
	return fmt.Sprintf("invalid price for show ID: %d", e.ShowID)
}

func (e *PricingError) Unwrap() error { return e.Err }

// Seat identifies one seat in one show.
type Seat struct {
	ShowID     uint64 `json:"show_id"`
	SeatNumber string `json:"seat_number"`
}

// SeatTakenError lists every seat of a request that another booking holds.
type SeatTakenError struct {
	Seats []Seat
}

func (e *SeatTakenError) Error() string {
	parts := make([]string, len(e.Seats))
	for i, s := range e.Seats {
		parts[i] = fmt.Sprintf("%d/%s", s.ShowID, s.SeatNumber)
	}
	return "seats already taken: " + strings.Join(parts, ", ")
}

func (e *SeatTakenError) Is(target error) bool { return target == ErrSeatTaken }

func (e *SeatTakenError) merge(other *SeatTakenError) {
	e.Seats = append(e.Seats, other.Seats...)
	sort.Slice(e.Seats, func(i, j int) bool {
		if e.Seats[i].ShowID != e.Seats[j].ShowID {
			return e.Seats[i].ShowID < e.Seats[j].ShowID
		}
		return e.Seats[i].SeatNumber < e.Seats[j].SeatNumber
	})
}
