// Package payment holds the card processor contract used by checkout and
// its implementations.  The processor is an external system: a capture
// cannot share a database transaction with the seat claim, so checkout
// voids the charge itself when a later step fails.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// ErrDeclined is returned (wrapped) by Capture when the processor refuses
// the charge.
var ErrDeclined = errors.New("payment declined")

// Processor validates, charges and voids cards.
type Processor interface {
	// Validate runs format and expiry checks without contacting anyone.
	Validate(card model.PaymentCard) bool
	// Capture charges amount and returns the processor's charge id.
	Capture(ctx context.Context, card model.PaymentCard, amount decimal.Decimal) (string, error)
	// Void reverses a captured charge.
	Void(ctx context.Context, chargeID string) error
}

// Cents converts a money amount to the integer minor units processors use.
func Cents(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}
