package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"

	"github.com/iliyamo/cinema-booking/internal/model"
)

type intentAPI interface {
	Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	Cancel(ctx context.Context, id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

type refundAPI interface {
	Create(ctx context.Context, params *stripe.RefundCreateParams) (*stripe.Refund, error)
}

// StripeProcessor charges the card's saved PaymentMethod with a confirmed
// PaymentIntent and voids by refunding it.
type StripeProcessor struct {
	intents  intentAPI
	refunds  refundAPI
	currency string
	now      func() time.Time
}

func NewStripeProcessor(secretKey, currency string) *StripeProcessor {
	sc := stripe.NewClient(secretKey)
	return &StripeProcessor{
		intents:  sc.V1PaymentIntents,
		refunds:  sc.V1Refunds,
		currency: currency,
		now:      time.Now,
	}
}

func (p *StripeProcessor) Validate(card model.PaymentCard) bool {
	return ValidateCard(card, p.now()) == nil && card.ProcessorRef != ""
}

func (p *StripeProcessor) Capture(ctx context.Context, card model.PaymentCard, amount decimal.Decimal) (string, error) {
	if card.ProcessorRef == "" {
		return "", fmt.Errorf("%w: card %d has no processor reference", ErrDeclined, card.ID)
	}
	params := &stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(Cents(amount)),
		Currency:      stripe.String(p.currency),
		PaymentMethod: stripe.String(card.ProcessorRef),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
		Description:   stripe.String("Cinema tickets"),
	}
	params.AddMetadata("card_id", fmt.Sprint(card.ID))
	params.AddMetadata("user_id", fmt.Sprint(card.UserID))
	// a retried request must not charge twice
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := p.intents.Create(ctx, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.Type == stripe.ErrorTypeCard {
			return "", fmt.Errorf("%w: %s", ErrDeclined, se.Msg)
		}
		return "", fmt.Errorf("stripe capture: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		// off-session charges cannot complete 3DS, give the intent back
		_, _ = p.intents.Cancel(ctx, pi.ID, &stripe.PaymentIntentCancelParams{})
		return "", fmt.Errorf("%w: payment intent %s is %s", ErrDeclined, pi.ID, pi.Status)
	}
	return pi.ID, nil
}

func (p *StripeProcessor) Void(ctx context.Context, chargeID string) error {
	params := &stripe.RefundCreateParams{PaymentIntent: stripe.String(chargeID)}
	params.SetIdempotencyKey("void-" + chargeID)
	if _, err := p.refunds.Create(ctx, params); err != nil {
		return fmt.Errorf("stripe refund %s: %w", chargeID, err)
	}
	return nil
}
