package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func TestMockProcessorCaptureAndVoid(t *testing.T) {
	m := NewMockProcessor()
	m.now = func() time.Time { return fixedNow }

	id, err := m.Capture(context.Background(), visa(), decimal.RequireFromString("24.40"))
	require.NoError(t, err)
	assert.False(t, m.Voided(id))

	require.NoError(t, m.Void(context.Background(), id))
	assert.True(t, m.Voided(id))
	assert.Error(t, m.Void(context.Background(), "mock_unknown"))
}

func TestMockProcessorDeclines(t *testing.T) {
	m := NewMockProcessor()
	m.now = func() time.Time { return fixedNow }

	refused := visa()
	refused.CardNumber = "4000000000000002"
	_, err := m.Capture(context.Background(), refused, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrDeclined)

	expired := visa()
	expired.ExpirationDate = "01/20"
	assert.False(t, m.Validate(expired))
	_, err = m.Capture(context.Background(), expired, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrDeclined)
}

type fakeIntents struct {
	created  *stripe.PaymentIntentCreateParams
	result   *stripe.PaymentIntent
	err      error
	canceled string
}

func (f *fakeIntents) Create(_ context.Context, p *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error) {
	f.created = p
	return f.result, f.err
}

func (f *fakeIntents) Cancel(_ context.Context, id string, _ *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error) {
	f.canceled = id
	return &stripe.PaymentIntent{ID: id}, nil
}

type fakeRefunds struct {
	params *stripe.RefundCreateParams
	err    error
}

func (f *fakeRefunds) Create(_ context.Context, p *stripe.RefundCreateParams) (*stripe.Refund, error) {
	f.params = p
	return &stripe.Refund{ID: "re_1"}, f.err
}

func newTestStripe(in *fakeIntents, rf *fakeRefunds) *StripeProcessor {
	return &StripeProcessor{intents: in, refunds: rf, currency: "usd", now: func() time.Time { return fixedNow }}
}

func TestStripeCaptureSendsCents(t *testing.T) {
	in := &fakeIntents{result: &stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusSucceeded}}
	p := newTestStripe(in, &fakeRefunds{})

	id, err := p.Capture(context.Background(), visa(), decimal.RequireFromString("22.26"))
	require.NoError(t, err)
	assert.Equal(t, "pi_1", id)
	require.NotNil(t, in.created)
	assert.Equal(t, int64(2226), *in.created.Amount)
	assert.Equal(t, "pm_card_visa", *in.created.PaymentMethod)
	assert.True(t, *in.created.Confirm)
}

func TestStripeCaptureDeclines(t *testing.T) {
	in := &fakeIntents{err: &stripe.Error{Type: stripe.ErrorTypeCard, Msg: "Your card was declined."}}
	_, err := newTestStripe(in, &fakeRefunds{}).Capture(context.Background(), visa(), decimal.NewFromInt(5))
	assert.ErrorIs(t, err, ErrDeclined)

	in = &fakeIntents{err: errors.New("network down")}
	_, err = newTestStripe(in, &fakeRefunds{}).Capture(context.Background(), visa(), decimal.NewFromInt(5))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeclined)
}

func TestStripeCaptureCancelsIncompleteIntent(t *testing.T) {
	in := &fakeIntents{result: &stripe.PaymentIntent{ID: "pi_2", Status: stripe.PaymentIntentStatusRequiresAction}}
	_, err := newTestStripe(in, &fakeRefunds{}).Capture(context.Background(), visa(), decimal.NewFromInt(5))
	assert.ErrorIs(t, err, ErrDeclined)
	assert.Equal(t, "pi_2", in.canceled)
}

func TestStripeVoidRefundsIntent(t *testing.T) {
	rf := &fakeRefunds{}
	require.NoError(t, newTestStripe(&fakeIntents{}, rf).Void(context.Background(), "pi_1"))
	assert.Equal(t, "pi_1", *rf.params.PaymentIntent)
}
