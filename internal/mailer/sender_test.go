package mailer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func captureSender(out *[]*mail.Msg) *Sender {
	return &Sender{
		from:     "no-reply@cinema.local",
		fromName: "Cinema Tickets",
		send: func(_ context.Context, msg *mail.Msg) error {
			*out = append(*out, msg)
			return nil
		},
	}
}

func sampleConfirmation() model.Confirmation {
	return model.Confirmation{
		UserID:        3,
		Email:         "ada@example.com",
		FirstName:     "Ada",
		BookingID:     42,
		BookingDate:   time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC).Unix(),
		TotalAmount:   decimal.RequireFromString("24.40"),
		PaymentStatus: model.PaymentPaid,
		MaskedCard:    "**** **** **** 4242",
		Tickets: []model.ConfirmationTicket{
			{ShowID: 5, MovieTitle: "Metropolis", ShowStart: time.Date(2026, 5, 2, 20, 0, 0, 0, time.UTC), TicketType: "Adult", Price: decimal.RequireFromString("12"), SeatNumber: "A1"},
			{ShowID: 5, MovieTitle: "Metropolis", ShowStart: time.Date(2026, 5, 2, 20, 0, 0, 0, time.UTC), TicketType: "Child", Price: decimal.RequireFromString("8"), SeatNumber: "A2"},
		},
	}
}

func TestConfirmationBody(t *testing.T) {
	body := ConfirmationBody(sampleConfirmation())
	assert.Contains(t, body, "Hi Ada,")
	assert.Contains(t, body, "Booking #42")
	assert.Contains(t, body, "seat A1  Adult  $12.00")
	assert.Contains(t, body, "seat A2  Child  $8.00")
	assert.Contains(t, body, "Total charged: $24.40 (Paid)")
	assert.Contains(t, body, "**** **** **** 4242")
	assert.NotContains(t, body, "4242424242424242")
}

func TestSendBookingConfirmation(t *testing.T) {
	var sent []*mail.Msg
	s := captureSender(&sent)

	require.NoError(t, s.SendBookingConfirmation(context.Background(), sampleConfirmation()))
	require.Len(t, sent, 1)

	var buf bytes.Buffer
	_, err := sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "ada@example.com")
	assert.Contains(t, raw, "Your booking #42 is confirmed")
}

func TestSendRejectsBadAddress(t *testing.T) {
	var sent []*mail.Msg
	c := sampleConfirmation()
	c.Email = "not an address"
	assert.Error(t, captureSender(&sent).SendBookingConfirmation(context.Background(), c))
	assert.Empty(t, sent)
}

func TestPromotionBody(t *testing.T) {
	body := PromotionBody(model.User{FirstName: "Grace"}, model.Promotion{
		Title:              "Spring sale",
		Description:        "SAVE10",
		DiscountPercentage: decimal.NewFromInt(10),
	})
	assert.Contains(t, body, "Hi Grace,")
	assert.Contains(t, body, "Use code SAVE10 at checkout to get 10% off")
}
