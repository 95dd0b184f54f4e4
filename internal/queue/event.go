// Package queue carries booking confirmations over RabbitMQ: the API
// publishes them after checkout commits and the notifier process consumes
// them and sends the mail.
package queue

import (
    "time"

    "github.com/iliyamo/cinema-booking/internal/model"
)

// BookingConfirmedQueue is the durable queue confirmations travel on.
const BookingConfirmedQueue = "booking.confirmed"

// eventVersion is bumped whenever the payload changes incompatibly.
const eventVersion = 1

// BookingConfirmedEvent is published once per committed booking.  It is
// self-contained so consumers never query the primary database.
type BookingConfirmedEvent struct {
    Version     int                `json:"version"`
    UserID      uint64             `json:"user_id"`
    ConfirmedAt string             `json:"confirmed_at"` // RFC3339, UTC
    Booking     model.Confirmation `json:"booking"`
}

// NewBookingConfirmedEvent wraps a confirmation for publishing.
func NewBookingConfirmedEvent(c model.Confirmation, at time.Time) BookingConfirmedEvent {
    return BookingConfirmedEvent{
        Version:     eventVersion,
        UserID:      c.UserID,
        ConfirmedAt: at.UTC().Format(time.RFC3339),
        Booking:     c,
    }
}
