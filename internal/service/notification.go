package service

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
)

// Notifier delivers booking confirmations.  Delivery is best effort: a
// failure is logged by the coordinator and the booking stands.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, c model.Confirmation) error
}

// BookingPublisher is the broker side of QueueNotifier.
type BookingPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// QueueNotifier hands the confirmation to the notifier process through
// RabbitMQ so checkout never waits on SMTP.
type QueueNotifier struct {
	pub BookingPublisher
	now func() time.Time
}

func NewQueueNotifier(pub BookingPublisher) *QueueNotifier {
	return &QueueNotifier{pub: pub, now: time.Now}
}

func (n *QueueNotifier) SendBookingConfirmation(ctx context.Context, c model.Confirmation) error {
	return n.pub.PublishBookingConfirmed(ctx, queue.NewBookingConfirmedEvent(c, n.now()))
}

// LogNotifier only writes the confirmation to the log.  Used in development
// when neither a broker nor SMTP is available.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier { return &LogNotifier{logger: logger} }

func (n *LogNotifier) SendBookingConfirmation(_ context.Context, c model.Confirmation) error {
	n.logger.Infoj(log.JSON{
		"msg":        "booking confirmation",
		"booking_id": c.BookingID,
		"email":      c.Email,
		"total":      c.TotalAmount.StringFixed(2),
		"tickets":    len(c.Tickets),
	})
	return nil
}
