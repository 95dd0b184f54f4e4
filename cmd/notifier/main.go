// Command notifier consumes booking.confirmed events and mails the
// confirmation to the buyer.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/mailer"
	"github.com/iliyamo/cinema-booking/internal/queue"
)

func main() {
	config.LoadDotEnv()
	logger := log.New("booking-notifier")
	logger.SetOutput(os.Stdout)
	logger.SetHeader(`{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}"}`)
	logger.SetLevel(log.INFO)

	sender, err := mailer.NewSender(config.LoadMailConfig())
	if err != nil {
		logger.Fatalf("mailer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
		return sender.SendBookingConfirmation(ctx, ev.Booking)
	}
	logger.Infof("consuming %s", queue.BookingConfirmedQueue)
	if err := queue.StartBookingConsumer(ctx, config.LoadBrokerURL(), handle, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("consumer: %v", err)
	}
	logger.Info("stopped")
}
