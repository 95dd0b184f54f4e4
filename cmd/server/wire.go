package main

import (
	"os"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/mailer"
	"github.com/iliyamo/cinema-booking/internal/payment"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// newLogger builds the JSON logger shared by echo and the services.  dev
// runs log at DEBUG so checkout state transitions are visible.
func newLogger(prefix, env string) *log.Logger {
	l := log.New(prefix)
	l.SetOutput(os.Stdout)
	l.SetHeader(`{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`)
	if env == "dev" {
		l.SetLevel(log.DEBUG)
	} else {
		l.SetLevel(log.INFO)
	}
	return l
}

func newProcessor(pc config.PaymentConfig, logger *log.Logger) payment.Processor {
	switch pc.Provider {
	case "stripe":
		return payment.NewStripeProcessor(pc.StripeKey, pc.Currency)
	case "mock":
		logger.Warn("payment: mock processor in use, no real charges are made")
		return payment.NewMockProcessor()
	}
	logger.Fatalf("unknown PAYMENT_PROVIDER %q", pc.Provider)
	return nil
}

// newNotifier picks how confirmations leave the API process: through the
// broker to cmd/notifier, straight to SMTP, or only into the log.
func newNotifier(cfg config.Config, mc config.MailConfig, logger *log.Logger) service.Notifier {
	switch cfg.NotifyMode {
	case "queue":
		return service.NewQueueNotifier(queue.NewPublisher(cfg.AMQPURL, logger))
	case "smtp":
		return mustSender(mc, logger)
	case "log":
		return service.NewLogNotifier(logger)
	}
	logger.Fatalf("unknown NOTIFY_MODE %q", cfg.NotifyMode)
	return nil
}

func mustSender(mc config.MailConfig, logger *log.Logger) *mailer.Sender {
	s, err := mailer.NewSender(mc)
	if err != nil {
		logger.Fatalf("mailer: %v", err)
	}
	return s
}
