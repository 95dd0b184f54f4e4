// Package mailer sends plain-text mail over SMTP: booking confirmations for
// the notifier and the promotion blast.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// Sender composes and delivers messages.  A fresh SMTP session is opened
// per send.
type Sender struct {
	from     string
	fromName string
	send     func(ctx context.Context, msg *mail.Msg) error
}

// NewSender builds an SMTP client from cfg.  Authentication is only set up
// when a username is configured.
func NewSender(cfg config.MailConfig) (*Sender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Sender{
		from:     cfg.From,
		fromName: cfg.FromName,
		send: func(ctx context.Context, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

func (s *Sender) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// SendBookingConfirmation mails the receipt for a committed booking.
func (s *Sender) SendBookingConfirmation(ctx context.Context, c model.Confirmation) error {
	msg, err := s.message(c.Email, fmt.Sprintf("Your booking #%d is confirmed", c.BookingID), ConfirmationBody(c))
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

// SendPromotion mails one promotion to one subscriber.
func (s *Sender) SendPromotion(ctx context.Context, to model.User, p model.Promotion) error {
	msg, err := s.message(to.Email, p.Title, PromotionBody(to, p))
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}
