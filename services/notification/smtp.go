package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-mail/mail"
	"go.uber.org/zap"
)

// SMTPMailer sends through an SMTP relay.
type SMTPMailer struct {
	Host    string
	Port    int
	From    string
	User    string
	Pass    string
	TLSMode string // "auto" | "starttls" | "ssl" | "none"
	Logger  *zap.Logger
}

func (s *SMTPMailer) dialer() *mail.Dialer {
	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{ServerName: s.Host}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}
	return d
}

func (s *SMTPMailer) message(email Email) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)

	// Prefer multipart/alternative (txt + html).
	if email.Text != "" {
		m.SetBody("text/plain", email.Text)
	}
	if email.HTML != "" {
		if email.Text == "" {
			m.SetBody("text/html", email.HTML)
		} else {
			m.AddAlternative("text/html", email.HTML)
		}
	}
	return m
}

// Send dials and sends in the background so ctx can abandon a slow relay.
// Each SMTP read or write is bounded by what is left of ctx, so an abandoned
// attempt does not linger past the deadline by more than one exchange.
func (s *SMTPMailer) Send(ctx context.Context, email Email) (SendResult, error) {
	msg := s.message(email)
	d := s.dialer()
	d.Timeout = exchangeTimeout(ctx, d.Timeout)

	done := make(chan error, 1)
	go func() { done <- deliver(ctx, d, msg) }()

	select {
	case <-ctx.Done():
		return SendResult{}, fmt.Errorf("smtp send: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			s.Logger.Error("smtp send failed", zap.String("host", s.Host), zap.Error(err))
			return SendResult{}, fmt.Errorf("smtp send: %w", err)
		}
	}
	return SendResult{Provider: "smtp"}, nil
}

// deliver does not start the mail transaction once ctx has ended, so a
// message the caller gave up on is not handed to the relay afterwards.
func deliver(ctx context.Context, d *mail.Dialer, msg *mail.Message) error {
	sc, err := d.Dial()
	if err != nil {
		return err
	}
	defer sc.Close()
	if err := ctx.Err(); err != nil {
		return err
	}
	return mail.Send(sc, msg)
}

func exchangeTimeout(ctx context.Context, def time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return def
	}
	left := time.Until(deadline)
	if left <= 0 {
		return time.Millisecond
	}
	if def > 0 && def < left {
		return def
	}
	return left
}
