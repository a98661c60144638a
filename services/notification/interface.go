package notification

import (
	"context"
	"errors"
)

// Email is a single outbound message.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// SendResult describes an accepted message.
type SendResult struct {
	Provider  string `json:"provider"`
	MessageID string `json:"messageId,omitempty"`
}

// Mailer delivers email. Implementations must honour ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, email Email) (SendResult, error)
}

// ErrMailerDisabled is returned when a provider is selected without credentials.
var ErrMailerDisabled = errors.New("mailer disabled")
