package notification

import (
	"context"

	"go.uber.org/zap"
)

// DevMailer logs messages instead of sending them. Bodies are only logged
// outside production because they contain login codes and reset links.
type DevMailer struct {
	Logger    *zap.Logger
	LogBodies bool
}

func NewDevMailer(logger *zap.Logger, logBodies bool) *DevMailer {
	return &DevMailer{Logger: logger, LogBodies: logBodies}
}

func (m *DevMailer) Send(ctx context.Context, email Email) (SendResult, error) {
	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}
	fields := []zap.Field{zap.String("to", email.To), zap.String("subject", email.Subject)}
	if m.LogBodies {
		fields = append(fields, zap.String("text", email.Text), zap.String("html", email.HTML))
	}
	m.Logger.Info("[EMAIL][DEV]", fields...)
	return SendResult{Provider: "dev"}, nil
}
