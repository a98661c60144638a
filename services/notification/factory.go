package notification

import (
	"fmt"
	"strings"

	"bhutantours/config"

	"go.uber.org/zap"
)

// NewMailer builds the mailer selected by EMAIL_PROVIDER.
func NewMailer(cfg config.Config, logger *zap.Logger) (Mailer, error) {
	switch strings.ToLower(cfg.EmailProvider) {
	case "", "dev":
		return NewDevMailer(logger, !cfg.IsProductionEnv()), nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("%w: SMTP_HOST is required", ErrMailerDisabled)
		}
		from := cfg.EmailFrom
		if cfg.EmailFromName != "" {
			from = fmt.Sprintf("%q <%s>", cfg.EmailFromName, cfg.EmailFrom)
		}
		return &SMTPMailer{
			Host:    cfg.SMTPHost,
			Port:    cfg.SMTPPort,
			From:    from,
			User:    cfg.SMTPUser,
			Pass:    cfg.SMTPPass,
			TLSMode: cfg.SMTPTLSMode,
			Logger:  logger,
		}, nil
	case "mailersend":
		return NewMailerSendMailer(cfg.MailerSendAPIKey, cfg.EmailFromName, cfg.EmailFrom)
	default:
		return nil, fmt.Errorf("unsupported EMAIL_PROVIDER %q", cfg.EmailProvider)
	}
}
