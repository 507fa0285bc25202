package notification

import (
	"context"

	"clientdesk_backend/platform/config"
	"clientdesk_backend/platform/logger"

	"github.com/wneessen/go-mail"
)

// EmailSender delivers notification emails over SMTP. Disabled or
// misconfigured email degrades to a logged no-op so notification handling
// never fails on delivery.
type EmailSender struct {
	cfg config.EmailConfig
	log *logger.Logger
}

func NewEmailSender(cfg config.EmailConfig, log *logger.Logger) *EmailSender {
	return &EmailSender{cfg: cfg, log: log}
}

// Send delivers one email to the configured notification address.
func (s *EmailSender) Send(ctx context.Context, subject, body string) {
	if !s.cfg.GetEmailEnabled() || s.cfg.GetEmailNotifyAddress() == "" {
		return
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(s.cfg.GetEmailFromName(), s.cfg.GetEmailFromAddress()); err != nil {
		s.log.Warn("email sender misconfigured", "error", err.Error())
		return
	}
	if err := msg.To(s.cfg.GetEmailNotifyAddress()); err != nil {
		s.log.Warn("email recipient invalid", "error", err.Error())
		return
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(s.cfg.GetSMTPHost(),
		mail.WithPort(s.cfg.GetSMTPPort()),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.GetSMTPUsername()),
		mail.WithPassword(s.cfg.GetSMTPPassword()),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		s.log.Warn("email client not created", "error", err.Error())
		return
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		s.log.Warn("email not delivered", "subject", subject, "error", err.Error())
	}
}
