package mail

import (
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/tashkhees/support-portal/internal/config"
)

// Mailer sends a single HTML email. Implementations are best-effort:
// callers log failures and move on.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// Sender delivers mail over SMTP via gomail. Without a configured SMTP
// host it degrades to a logged no-op so local development needs no relay.
type Sender struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewSender constructs the sender.
func NewSender(cfg config.SMTPConfig, logger *zap.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// Send delivers one message.
func (s *Sender) Send(to, subject, htmlBody string) error {
	if !s.cfg.Enabled() {
		s.logger.Debug("smtp disabled, skipping email",
			zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
