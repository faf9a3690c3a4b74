package services

import (
	"fmt"
	"net/smtp"

	"github.com/carebridge/backend/internal/config"
	"github.com/carebridge/backend/internal/logger"
)

// Mailer dispatches transactional mail. The console provider logs the
// message instead of sending it, for development.
type Mailer struct {
	cfg config.MailConfig
}

func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendPasswordReset dispatches the reset email carrying the one-time token.
func (m *Mailer) SendPasswordReset(to, token string) error {
	link := fmt.Sprintf("%s&token=%s", m.cfg.ResetURL, token)
	subject := "Reset your CareBridge password"
	body := fmt.Sprintf("A password reset was requested for your account.\r\n\r\nReset it here: %s\r\n\r\nIf you did not request this, ignore this email.", link)

	if m.cfg.Provider != "smtp" {
		logger.Info("password reset email (console provider)", map[string]interface{}{
			"to":   to,
			"link": link,
		})
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}
