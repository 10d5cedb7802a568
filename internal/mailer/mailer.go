package mailer

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/funnelhub/backend/internal/config"
)

var ErrNotConfigured = errors.New("smtp is not configured")

type Mailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(to, subject, body string) error {
	if m.cfg.Host == "" {
		return ErrNotConfigured
	}

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n"+
		"%s",
		m.cfg.From, to, subject, body))

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendInvite mails the team invitation link. Callers treat failures as
// best-effort: the invite row exists either way.
func (m *Mailer) SendInvite(to, projectName, inviteLink string) error {
	subject := fmt.Sprintf("You were invited to collaborate on %s", projectName)
	body := fmt.Sprintf("You have been invited to the funnel %q.\n\nAccept the invitation:\n%s\n", projectName, inviteLink)
	return m.Send(to, subject, body)
}
