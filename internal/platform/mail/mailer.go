package mail

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"

	"linkvault/internal/platform/config"
)

// Mailer sends transactional mail over SMTP. Every send failure is logged
// and swallowed: mail delivery must never surface as a failure of the
// authentication operation that triggered it.
type Mailer struct {
	cfg config.EmailConfig
}

func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendInvitation(to, orgName, inviterName, token string) {
	subject := fmt.Sprintf("You've been invited to join %s on LinkVault", orgName)
	body := fmt.Sprintf(
		"%s invited you to join %s.\r\n\r\nAccept the invitation with this token:\r\n%s\r\n\r\nThe invitation expires in 7 days.\r\n",
		inviterName, orgName, token)
	m.send(to, subject, body)
}

func (m *Mailer) SendPasswordReset(to, token string) {
	body := fmt.Sprintf(
		"A password reset was requested for your LinkVault account.\r\n\r\nReset token:\r\n%s\r\n\r\nThe token expires in 1 hour. If you did not request this, ignore this message.\r\n",
		token)
	m.send(to, "LinkVault password reset", body)
}

func (m *Mailer) send(to, subject, body string) {
	if m == nil || m.cfg.Host == "" {
		return
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.FromName, m.cfg.FromAddress, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	go func() {
		if err := smtp.SendMail(addr, auth, m.cfg.FromAddress, []string{to}, []byte(msg)); err != nil {
			log.Warn().Err(err).Str("to", to).Msg("mail send failed")
		}
	}()
}
