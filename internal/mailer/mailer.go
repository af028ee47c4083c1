// Package mailer sends plain-text notification emails over SMTP. It is used
// by the background consumer to tell agents about newly published events; a
// misconfigured or unreachable relay never blocks anything, senders log and
// move on.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer holds the SMTP relay settings.
type Mailer struct {
	addr string
	from string
	auth smtp.Auth
}

// New builds a mailer for the given relay. Username may be empty for relays
// that accept unauthenticated submission (local dev).
func New(host string, port int, username, password, from string) *Mailer {
	m := &Mailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
	}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

// Enabled reports whether a relay host was configured.
func (m *Mailer) Enabled() bool {
	return !strings.HasPrefix(m.addr, ":")
}

// Send delivers one plain-text message to the given recipients.
func (m *Mailer) Send(to []string, subject, body string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer: no SMTP host configured")
	}
	if len(to) == 0 {
		return nil
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}
