package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/scc-freight/freight-api/internal/ports/out/mailer"
)

// Mailer delivers mail through a plain SMTP relay.
type Mailer struct {
	addr string
	auth smtp.Auth
	from string
}

// New builds an SMTP mailer. user may be empty for relays that accept
// unauthenticated submission (local dev relays like MailHog).
func New(addr, user, pass, from string) *Mailer {
	var auth smtp.Auth
	if user != "" {
		host := addr
		if i := strings.LastIndex(addr, ":"); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &Mailer{addr: addr, auth: auth, from: from}
}

func (m *Mailer) Send(ctx context.Context, msg mailer.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
