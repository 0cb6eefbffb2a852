package mailer

import "context"

// Message is an outbound notification email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers outbound email. Delivery is fire-and-forget from the
// application's perspective: a send failure is logged, never surfaced to
// the request that triggered it.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}
