package mailer

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/scc-freight/freight-api/internal/ports/out/mailer"
)

// LogMailer writes outbound mail to the log instead of delivering it.
// It is the default mailer for local development.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg mailer.Message) error {
	_ = ctx
	m.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("outbound mail (not delivered)")
	return nil
}

// Recorder captures outbound mail for tests.
// It is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	sent []mailer.Message

	// FailWith, when set, is returned from Send after recording.
	FailWith error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (m *Recorder) Send(ctx context.Context, msg mailer.Message) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.FailWith
}

// Sent returns a copy of every recorded message in send order.
func (m *Recorder) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}
