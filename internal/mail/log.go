package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes the message to the log instead of delivering it. Default
// provider for local development.
type LogSender struct {
	Log zerolog.Logger
}

func (s *LogSender) Send(ctx context.Context, email Email) error {
	s.Log.Info().
		Str("to", email.To).
		Str("subject", email.Subject).
		Msg("mail delivery mocked, logging only")
	return nil
}
