package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/useraccounts/account-api/internal/core/domain"
	"github.com/useraccounts/account-api/internal/core/ports"
)

var _ ports.Mailer = (*LogMailer)(nil)

// LogMailer writes messages to the log instead of delivering them. Meant for
// local development, where the code has to be read off the console.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "mailer").Logger()}
}

func (m *LogMailer) Send(_ context.Context, msg domain.MailMessage) error {
	m.log.Info().
		Str("from", msg.From).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail not delivered (log driver)")
	return nil
}
