package ports

import (
	"context"

	"github.com/useraccounts/account-api/internal/core/domain"
)

// Mailer delivers composed messages. Send blocks until the message was handed
// to the transport or failed.
type Mailer interface {
	Send(ctx context.Context, msg domain.MailMessage) error
}
