package ports

import (
	"context"
	"time"

	"github.com/useraccounts/account-api/internal/core/domain"
)

// AccountRepository is the credential store consumed by the account service.
// Lookups return domain.ErrAccountNotFound when nothing matches; writes that
// would duplicate an email return domain.ErrAccountExists.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Create assigns the account ID. Email uniqueness is enforced atomically
	// by the store.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error)
	Delete(ctx context.Context, id string) error

	// ConsumeVerificationCode clears the pending code of the account matching
	// email when it equals code and has not expired at now, and returns the
	// account. Concurrent callers cannot both consume the same code.
	ConsumeVerificationCode(ctx context.Context, email, code string, now time.Time) (*domain.Account, error)
}
