package ports

import (
	"context"
	"time"

	"github.com/useraccounts/account-api/internal/core/domain"
)

// PasswordHasher derives and checks one-way password digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenService signs and verifies time-bound claim sets. Verify returns
// domain.ErrInvalidToken for any structural, signature or expiry problem.
type TokenService interface {
	Issue(claims domain.TokenClaims, ttl time.Duration) (string, error)
	Verify(token string) (*domain.TokenClaims, error)
}

// CodeGenerator produces one-time numeric verification codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// ReplayGuard records single-use token IDs. Consume returns
// domain.ErrTokenReplayed when tokenID was already consumed. Release forgets
// a consumed id so the token can be redeemed again.
type ReplayGuard interface {
	Consume(ctx context.Context, tokenID string, until time.Time) error
	Release(ctx context.Context, tokenID string) error
}
