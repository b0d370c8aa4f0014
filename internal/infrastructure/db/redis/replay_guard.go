package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/useraccounts/account-api/internal/core/domain"
	"github.com/useraccounts/account-api/internal/core/ports"
)

// A consumed token id is remembered at least this long, even when the token
// is about to expire.
const minReplayTTL = time.Second

var _ ports.ReplayGuard = (*ReplayGuard)(nil)

// ReplayGuard marks single-use token ids as consumed in Redis.
// Key format: replay:<token_id>
type ReplayGuard struct {
	client *redis.Client
	now    func() time.Time
}

func NewReplayGuard(client *redis.Client) *ReplayGuard {
	return &ReplayGuard{client: client, now: time.Now}
}

// Consume records tokenID until the token expires. A second call with the same
// id returns domain.ErrTokenReplayed.
func (g *ReplayGuard) Consume(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return errors.New("replay guard: empty token id")
	}

	ok, err := g.client.SetNX(ctx, replayKey(tokenID), "1", replayTTL(g.now(), until)).Result()
	if err != nil {
		return fmt.Errorf("replay guard: %w", err)
	}
	if !ok {
		return domain.ErrTokenReplayed
	}
	return nil
}

// Release forgets tokenID. Releasing an id that was never consumed is a no-op.
func (g *ReplayGuard) Release(ctx context.Context, tokenID string) error {
	if err := g.client.Del(ctx, replayKey(tokenID)).Err(); err != nil {
		return fmt.Errorf("replay guard: %w", err)
	}
	return nil
}

func replayKey(tokenID string) string {
	return "replay:" + tokenID
}

func replayTTL(now, until time.Time) time.Duration {
	ttl := until.Sub(now)
	if ttl < minReplayTTL {
		return minReplayTTL
	}
	return ttl
}
