package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/useraccounts/account-api/internal/core/domain"
)

func newTestRepository(t *testing.T) *AccountRepository {
	t.Helper()
	if os.Getenv("RUN_STORE_INTEGRATION") != "true" {
		t.Skip("set RUN_STORE_INTEGRATION=true and DATABASE_URL to run against postgres")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, Config{URL: os.Getenv("DATABASE_URL")})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE users`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return NewAccountRepository(pool)
}

func mustCreate(t *testing.T, repo *AccountRepository, username, email string) *domain.Account {
	t.Helper()
	a, err := repo.Create(context.Background(), &domain.Account{Username: username, Email: email, PasswordHash: "digest"})
	if err != nil {
		t.Fatalf("Create %s: %v", email, err)
	}
	return a
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created := mustCreate(t, repo, "alice", "a@x.io")
	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("id %q should be a uuid: %v", created.ID, err)
	}

	byEmail, err := repo.FindByEmail(ctx, "a@x.io")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail.ID != created.ID || byEmail.PasswordHash != "digest" {
		t.Fatalf("unexpected account %+v", byEmail)
	}
	if byEmail.Verification != nil {
		t.Fatalf("new account should carry no verification code")
	}

	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID.Username != "alice" {
		t.Fatalf("expected alice, got %q", byID.Username)
	}

	_, err = repo.Create(ctx, &domain.Account{Username: "other", Email: "a@x.io", PasswordHash: "digest"})
	expectErr(t, err, domain.ErrAccountExists)

	_, err = repo.FindByEmail(ctx, "nobody@x.io")
	expectErr(t, err, domain.ErrAccountNotFound)
	_, err = repo.FindByID(ctx, "not-a-uuid")
	expectErr(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_Update(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	alice := mustCreate(t, repo, "alice", "a@x.io")
	mustCreate(t, repo, "bob", "b@x.io")

	phone := "+5215555555555"
	username := "alice2"
	updated, err := repo.Update(ctx, alice.ID, domain.AccountUpdate{Username: &username, PhoneNumber: &phone})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Username != "alice2" || updated.Email != "a@x.io" {
		t.Fatalf("unexpected account %+v", updated)
	}
	if updated.PhoneNumber == nil || *updated.PhoneNumber != phone {
		t.Fatalf("phone number not stored: %v", updated.PhoneNumber)
	}

	taken := "b@x.io"
	_, err = repo.Update(ctx, alice.ID, domain.AccountUpdate{Email: &taken})
	expectErr(t, err, domain.ErrAccountExists)

	_, err = repo.Update(ctx, uuid.NewString(), domain.AccountUpdate{Username: &username})
	expectErr(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_VerificationCode(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	alice := mustCreate(t, repo, "alice", "a@x.io")

	withCode, err := repo.Update(ctx, alice.ID, domain.AccountUpdate{
		Verification: &domain.Verification{Code: "123456", ExpiresAt: now.Add(5 * time.Minute)},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if withCode.Verification == nil || !now.Add(5*time.Minute).Equal(withCode.Verification.ExpiresAt) {
		t.Fatalf("verification not stored: %+v", withCode.Verification)
	}

	_, err = repo.ConsumeVerificationCode(ctx, "a@x.io", "654321", now)
	expectErr(t, err, domain.ErrAccountNotFound)
	// dead at its expiry instant
	_, err = repo.ConsumeVerificationCode(ctx, "a@x.io", "123456", now.Add(5*time.Minute))
	expectErr(t, err, domain.ErrAccountNotFound)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ConsumeVerificationCode(ctx, "a@x.io", "123456", now); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if successes != 1 {
		t.Fatalf("expected exactly one redemption, got %d", successes)
	}

	after, err := repo.FindByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if after.Verification != nil {
		t.Fatalf("code should be cleared after redemption")
	}
}

func TestAccountRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	alice := mustCreate(t, repo, "alice", "a@x.io")

	if err := repo.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	expectErr(t, repo.Delete(ctx, alice.ID), domain.ErrAccountNotFound)

	_, err := repo.FindByEmail(ctx, "a@x.io")
	expectErr(t, err, domain.ErrAccountNotFound)
}
