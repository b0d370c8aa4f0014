package domain

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestAccountUpdate_Apply(t *testing.T) {
	now := time.Now()
	base := Account{
		ID:           "id-1",
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "hash",
		Verification: &Verification{Code: "123456", ExpiresAt: now},
	}

	got := AccountUpdate{Username: strPtr("bob"), PhoneToken: strPtr("tok")}.Apply(base)
	if got.Username != "bob" || got.Email != "alice@x.com" || got.PasswordHash != "hash" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.PhoneToken == nil || *got.PhoneToken != "tok" {
		t.Fatalf("phone token not applied")
	}
	if got.Verification == nil {
		t.Fatalf("verification should be untouched")
	}

	cleared := AccountUpdate{ClearVerification: true}.Apply(base)
	if cleared.Verification != nil {
		t.Fatalf("expected verification to be cleared")
	}
	if base.Verification == nil {
		t.Fatalf("apply must not mutate the original")
	}
}

func TestVerification_Live(t *testing.T) {
	now := time.Now()
	var none *Verification
	if none.Live(now) {
		t.Fatalf("nil verification must not be live")
	}
	if !(&Verification{ExpiresAt: now.Add(time.Second)}).Live(now) {
		t.Fatalf("expected live code")
	}
	if (&Verification{ExpiresAt: now}).Live(now) {
		t.Fatalf("code must expire at its expiry instant")
	}
}
