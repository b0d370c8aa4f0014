package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}
	return h
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	digest, err := h.Hash("longpassword")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if digest == "longpassword" {
		t.Fatalf("digest must not be the plaintext")
	}
	if !h.Verify("longpassword", digest) {
		t.Fatalf("expected the original password to verify")
	}
	if h.Verify("wrongpassword", digest) {
		t.Fatalf("a wrong password verified")
	}
}

func TestBcryptHasher_SaltedPerCall(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if a == b {
		t.Fatalf("two hashes of the same password are identical")
	}
	if !h.Verify("same-password", a) || !h.Verify("same-password", b) {
		t.Fatalf("both digests should verify")
	}
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	h := newTestHasher(t)

	for _, digest := range []string{"", "not-a-bcrypt-digest"} {
		if h.Verify("password", digest) {
			t.Fatalf("digest %q verified", digest)
		}
	}
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	h, err := NewBcryptHasher(0)
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}
	if h.cost != DefaultBcryptCost {
		t.Fatalf("expected default cost %d, got %d", DefaultBcryptCost, h.cost)
	}

	digest, err := h.Hash("longpassword")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		t.Fatalf("bcrypt.Cost: %v", err)
	}
	if cost != DefaultBcryptCost {
		t.Fatalf("digest cost %d, want %d", cost, DefaultBcryptCost)
	}

	for _, c := range []int{bcrypt.MaxCost + 1, 1} {
		if _, err := NewBcryptHasher(c); err == nil {
			t.Fatalf("expected error for cost %d", c)
		}
	}
}
