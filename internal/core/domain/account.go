package domain

import (
	"errors"
	"time"
)

// RoleUser is the only role issued to accounts.
const RoleUser = "User"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTokenReplayed   = errors.New("token already used")
)

// Verification is a pending password-recovery code. Code and expiry only
// exist together.
type Verification struct {
	Code      string    `json:"-" bson:"code"`
	ExpiresAt time.Time `json:"-" bson:"expires_at"`
}

// Live reports whether the code can still be redeemed at now.
func (v *Verification) Live(now time.Time) bool {
	return v != nil && now.Before(v.ExpiresAt)
}

// Account is the identity and credential record of a user.
type Account struct {
	ID           string        `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	ProfilePhoto *string       `json:"profilephoto,omitempty"`
	PhoneToken   *string       `json:"phonetoken,omitempty"`
	PhoneNumber  *string       `json:"phonenumber,omitempty"`
	Verification *Verification `json:"-"`
}

// AccountUpdate lists the fields to overwrite on an existing account. Nil
// pointers leave the stored value untouched.
type AccountUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
	ProfilePhoto *string
	PhoneToken   *string
	PhoneNumber  *string

	// Verification replaces the pending code; ClearVerification removes it.
	// Setting both is invalid.
	Verification      *Verification
	ClearVerification bool
}

// Apply writes u onto a copy of a and returns it.
func (u AccountUpdate) Apply(a Account) Account {
	if u.Username != nil {
		a.Username = *u.Username
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.PasswordHash != nil {
		a.PasswordHash = *u.PasswordHash
	}
	if u.ProfilePhoto != nil {
		a.ProfilePhoto = u.ProfilePhoto
	}
	if u.PhoneToken != nil {
		a.PhoneToken = u.PhoneToken
	}
	if u.PhoneNumber != nil {
		a.PhoneNumber = u.PhoneNumber
	}
	switch {
	case u.ClearVerification:
		a.Verification = nil
	case u.Verification != nil:
		v := *u.Verification
		a.Verification = &v
	}
	return a
}
