package domain

import "time"

// TokenPurpose scopes what a signed token may be used for.
type TokenPurpose string

const (
	PurposeSession       TokenPurpose = "session"
	PurposePasswordReset TokenPurpose = "password_reset"
)

// TokenClaims is the claim set carried by issued tokens.
type TokenClaims struct {
	ID        string
	Subject   string
	Email     string
	Role      string
	Purpose   TokenPurpose
	ExpiresAt time.Time
}
