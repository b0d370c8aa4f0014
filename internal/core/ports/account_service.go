package ports

import (
	"context"

	"github.com/useraccounts/account-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// EditInput carries the profile fields of an edit request. Optional profile
// attributes are left unchanged when nil.
type EditInput struct {
	ID           string
	Username     string
	Email        string
	ProfilePhoto *string
	PhoneToken   *string
	PhoneNumber  *string
}

// AccountService implements the credential and verification lifecycle.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) domain.Result
	Login(ctx context.Context, email, password string) domain.Result
	ForgotPassword(ctx context.Context, email string) domain.Result
	VerifyCode(ctx context.Context, email, code string) domain.Result
	ResetPassword(ctx context.Context, token, password string) domain.Result
	Edit(ctx context.Context, token string, in EditInput) domain.Result
	Delete(ctx context.Context, token, id string) domain.Result
}
