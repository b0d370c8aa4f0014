package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/useraccounts/account-api/internal/core/domain"
	"github.com/useraccounts/account-api/internal/core/ports"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72

	DefaultSessionTTL    = 24 * time.Hour
	DefaultResetTokenTTL = 5 * time.Minute
	DefaultCodeTTL       = 5 * time.Minute
)

const (
	msgRegisterRequired  = "Username, email, and password are required"
	msgPasswordTooShort  = "Password must be at least 8 characters long"
	msgPasswordTooLong   = "Password must be at most 72 bytes long"
	msgAccountExists     = "User already exists"
	msgRegistered        = "User registered successfully"
	msgLoginRequired     = "Email and password are required"
	msgInvalidLogin      = "Invalid credentials"
	msgLoggedIn          = "User logged in successfully"
	msgEmailRequired     = "Email is required"
	msgAccountNotFound   = "User not found"
	msgCodeSent          = "Verification code sent successfully"
	msgVerifyRequired    = "Email and verification code are required"
	msgInvalidCode       = "Invalid verification code"
	msgVerified          = "Verification successful"
	msgPasswordRequired  = "Password is required"
	msgInvalidToken      = "Invalid token"
	msgTokenUsed         = "Token already used"
	msgPasswordUpdated   = "Password updated successfully"
	msgEditRequired      = "Id, username and email are required"
	msgSubjectMismatch   = "Invalid user ID"
	msgEmailTaken        = "Email already in use"
	msgAccountUpdated    = "User updated successfully"
	msgDeleteRequired    = "Id is required"
	msgAccountDeleted    = "User deleted successfully"
	verificationSubject  = "Verification Code"
	verificationTemplate = "Your verification code is: %s. This code is valid for %s."
)

// Dependencies are the collaborators of AccountService.
type Dependencies struct {
	Repo   ports.AccountRepository
	Hasher ports.PasswordHasher
	Tokens ports.TokenService
	Codes  ports.CodeGenerator
	Mailer ports.Mailer
	Replay ports.ReplayGuard
}

// Options tunes lifetimes and mail composition. Zero values fall back to the
// defaults above.
type Options struct {
	MailFrom      string
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	CodeTTL       time.Duration
	Now           func() time.Time
}

// AccountService implements registration, login and the password recovery
// flow on top of an AccountRepository.
type AccountService struct {
	deps Dependencies
	opts Options
	log  zerolog.Logger

	// digest verified against when the email is unknown, so both login
	// failures cost one bcrypt comparison.
	dummyDigest string
}

var _ ports.AccountService = (*AccountService)(nil)

func NewAccountService(deps Dependencies, opts Options, log zerolog.Logger) (*AccountService, error) {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = DefaultResetTokenTTL
	}
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = DefaultCodeTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	dummy, err := deps.Hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}

	return &AccountService{
		deps:        deps,
		opts:        opts,
		log:         log.With().Str("component", "account_service").Logger(),
		dummyDigest: dummy,
	}, nil
}

func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) domain.Result {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return domain.Invalid(msgRegisterRequired)
	}
	if msg := checkPassword(in.Password); msg != "" {
		return domain.Invalid(msg)
	}

	// Fast path only: the store's unique constraint decides on races below.
	if _, err := s.deps.Repo.FindByEmail(ctx, email); err == nil {
		return conflict(msgAccountExists)
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return s.internal("register", err)
	}

	hash, err := s.deps.Hasher.Hash(in.Password)
	if err != nil {
		return s.internal("register", err)
	}

	created, err := s.deps.Repo.Create(ctx, &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return conflict(msgAccountExists)
		}
		return s.internal("register", err)
	}

	s.log.Info().Str("account_id", created.ID).Msg("account registered")
	return domain.NewResult(domain.OutcomeCreated, http.StatusCreated, msgRegistered)
}

// Login never tells an unknown email apart from a wrong password.
func (s *AccountService) Login(ctx context.Context, email, password string) domain.Result {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Invalid(msgLoginRequired)
	}

	account, err := s.deps.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.deps.Hasher.Verify(password, s.dummyDigest)
			return invalidLogin()
		}
		return s.internal("login", err)
	}
	if !s.deps.Hasher.Verify(password, account.PasswordHash) {
		return invalidLogin()
	}

	token, err := s.deps.Tokens.Issue(domain.TokenClaims{
		Subject: account.ID,
		Email:   account.Email,
		Role:    domain.RoleUser,
		Purpose: domain.PurposeSession,
	}, s.opts.SessionTTL)
	if err != nil {
		return s.internal("login", err)
	}

	res := domain.NewResult(domain.OutcomeOK, http.StatusOK, msgLoggedIn)
	res.Token = token
	return res
}

// ForgotPassword replaces any pending code with a fresh one and mails it.
// When delivery fails the code stays persisted, so calling again is safe.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) domain.Result {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Invalid(msgEmailRequired)
	}

	account, err := s.deps.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return notFound(http.StatusNotFound, msgAccountNotFound)
		}
		return s.internal("forgot_password", err)
	}

	code, err := s.deps.Codes.Generate()
	if err != nil {
		return s.internal("forgot_password", err)
	}

	verification := &domain.Verification{Code: code, ExpiresAt: s.opts.Now().Add(s.opts.CodeTTL)}
	if _, err := s.deps.Repo.Update(ctx, account.ID, domain.AccountUpdate{Verification: verification}); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return notFound(http.StatusNotFound, msgAccountNotFound)
		}
		return s.internal("forgot_password", err)
	}

	if err := s.deps.Mailer.Send(ctx, s.verificationMail(account.Email, code)); err != nil {
		return s.internal("forgot_password", fmt.Errorf("send verification mail: %w", err))
	}

	s.log.Info().Str("account_id", account.ID).Msg("verification code issued")
	return domain.NewResult(domain.OutcomeOK, http.StatusOK, msgCodeSent)
}

// VerifyCode redeems a pending code once and returns a short-lived token that
// authorizes a single password reset.
func (s *AccountService) VerifyCode(ctx context.Context, email, code string) domain.Result {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return domain.Invalid(msgVerifyRequired)
	}

	account, err := s.deps.Repo.ConsumeVerificationCode(ctx, email, code, s.opts.Now())
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return notFound(http.StatusNotFound, msgInvalidCode)
		}
		return s.internal("verify_code", err)
	}

	token, err := s.deps.Tokens.Issue(domain.TokenClaims{
		Subject: account.ID,
		Purpose: domain.PurposePasswordReset,
	}, s.opts.ResetTokenTTL)
	if err != nil {
		return s.internal("verify_code", err)
	}

	res := domain.NewResult(domain.OutcomeOK, http.StatusOK, msgVerified)
	res.Token = token
	return res
}

// ResetPassword overwrites the password of the token subject. The old password
// is not required: redeeming the emailed code was the authorization step.
func (s *AccountService) ResetPassword(ctx context.Context, token, password string) domain.Result {
	if password == "" {
		return domain.Invalid(msgPasswordRequired)
	}
	if msg := checkPassword(password); msg != "" {
		return domain.Invalid(msg)
	}

	claims, ok := s.authorize(token, domain.PurposePasswordReset)
	if !ok {
		return domain.Unauthorized(msgInvalidToken)
	}

	if err := s.deps.Replay.Consume(ctx, claims.ID, claims.ExpiresAt); err != nil {
		if errors.Is(err, domain.ErrTokenReplayed) {
			return domain.Unauthorized(msgTokenUsed)
		}
		return s.internal("reset_password", err)
	}

	hash, err := s.deps.Hasher.Hash(password)
	if err != nil {
		s.release(ctx, claims.ID)
		return s.internal("reset_password", err)
	}

	if _, err := s.deps.Repo.Update(ctx, claims.Subject, domain.AccountUpdate{PasswordHash: &hash}); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return notFound(http.StatusBadRequest, msgAccountNotFound)
		}
		s.release(ctx, claims.ID)
		return s.internal("reset_password", err)
	}

	s.log.Info().Str("account_id", claims.Subject).Msg("password reset")
	return domain.NewResult(domain.OutcomeOK, http.StatusOK, msgPasswordUpdated)
}

// Edit overwrites the profile of the token subject. The payload id must name
// the same account as the token.
func (s *AccountService) Edit(ctx context.Context, token string, in ports.EditInput) domain.Result {
	id := strings.TrimSpace(in.ID)
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if id == "" || username == "" || email == "" {
		return domain.Invalid(msgEditRequired)
	}

	claims, ok := s.authorize(token, domain.PurposeSession)
	if !ok {
		return domain.Unauthorized(msgInvalidToken)
	}
	if claims.Subject != id {
		return domain.Unauthorized(msgSubjectMismatch)
	}

	_, err := s.deps.Repo.Update(ctx, id, domain.AccountUpdate{
		Username:     &username,
		Email:        &email,
		ProfilePhoto: in.ProfilePhoto,
		PhoneToken:   in.PhoneToken,
		PhoneNumber:  in.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return notFound(http.StatusBadRequest, msgAccountNotFound)
		case errors.Is(err, domain.ErrAccountExists):
			return conflict(msgEmailTaken)
		}
		return s.internal("edit", err)
	}

	return domain.NewResult(domain.OutcomeOK, http.StatusOK, msgAccountUpdated)
}

// Delete removes the token subject. The payload id must match the token.
func (s *AccountService) Delete(ctx context.Context, token, id string) domain.Result {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Invalid(msgDeleteRequired)
	}

	claims, ok := s.authorize(token, domain.PurposeSession)
	if !ok {
		return domain.Unauthorized(msgInvalidToken)
	}
	if claims.Subject != id {
		return domain.Unauthorized(msgSubjectMismatch)
	}

	if err := s.deps.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return notFound(http.StatusBadRequest, msgAccountNotFound)
		}
		return s.internal("delete", err)
	}

	s.log.Info().Str("account_id", id).Msg("account deleted")
	return domain.NewResult(domain.OutcomeDeleted, http.StatusNoContent, msgAccountDeleted)
}

// authorize verifies token and checks it was issued for purpose.
func (s *AccountService) authorize(token string, purpose domain.TokenPurpose) (*domain.TokenClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims, err := s.deps.Tokens.Verify(token)
	if err != nil || claims.Purpose != purpose {
		return nil, false
	}
	if purpose == domain.PurposeSession && claims.Role != domain.RoleUser {
		return nil, false
	}
	return claims, true
}

func (s *AccountService) verificationMail(to, code string) domain.MailMessage {
	return domain.MailMessage{
		From:    s.opts.MailFrom,
		To:      to,
		Subject: verificationSubject,
		Body:    fmt.Sprintf(verificationTemplate, code, humanizeTTL(s.opts.CodeTTL)),
	}
}

func (s *AccountService) internal(op string, err error) domain.Result {
	s.log.Error().Err(err).Str("op", op).Msg("account operation failed")
	return domain.Internal(fmt.Errorf("%s: %w", op, err))
}

// release hands a reset token back after a failed write so the user can retry.
func (s *AccountService) release(ctx context.Context, tokenID string) {
	if err := s.deps.Replay.Release(ctx, tokenID); err != nil {
		s.log.Error().Err(err).Str("op", "reset_password").Msg("release reset token")
	}
}

func checkPassword(password string) string {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return msgPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return msgPasswordTooLong
	}
	return ""
}

func invalidLogin() domain.Result {
	return domain.NewResult(domain.OutcomeUnauthorized, http.StatusBadRequest, msgInvalidLogin)
}

func conflict(msg string) domain.Result {
	return domain.NewResult(domain.OutcomeConflict, http.StatusBadRequest, msg)
}

func notFound(status int, msg string) domain.Result {
	return domain.NewResult(domain.OutcomeNotFound, status, msg)
}

func humanizeTTL(ttl time.Duration) string {
	if ttl < time.Minute {
		return fmt.Sprintf("%d seconds", int(ttl.Seconds()))
	}
	minutes := int(math.Round(ttl.Minutes()))
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
