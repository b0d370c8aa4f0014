package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/useraccounts/account-api/internal/core/domain"
	"github.com/useraccounts/account-api/internal/core/ports"
)

var _ ports.AccountRepository = (*AccountRepository)(nil)

const accountColumns = `id::text, username, email, password_hash, profile_photo, phone_token,
	phone_number, verification_code, code_expiry`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE email = $1`, email)
	return scanAccount(row, "find account by email")
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if !validID(id) {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	return scanAccount(row, "find account by id")
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		INSERT INTO users (id, username, email, password_hash, profile_photo, phone_token, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns

	row := r.pool.QueryRow(ctx, query,
		uuid.NewString(),
		account.Username,
		account.Email,
		account.PasswordHash,
		account.ProfilePhoto,
		account.PhoneToken,
		account.PhoneNumber,
	)
	return scanAccount(row, "insert account")
}

// Update overwrites the non-nil fields of update in a single statement.
func (r *AccountRepository) Update(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error) {
	if !validID(id) {
		return nil, domain.ErrAccountNotFound
	}

	var (
		code   *string
		expiry *time.Time
	)
	if update.Verification != nil {
		code = &update.Verification.Code
		expiry = &update.Verification.ExpiresAt
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		UPDATE users SET
			username          = COALESCE($2, username),
			email             = COALESCE($3, email),
			password_hash     = COALESCE($4, password_hash),
			profile_photo     = COALESCE($5, profile_photo),
			phone_token       = COALESCE($6, phone_token),
			phone_number      = COALESCE($7, phone_number),
			verification_code = CASE WHEN $8 THEN NULL ELSE COALESCE($9, verification_code) END,
			code_expiry       = CASE WHEN $8 THEN NULL ELSE COALESCE($10, code_expiry) END,
			updated_at        = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	row := r.pool.QueryRow(ctx, query,
		id,
		update.Username,
		update.Email,
		update.PasswordHash,
		update.ProfilePhoto,
		update.PhoneToken,
		update.PhoneNumber,
		update.ClearVerification,
		code,
		expiry,
	)
	return scanAccount(row, "update account")
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ConsumeVerificationCode clears a live matching code with a conditional
// UPDATE, so only one caller can redeem it.
func (r *AccountRepository) ConsumeVerificationCode(ctx context.Context, email, code string, now time.Time) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		UPDATE users SET
			verification_code = NULL,
			code_expiry       = NULL,
			updated_at        = NOW()
		WHERE email = $1 AND verification_code = $2 AND code_expiry > $3
		RETURNING ` + accountColumns

	row := r.pool.QueryRow(ctx, query, email, code, now)
	return scanAccount(row, "consume verification code")
}

func scanAccount(row pgx.Row, op string) (*domain.Account, error) {
	var (
		a      domain.Account
		code   *string
		expiry *time.Time
	)
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.PasswordHash,
		&a.ProfilePhoto,
		&a.PhoneToken,
		&a.PhoneNumber,
		&code,
		&expiry,
	)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domain.ErrAccountNotFound
		case isUniqueViolation(err):
			return nil, fmt.Errorf("%s: %w", op, domain.ErrAccountExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if code != nil && expiry != nil {
		a.Verification = &domain.Verification{Code: *code, ExpiresAt: expiry.UTC()}
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// validID filters ids that could never match, so the uuid cast cannot fail
// inside the query.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
