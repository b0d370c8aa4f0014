package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/useraccounts/account-api/internal/core/domain"
)

// Claims is the JWT payload issued by JWTService.
type Claims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
}

// JWTService signs HS256 tokens with a secret fixed at construction.
type JWTService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type JWTOption func(*JWTService)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTService) { s.now = now }
}

func NewJWTService(secret, issuer string, opts ...JWTOption) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	s := &JWTService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs claims valid for ttl. A token ID is generated when claims.ID is empty.
func (s *JWTService) Issue(claims domain.TokenClaims, ttl time.Duration) (string, error) {
	id := claims.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := s.now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    s.issuer,
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:   claims.Email,
		Role:    claims.Role,
		Purpose: string(claims.Purpose),
	})
	return t.SignedString(s.secret)
}

// Verify checks signature, issuer and expiry. Every failure is reported as
// domain.ErrInvalidToken so callers cannot tell tampered from expired tokens.
func (s *JWTService) Verify(token string) (*domain.TokenClaims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrInvalidToken
	}

	return &domain.TokenClaims{
		ID:        claims.ID,
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		Purpose:   domain.TokenPurpose(claims.Purpose),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
