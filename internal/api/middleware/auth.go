package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/useraccounts/account-api/internal/core/domain"
	"github.com/useraccounts/account-api/internal/core/ports"
)

// Context keys set by Auth.
const (
	ContextToken     = "token"
	ContextAccountID = "account_id"
	ContextRole      = "role"
)

// TokenHeader carries the token on account routes. Authorization: Bearer is
// accepted as well.
const TokenHeader = "token"

// Auth reads the request token and, when it verifies for purpose, injects its
// claims into the context. A missing or invalid token is passed on without
// claims: the account service checks the body first and rejects the token
// itself.
func Auth(tokens ports.TokenService, purpose domain.TokenPurpose) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c.Request())
			if raw == "" {
				return next(c)
			}
			c.Set(ContextToken, raw)

			claims, err := tokens.Verify(raw)
			if err == nil && claims.Purpose == purpose {
				c.Set(ContextAccountID, claims.Subject)
				c.Set(ContextRole, claims.Role)
			}

			return next(c)
		}
	}
}

func extractToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(TokenHeader)); tok != "" {
		return tok
	}
	parts := strings.SplitN(r.Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
