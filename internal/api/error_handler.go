package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/useraccounts/account-api/internal/core/domain"
)

// NewHTTPErrorHandler renders errors that escape handlers (middleware
// rejections, router misses, panics) in the same {status, message} envelope
// the account operations answer with. Unexpected errors are logged and
// reported as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		res := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(res.Status)
			return
		}
		_ = c.JSON(res.Status, res)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) domain.Result {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return domain.NewResult(outcomeFor(he.Code), he.Code, fmt.Sprintf("%v", he.Message))
	}

	switch {
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrTokenReplayed), errors.Is(err, domain.ErrUnauthorized):
		return domain.Unauthorized("Invalid token")
	case errors.Is(err, domain.ErrAccountNotFound):
		return domain.NewResult(domain.OutcomeNotFound, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrAccountExists):
		return domain.NewResult(domain.OutcomeConflict, http.StatusBadRequest, "User already exists")
	case errors.Is(err, domain.ErrInvalidInput):
		return domain.Invalid(err.Error())
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return domain.Internal(err)
}

func outcomeFor(status int) domain.Outcome {
	switch status {
	case http.StatusBadRequest:
		return domain.OutcomeInvalidInput
	case http.StatusUnauthorized:
		return domain.OutcomeUnauthorized
	case http.StatusNotFound:
		return domain.OutcomeNotFound
	}
	if status >= http.StatusInternalServerError {
		return domain.OutcomeInternal
	}
	return domain.OutcomeInvalidInput
}
