package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/useraccounts/account-api/internal/api/middleware"
)

// ctxToken returns the raw token accepted by the Auth middleware. The service
// verifies it again and decides on its own.
func ctxToken(c echo.Context) string {
	tok, _ := c.Get(middleware.ContextToken).(string)
	return tok
}
