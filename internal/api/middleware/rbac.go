package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RBAC rejects authenticated requests whose token role is not one of
// allowedRoles. Requests without claims are left to the account service. It
// must run after Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(string)
			if !ok {
				return next(c)
			}
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			return next(c)
		}
	}
}
