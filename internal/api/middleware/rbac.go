package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rinkside/pickup-api/internal/core/domain"
)

// RequireRole gates a route on the caller's verified role set. The
// role is computed from the claims injected by Auth, never from
// request data.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get(CtxRoles).([]string)
			if _, ok := allowed[domain.RoleFromRoles(roles)]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"message": "forbidden"})
			}
			return next(c)
		}
	}
}
