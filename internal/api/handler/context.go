package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apimw "github.com/rinkside/pickup-api/internal/api/middleware"
)

// authClaims extracts the verified claims injected by the Auth
// middleware. A missing role set means the middleware did not run on
// this route; fail closed with 401 before touching any service.
func authClaims(c echo.Context) (userID string, roles []string, err error) {
	roles, ok := c.Get(apimw.CtxRoles).([]string)
	if !ok {
		return "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	userID, _ = c.Get(apimw.CtxUserID).(string)
	return userID, roles, nil
}
