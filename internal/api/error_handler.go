package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rinkside/pickup-api/internal/core/domain"
)

type errorBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler maps domain errors that escaped the handlers to
// the documented status codes and hides everything else behind a 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"

		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		case errors.Is(err, domain.ErrInvalidCredentials):
			status, message = http.StatusUnauthorized, "Invalid credentials"
		case errors.Is(err, domain.ErrTokenMalformed),
			errors.Is(err, domain.ErrTokenExpired),
			errors.Is(err, domain.ErrTokenBlacklisted):
			status, message = http.StatusUnauthorized, "Invalid token"
		case errors.Is(err, domain.ErrForbidden):
			status, message = http.StatusForbidden, "Forbidden"
		case errors.Is(err, domain.ErrUserNotFound):
			status, message = http.StatusNotFound, "User not found"
		case errors.Is(err, domain.ErrNoTokenFound):
			status, message = http.StatusBadRequest, "No token found"
		case errors.Is(err, domain.ErrAlreadyInvalidated):
			status, message = http.StatusBadRequest, "Token already invalidated"
		case errors.Is(err, domain.ErrInvalidOrExpiredToken):
			status, message = http.StatusBadRequest, "Invalid or expired token"
		case errors.Is(err, domain.ErrCurrentPasswordIncorrect):
			status, message = http.StatusBadRequest, "Current password is incorrect"
		case errors.Is(err, domain.ErrInvalidInviteCode):
			status, message = http.StatusBadRequest, "Invalid invitation code"
		case errors.Is(err, domain.ErrUserExists):
			status, message = http.StatusBadRequest, "Registration failed"
		default:
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		body := errorBody{
			Success: false,
			Message: message,
			Errors:  []errorItem{{Message: message}},
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Error().Err(werr).Msg("failed to write error response")
		}
	}
}
