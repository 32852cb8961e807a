package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/rinkside/pickup-api/internal/api/metrics"
	apimw "github.com/rinkside/pickup-api/internal/api/middleware"
	"github.com/rinkside/pickup-api/internal/core/domain"
	"github.com/rinkside/pickup-api/internal/core/ports"
)

// AuthHandler exposes the authentication and account lifecycle
// endpoints.
type AuthHandler struct {
	authService ports.AuthService
	tokens      ports.TokenService
	// frontendURL is the default callback base for confirmation and
	// reset links when the request does not carry one.
	frontendURL string
}

func NewAuthHandler(authService ports.AuthService, tokens ports.TokenService, frontendURL string) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens, frontendURL: frontendURL}
}

// Login validates credentials and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  apiResponse
// @Failure      400   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if ok, err := decodeRequest(c, &req); !ok {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return c.JSON(http.StatusUnauthorized, failureEnvelope("Invalid credentials"))
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, successEnvelope("Login successful", loginResponse{
		Token:      result.Token,
		Expiration: result.ExpiresAt,
		User:       toBasicUser(result.User),
	}))
}

// Logout invalidates the presented session token.
//
// The route deliberately sits outside the Auth middleware so the
// no-token case can be reported as 400 before any blacklist lookup,
// while a malformed or expired token is still a 401.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := apimw.BearerToken(c)
	if token == "" {
		metrics.LogoutsTotal.WithLabelValues("no_token").Inc()
		return c.JSON(http.StatusBadRequest, failureEnvelope("No token found"))
	}

	if err := h.tokens.Invalidate(c.Request().Context(), token); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyInvalidated):
			metrics.LogoutsTotal.WithLabelValues("already_invalidated").Inc()
			return c.JSON(http.StatusBadRequest, failureEnvelope("Token already invalidated"))
		case errors.Is(err, domain.ErrTokenMalformed), errors.Is(err, domain.ErrTokenExpired):
			metrics.LogoutsTotal.WithLabelValues("error").Inc()
			return c.JSON(http.StatusUnauthorized, failureEnvelope("Invalid token"))
		}
		metrics.LogoutsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LogoutsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Register creates a new inactive account gated on an invite code and
// queues the confirmation email.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  apiResponse
// @Failure      400   {object}  apiResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if ok, err := decodeRequest(c, &req); !ok {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:       req.Email,
		UserName:    req.Username,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		InviteCode:  req.InviteCode,
		FrontendURL: h.callbackBase(req.FrontendURL),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInviteCode):
			metrics.RegistrationsTotal.WithLabelValues("invalid_invite_code").Inc()
			return c.JSON(http.StatusBadRequest, failureEnvelope("Invalid invitation code"))
		case errors.Is(err, domain.ErrUserExists):
			metrics.RegistrationsTotal.WithLabelValues("duplicate_email").Inc()
			return c.JSON(http.StatusBadRequest, failureEnvelope("Registration failed"))
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, successEnvelope(
		"Account created. Check your email to confirm your address.",
		toBasicUser(user),
	))
}

// ConfirmEmail consumes a single-use confirmation token and activates
// the account.
//
// @Summary      Confirm email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      confirmEmailRequest  true  "Email and confirmation token"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  apiResponse
// @Router       /api/auth/confirm-email [post]
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	var req confirmEmailRequest
	if ok, err := decodeRequest(c, &req); !ok {
		return err
	}

	token, err := url.QueryUnescape(req.Token)
	if err != nil {
		return c.JSON(http.StatusBadRequest, failureEnvelope("Invalid request data", "token is not URL-encoded"))
	}

	if err := h.authService.ConfirmEmail(c.Request().Context(), req.Email, token); err != nil {
		if errors.Is(err, domain.ErrInvalidOrExpiredToken) || errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, failureEnvelope("Invalid or expired token"))
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Email confirmed successfully"})
}

// ChangePassword replaces the caller's password after re-verifying the
// current one.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Failure      404   {object}  apiResponse
// @Router       /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, _, err := authClaims(c)
	if err != nil {
		return err
	}
	// An empty subject claim can never resolve to an identity; reject
	// before the service is invoked.
	if userID == "" {
		return c.JSON(http.StatusNotFound, failureEnvelope("User not found"))
	}

	var req changePasswordRequest
	if ok, err := decodeRequest(c, &req); !ok {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, failureEnvelope("User not found"))
		case errors.Is(err, domain.ErrCurrentPasswordIncorrect):
			return c.JSON(http.StatusBadRequest, failureEnvelope("Current password is incorrect"))
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// forgotPasswordMessage is returned for every ForgotPassword request,
// existing account or not, so responses cannot be used to probe for
// registered emails.
const forgotPasswordMessage = "If the email exists in our system, a password reset link has been sent"

// ForgotPassword starts the reset flow.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  apiResponse
// @Router       /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if ok, err := decodeRequest(c, &req); !ok {
		return err
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email, h.callbackBase(req.FrontendURL)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": forgotPasswordMessage})
}

// ResetPassword consumes a reset token exactly once and stores the new
// password.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Email, reset token, and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  apiResponse
// @Router       /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if ok, err := decodeRequest(c, &req); !ok {
		return err
	}

	token, err := url.QueryUnescape(req.Token)
	if err != nil {
		return c.JSON(http.StatusBadRequest, failureEnvelope("Invalid request data", "token is not URL-encoded"))
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Email, token, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidOrExpiredToken) {
			return c.JSON(http.StatusBadRequest, failureEnvelope("Invalid or expired token"))
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

func (h *AuthHandler) callbackBase(requested string) string {
	if requested != "" {
		return requested
	}
	return h.frontendURL
}

// decodeRequest binds the JSON body and runs request validation. On
// failure it renders the uniform 400 envelope and reports ok=false so
// the handler returns without reaching the service layer.
func decodeRequest(c echo.Context, req any) (ok bool, err error) {
	if berr := c.Bind(req); berr != nil {
		return false, c.JSON(http.StatusBadRequest, failureEnvelope("Invalid request data"))
	}
	if verr := c.Validate(req); verr != nil {
		return false, c.JSON(http.StatusBadRequest, failureEnvelope("Invalid request data", verr.Error()))
	}
	return true, nil
}
