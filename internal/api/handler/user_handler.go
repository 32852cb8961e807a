package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rinkside/pickup-api/internal/core/domain"
	"github.com/rinkside/pickup-api/internal/core/ports"
)

// UserHandler exposes authenticated profile and roster endpoints.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SaveProfile updates the caller's own profile.
//
// @Summary      Save own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      saveUserRequest  true  "Profile fields"
// @Success      200   {object}  apiResponse
// @Failure      400   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Failure      404   {object}  apiResponse
// @Router       /api/users/me [put]
func (h *UserHandler) SaveProfile(c echo.Context) error {
	userID, _, err := authClaims(c)
	if err != nil {
		return err
	}
	if userID == "" {
		return c.JSON(http.StatusNotFound, failureEnvelope("User not found"))
	}

	var req saveUserRequest
	if ok, err := decodeRequest(c, &req); !ok {
		return err
	}

	user, err := h.userService.SaveProfile(c.Request().Context(), userID, ports.ProfileInput{
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		NotificationPreference: req.NotificationPreference,
		PayPalEmail:            req.PayPalEmail,
		VenmoAccount:           req.VenmoAccount,
		MobileLast4:            req.MobileLast4,
		EmergencyName:          req.EmergencyName,
		EmergencyPhone:         req.EmergencyPhone,
		Active:                 req.Active,
		Preferred:              req.Preferred,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, failureEnvelope("User not found"))
		}
		return err
	}

	return c.JSON(http.StatusOK, successEnvelope("Profile saved", toDetailedUser(user)))
}

// List returns all active users. The view is shaped by the caller's
// verified role: admins receive the detailed view, everyone else the
// basic one.
//
// @Summary      List active users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	_, roles, err := authClaims(c)
	if err != nil {
		return err
	}

	users, err := h.userService.ListActive(c.Request().Context())
	if err != nil {
		return err
	}

	if domain.RoleFromRoles(roles) == domain.RoleAdmin {
		out := make([]userDetailedResponse, 0, len(users))
		for i := range users {
			out = append(out, toDetailedUser(&users[i]))
		}
		return c.JSON(http.StatusOK, successEnvelope("Users retrieved", out))
	}

	out := make([]userBasicResponse, 0, len(users))
	for i := range users {
		out = append(out, toBasicUser(&users[i]))
	}
	return c.JSON(http.StatusOK, successEnvelope("Users retrieved", out))
}

// Get returns a single user's detailed record. Admin only.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Failure      403  {object}  apiResponse
// @Failure      404  {object}  apiResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, failureEnvelope("User not found"))
		}
		return err
	}
	return c.JSON(http.StatusOK, successEnvelope("User retrieved", toDetailedUser(user)))
}
