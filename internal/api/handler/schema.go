package handler

import (
	"time"

	"github.com/rinkside/pickup-api/internal/core/domain"
)

// apiError is a single entry in a failure envelope's error list.
type apiError struct {
	Message string `json:"message"`
}

// apiResponse is the uniform envelope for data-bearing operations:
// {success, message, data, errors}. Simple acknowledgements use a
// bare {message} map instead.
type apiResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data"`
	Errors  []apiError `json:"errors"`
}

func successEnvelope(message string, data any) apiResponse {
	return apiResponse{Success: true, Message: message, Data: data, Errors: []apiError{}}
}

func failureEnvelope(message string, errs ...string) apiResponse {
	if len(errs) == 0 {
		errs = []string{message}
	}
	list := make([]apiError, 0, len(errs))
	for _, e := range errs {
		list = append(list, apiError{Message: e})
	}
	return apiResponse{Success: false, Message: message, Data: nil, Errors: list}
}

// --- Request types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email           string `json:"email"            validate:"required,email"`
	Username        string `json:"username"         validate:"required"`
	Password        string `json:"password"         validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	InviteCode      string `json:"invite_code"      validate:"required"`
	FrontendURL     string `json:"frontend_url"     validate:"omitempty,url"`
}

type confirmEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword    string `json:"current_password"     validate:"required"`
	NewPassword        string `json:"new_password"         validate:"required,min=8"`
	ConfirmNewPassword string `json:"confirm_new_password" validate:"required,eqfield=NewPassword"`
}

type forgotPasswordRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	FrontendURL string `json:"frontend_url" validate:"omitempty,url"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"            validate:"required,email"`
	Token           string `json:"token"            validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type saveUserRequest struct {
	FirstName              string `json:"first_name"              validate:"required"`
	LastName               string `json:"last_name"               validate:"required"`
	NotificationPreference int    `json:"notification_preference" validate:"gte=0"`
	PayPalEmail            string `json:"paypal_email"            validate:"omitempty,email"`
	VenmoAccount           string `json:"venmo_account"`
	MobileLast4            string `json:"mobile_last4"            validate:"omitempty,len=4,numeric"`
	EmergencyName          string `json:"emergency_name"`
	EmergencyPhone         string `json:"emergency_phone"`
	Active                 bool   `json:"active"`
	Preferred              bool   `json:"preferred"`
}

// --- Response types ---

// userBasicResponse is the view every authenticated caller may see.
type userBasicResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Roles         []string  `json:"roles"`
	Active        bool      `json:"active"`
	Preferred     bool      `json:"preferred"`
	PreferredPlus bool      `json:"preferred_plus"`
	CreatedAt     time.Time `json:"created_at"`
}

// userDetailedResponse adds payment handles, emergency contact, and
// rating data; served only to admins.
type userDetailedResponse struct {
	userBasicResponse
	EmailConfirmed         bool    `json:"email_confirmed"`
	Rating                 float64 `json:"rating"`
	NotificationPreference int     `json:"notification_preference"`
	PayPalEmail            string  `json:"paypal_email,omitempty"`
	VenmoAccount           string  `json:"venmo_account,omitempty"`
	MobileLast4            string  `json:"mobile_last4,omitempty"`
	EmergencyName          string  `json:"emergency_name,omitempty"`
	EmergencyPhone         string  `json:"emergency_phone,omitempty"`
}

type loginResponse struct {
	Token      string            `json:"token"`
	Expiration time.Time         `json:"expiration"`
	User       userBasicResponse `json:"user"`
}

func toBasicUser(u *domain.User) userBasicResponse {
	return userBasicResponse{
		ID:            u.ID,
		Username:      u.UserName,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Roles:         u.Roles,
		Active:        u.Active,
		Preferred:     u.Preferred,
		PreferredPlus: u.PreferredPlus,
		CreatedAt:     u.CreatedAt,
	}
}

func toDetailedUser(u *domain.User) userDetailedResponse {
	return userDetailedResponse{
		userBasicResponse:      toBasicUser(u),
		EmailConfirmed:         u.EmailConfirmed,
		Rating:                 u.Rating,
		NotificationPreference: u.NotificationPreference,
		PayPalEmail:            u.PayPalEmail,
		VenmoAccount:           u.VenmoAccount,
		MobileLast4:            u.MobileLast4,
		EmergencyName:          u.EmergencyName,
		EmergencyPhone:         u.EmergencyPhone,
	}
}
