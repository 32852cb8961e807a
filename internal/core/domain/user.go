package domain

import "time"

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User models a player account. The password hash never leaves the
// service boundary; the json tag guards against accidental serialization.
type User struct {
	ID                     string    `json:"id"`
	UserName               string    `json:"username"`
	Email                  string    `json:"email"`
	PasswordHash           string    `json:"-"`
	FirstName              string    `json:"first_name"`
	LastName               string    `json:"last_name"`
	Roles                  []string  `json:"roles"`
	Active                 bool      `json:"active"`
	EmailConfirmed         bool      `json:"email_confirmed"`
	Preferred              bool      `json:"preferred"`
	PreferredPlus          bool      `json:"preferred_plus"`
	Rating                 float64   `json:"rating"`
	NotificationPreference int       `json:"notification_preference"`
	PayPalEmail            string    `json:"paypal_email,omitempty"`
	VenmoAccount           string    `json:"venmo_account,omitempty"`
	MobileLast4            string    `json:"mobile_last4,omitempty"`
	EmergencyName          string    `json:"emergency_name,omitempty"`
	EmergencyPhone         string    `json:"emergency_phone,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// FullName joins first and last name, tolerating either being empty.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleFromRoles collapses a role set to the single strongest role.
// Admin wins over User; an empty or unknown set degrades to User.
func RoleFromRoles(roles []string) string {
	for _, r := range roles {
		if r == RoleAdmin {
			return RoleAdmin
		}
	}
	return RoleUser
}
