package domain

import "errors"

// Credential and account errors. Login collapses every credential
// failure into ErrInvalidCredentials so responses cannot distinguish
// unknown accounts from wrong passwords.
var (
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUserNotFound             = errors.New("user not found")
	ErrUserExists               = errors.New("user already exists")
	ErrInvalidInviteCode        = errors.New("invalid invitation code")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrInvalidOrExpiredToken    = errors.New("invalid or expired token")
	ErrForbidden                = errors.New("forbidden")
)

// Session token errors, in verification order: form and signature
// first, then expiry, then the blacklist.
var (
	ErrTokenMalformed     = errors.New("token is malformed")
	ErrTokenExpired       = errors.New("token is expired")
	ErrTokenBlacklisted   = errors.New("token is blacklisted")
	ErrNoTokenFound       = errors.New("no token found")
	ErrAlreadyInvalidated = errors.New("token already invalidated")
)
