package ports

import (
	"context"
	"time"
)

// One-time token purposes. The purpose namespaces the store key so a
// confirmation token can never be replayed as a reset token.
const (
	PurposeEmailConfirm  = "confirm"
	PurposePasswordReset = "reset"
)

// TokenBlacklistStore tracks invalidated session tokens until their
// natural expiry. Implementations must provide insert-if-absent
// semantics so two concurrent logouts of the same token never both
// succeed.
type TokenBlacklistStore interface {
	// Insert records the token for ttl. Returns
	// domain.ErrAlreadyInvalidated when the token is already present.
	Insert(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

// OneTimeTokenStore issues and consumes single-use, time-bounded
// tokens for email confirmation and password reset. Consume must be
// atomic: a token matches at most once, after which it is gone.
type OneTimeTokenStore interface {
	Issue(ctx context.Context, purpose, email string, ttl time.Duration) (string, error)
	// Consume returns domain.ErrInvalidOrExpiredToken when the token
	// does not match a live pending entry.
	Consume(ctx context.Context, purpose, email, token string) error
}
