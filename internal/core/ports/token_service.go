package ports

import (
	"context"
	"time"

	"github.com/rinkside/pickup-api/internal/core/domain"
)

// Claims is the decoded, verified payload of a session token.
type Claims struct {
	UserID    string
	Username  string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Role collapses the embedded role set to the strongest single role.
func (c *Claims) Role() string {
	return domain.RoleFromRoles(c.Roles)
}

// TokenService issues, verifies, and invalidates session tokens.
//
// Verify checks in order: signature/form, expiry, blacklist; it fails
// fast with domain.ErrTokenMalformed, domain.ErrTokenExpired, or
// domain.ErrTokenBlacklisted respectively.
type TokenService interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
	Verify(ctx context.Context, token string) (*Claims, error)
	// Invalidate blacklists the token for its remaining lifetime.
	// Returns domain.ErrNoTokenFound for an empty token and
	// domain.ErrAlreadyInvalidated on a repeated logout.
	Invalidate(ctx context.Context, token string) error
}
