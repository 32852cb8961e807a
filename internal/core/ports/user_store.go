package ports

import (
	"context"

	"github.com/rinkside/pickup-api/internal/core/domain"
)

// ProfileInput carries the self-service profile fields a player may edit.
type ProfileInput struct {
	FirstName              string
	LastName               string
	NotificationPreference int
	PayPalEmail            string
	VenmoAccount           string
	MobileLast4            string
	EmergencyName          string
	EmergencyPhone         string
	Active                 bool
	Preferred              bool
}

// UserStore is the identity store. The auth subsystem reads identities
// and mutates only the password hash, confirmation flag, and profile
// fields; everything else belongs to other subsystems.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUserName(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create relies on the store's unique index on email to return
	// domain.ErrUserExists under concurrent registration.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	MarkEmailConfirmed(ctx context.Context, email string) error
	SaveProfile(ctx context.Context, id string, input ProfileInput) error
	ListActive(ctx context.Context) ([]domain.User, error)
}
