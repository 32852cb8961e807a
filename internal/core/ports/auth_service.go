package ports

import (
	"context"
	"time"

	"github.com/rinkside/pickup-api/internal/core/domain"
)

// RegisterInput carries everything needed to create a new account.
// Password/ConfirmPassword equality is the transport layer's contract
// (request validation); the service does not re-check it.
type RegisterInput struct {
	Email       string
	UserName    string
	Password    string
	FirstName   string
	LastName    string
	InviteCode  string
	FrontendURL string
}

// LoginResult is returned on successful credential validation.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService covers credential validation and the account lifecycle.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	ConfirmEmail(ctx context.Context, email, token string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	// ForgotPassword never reveals whether the account exists: it
	// returns nil for unknown emails and only errors on store failure.
	ForgotPassword(ctx context.Context, email, frontendURL string) error
	ResetPassword(ctx context.Context, email, token, newPassword string) error
}

// UserService covers authenticated profile and listing operations.
type UserService interface {
	SaveProfile(ctx context.Context, userID string, input ProfileInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListActive(ctx context.Context) ([]domain.User, error)
}
