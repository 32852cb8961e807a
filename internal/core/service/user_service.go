package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rinkside/pickup-api/internal/core/domain"
	"github.com/rinkside/pickup-api/internal/core/ports"
)

// UserService covers authenticated profile maintenance and the active
// roster listing.
type UserService struct {
	users  ports.UserStore
	logger zerolog.Logger
}

func NewUserService(users ports.UserStore, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// SaveProfile updates the caller's own profile fields and returns the
// refreshed user. An id that resolves to no identity, including the
// empty id, fails with domain.ErrUserNotFound.
func (s *UserService) SaveProfile(ctx context.Context, userID string, input ports.ProfileInput) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUserNotFound
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.users.SaveProfile(ctx, userID, input); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Msg("profile saved")
	return s.users.FindByID(ctx, userID)
}

// GetUser resolves a single user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.users.FindByID(ctx, id)
}

// ListActive returns all active users. View shaping (basic vs
// detailed) is the transport layer's concern, driven by the caller's
// verified role.
func (s *UserService) ListActive(ctx context.Context) ([]domain.User, error) {
	return s.users.ListActive(ctx)
}
