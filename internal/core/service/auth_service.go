package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rinkside/pickup-api/internal/core/domain"
	"github.com/rinkside/pickup-api/internal/core/ports"
)

const (
	confirmTokenTTL = 72 * time.Hour
	resetTokenTTL   = 24 * time.Hour
)

// AuthService implements credential validation and the account
// lifecycle: register, confirm email, change/forgot/reset password.
type AuthService struct {
	users       ports.UserStore
	tokens      ports.TokenService
	oneTime     ports.OneTimeTokenStore
	email       ports.EmailSender
	inviteCodes map[string]struct{}
	logger      zerolog.Logger
}

func NewAuthService(
	users ports.UserStore,
	tokens ports.TokenService,
	oneTime ports.OneTimeTokenStore,
	email ports.EmailSender,
	inviteCodes []string,
	logger zerolog.Logger,
) *AuthService {
	codes := make(map[string]struct{}, len(inviteCodes))
	for _, c := range inviteCodes {
		codes[c] = struct{}{}
	}
	return &AuthService{
		users:       users,
		tokens:      tokens,
		oneTime:     oneTime,
		email:       email,
		inviteCodes: codes,
		logger:      logger,
	}
}

// Login validates credentials and mints a session token. Unknown
// username, inactive account, and password mismatch all collapse into
// the same domain.ErrInvalidCredentials so callers cannot probe which
// part was wrong. bcrypt's comparison is constant-time.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("login succeeded")
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Register gates account creation on a configured invite code, creates
// an inactive-until-confirmed identity, and queues the confirmation
// email. Email uniqueness is enforced by the store's unique index.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if _, ok := s.inviteCodes[input.InviteCode]; !ok {
		return nil, domain.ErrInvalidInviteCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		UserName:     input.UserName,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Roles:        []string{domain.RoleUser},
		Active:       false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.oneTime.Issue(ctx, ports.PurposeEmailConfirm, created.Email, confirmTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := s.email.Send(ctx, confirmationEmail(created, token, input.FrontendURL)); err != nil {
		// The account exists; a lost email is recoverable, a failed
		// registration is not.
		s.logger.Error().Err(err).Str("email", created.Email).Msg("confirmation email dispatch failed")
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// ConfirmEmail consumes the single-use confirmation token and
// activates the account.
func (s *AuthService) ConfirmEmail(ctx context.Context, email, token string) error {
	if err := s.oneTime.Consume(ctx, ports.PurposeEmailConfirm, email, token); err != nil {
		return err
	}
	return s.users.MarkEmailConfirmed(ctx, email)
}

// ChangePassword re-verifies the current password before storing the
// new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrCurrentPasswordIncorrect
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

// ForgotPassword silently no-ops for unknown emails so the response
// never leaks account existence. The reset email is only dispatched
// when the account is found.
func (s *AuthService) ForgotPassword(ctx context.Context, email, frontendURL string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug().Str("email", email).Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.oneTime.Issue(ctx, ports.PurposePasswordReset, user.Email, resetTokenTTL)
	if err != nil {
		return err
	}

	if err := s.email.Send(ctx, resetEmail(user, token, frontendURL)); err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("reset email dispatch failed")
	}
	return nil
}

// ResetPassword consumes the reset token exactly once and stores the
// new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if err := s.oneTime.Consume(ctx, ports.PurposePasswordReset, email, token); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidOrExpiredToken
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset completed")
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

// callbackURL embeds the one-time token and email into the frontend
// callback. Values are URL-encoded here and must be decoded by the
// consuming endpoint before lookup.
func callbackURL(frontendURL, email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return frontendURL + "?" + q.Encode()
}

func confirmationEmail(user *domain.User, token, frontendURL string) ports.EmailMessage {
	return ports.EmailMessage{
		To:      user.Email,
		Subject: "Confirm your email",
		Kind:    ports.EmailKindConfirmation,
		Body: fmt.Sprintf(
			"Hi %s,\n\nConfirm your email to activate your account:\n%s\n",
			user.FullName(), callbackURL(frontendURL, user.Email, token),
		),
	}
}

func resetEmail(user *domain.User, token, frontendURL string) ports.EmailMessage {
	return ports.EmailMessage{
		To:      user.Email,
		Subject: "Reset your password",
		Kind:    ports.EmailKindPasswordReset,
		Body: fmt.Sprintf(
			"Hi %s,\n\nReset your password using the link below. The link expires in 24 hours.\n%s\n",
			user.FullName(), callbackURL(frontendURL, user.Email, token),
		),
	}
}
