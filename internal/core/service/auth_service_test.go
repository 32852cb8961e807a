package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rinkside/pickup-api/internal/core/domain"
	"github.com/rinkside/pickup-api/internal/core/ports"
)

type stubUserStore struct {
	users  map[string]*domain.User // keyed by id
	nextID int
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserStore) FindByUserName(_ context.Context, username string) (*domain.User, error) {
	for _, u := range s.users {
		if u.UserName == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	s.nextID++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", s.nextID)
	s.users[created.ID] = cloneUser(created)
	return created, nil
}

func (s *stubUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *stubUserStore) MarkEmailConfirmed(_ context.Context, email string) error {
	for _, u := range s.users {
		if u.Email == email {
			u.EmailConfirmed = true
			u.Active = true
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (s *stubUserStore) SaveProfile(_ context.Context, id string, input ports.ProfileInput) error {
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FirstName = input.FirstName
	u.LastName = input.LastName
	u.NotificationPreference = input.NotificationPreference
	u.PayPalEmail = input.PayPalEmail
	u.VenmoAccount = input.VenmoAccount
	u.MobileLast4 = input.MobileLast4
	u.EmergencyName = input.EmergencyName
	u.EmergencyPhone = input.EmergencyPhone
	u.Active = input.Active
	u.Preferred = input.Preferred
	return nil
}

func (s *stubUserStore) ListActive(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range s.users {
		if u.Active {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

type stubOneTimeStore struct {
	tokens map[string]string // purpose:email -> token
	issued int
}

func newStubOneTimeStore() *stubOneTimeStore {
	return &stubOneTimeStore{tokens: make(map[string]string)}
}

func (s *stubOneTimeStore) Issue(_ context.Context, purpose, email string, _ time.Duration) (string, error) {
	s.issued++
	token := fmt.Sprintf("tok-%s-%d", purpose, s.issued)
	s.tokens[purpose+":"+email] = token
	return token, nil
}

func (s *stubOneTimeStore) Consume(_ context.Context, purpose, email, token string) error {
	key := purpose + ":" + email
	if stored, ok := s.tokens[key]; ok && stored == token {
		delete(s.tokens, key)
		return nil
	}
	return domain.ErrInvalidOrExpiredToken
}

type recordingEmailSender struct {
	sent []ports.EmailMessage
}

func (s *recordingEmailSender) Send(_ context.Context, msg ports.EmailMessage) error {
	s.sent = append(s.sent, msg)
	return nil
}

type authFixture struct {
	svc     *AuthService
	tokens  *TokenService
	users   *stubUserStore
	oneTime *stubOneTimeStore
	email   *recordingEmailSender
}

func newAuthFixture() *authFixture {
	users := newStubUserStore()
	oneTime := newStubOneTimeStore()
	email := &recordingEmailSender{}
	tokens := NewTokenService("secret", time.Hour, newStubBlacklist())
	svc := NewAuthService(users, tokens, oneTime, email, []string{"RINK-2024"}, zerolog.Nop())
	return &authFixture{svc: svc, tokens: tokens, users: users, oneTime: oneTime, email: email}
}

func (f *authFixture) seedUser(t *testing.T, username, email, password string, active bool) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := f.users.Create(context.Background(), &domain.User{
		UserName:     username,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        []string{domain.RoleUser},
		Active:       active,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	f.users.users[user.ID].Active = active
	return user
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	seeded := f.seedUser(t, "alice", "alice@example.com", "s3cret", true)

	result, err := f.svc.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token")
	}
	if result.User.ID != seeded.ID {
		t.Fatalf("unexpected user: %+v", result.User)
	}

	claims, err := f.tokens.Verify(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.UserID != seeded.ID {
		t.Fatalf("token subject %s does not match user id %s", claims.UserID, seeded.ID)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != domain.RoleUser {
		t.Fatalf("token roles %v do not match stored roles", claims.Roles)
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "bob", "bob@example.com", "goodpass", true)
	f.seedUser(t, "carol", "carol@example.com", "pass", false)

	cases := []struct {
		name               string
		username, password string
	}{
		{"unknown user", "ghost", "pass"},
		{"wrong password", "bob", "badpass"},
		{"inactive account", "carol", "pass"},
		{"empty password", "bob", ""},
	}
	for _, tc := range cases {
		if _, err := f.svc.Login(context.Background(), tc.username, tc.password); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", tc.name, err)
		}
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	user, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:       "dave@example.com",
		UserName:    "dave",
		Password:    "s3cret",
		FirstName:   "Dave",
		LastName:    "Doe",
		InviteCode:  "RINK-2024",
		FrontendURL: "https://app.example.com/confirm",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Active || user.EmailConfirmed {
		t.Fatalf("new account must be inactive until confirmed: %+v", user)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatalf("password stored unhashed")
	}

	if len(f.email.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(f.email.sent))
	}
	msg := f.email.sent[0]
	if msg.Kind != ports.EmailKindConfirmation || msg.To != "dave@example.com" {
		t.Fatalf("unexpected email: %+v", msg)
	}
	if !strings.Contains(msg.Body, "https://app.example.com/confirm?") {
		t.Fatalf("confirmation link missing from body: %s", msg.Body)
	}
}

func TestAuthService_Register_InvalidInviteCode(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:      "eve@example.com",
		UserName:   "eve",
		Password:   "pass",
		InviteCode: "INVALID-CODE",
	})
	if !errors.Is(err, domain.ErrInvalidInviteCode) {
		t.Fatalf("expected ErrInvalidInviteCode, got %v", err)
	}
	if len(f.users.users) != 0 {
		t.Fatalf("no identity should be created on invite failure")
	}
	if len(f.email.sent) != 0 {
		t.Fatalf("no email should be sent on invite failure")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "frank", "frank@example.com", "pass", true)

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:      "frank@example.com",
		UserName:   "frank2",
		Password:   "pass",
		InviteCode: "RINK-2024",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_ConfirmEmail_SingleUse(t *testing.T) {
	f := newAuthFixture()

	user, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:       "gina@example.com",
		UserName:    "gina",
		Password:    "pass",
		InviteCode:  "RINK-2024",
		FrontendURL: "https://app.example.com/confirm",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token := f.oneTime.tokens[ports.PurposeEmailConfirm+":"+user.Email]

	if err := f.svc.ConfirmEmail(context.Background(), user.Email, token); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	confirmed, _ := f.users.FindByEmail(context.Background(), user.Email)
	if !confirmed.EmailConfirmed || !confirmed.Active {
		t.Fatalf("account not activated: %+v", confirmed)
	}

	if err := f.svc.ConfirmEmail(context.Background(), user.Email, token); !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		t.Fatalf("second confirm should fail, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "henry", "henry@example.com", "oldpass", true)

	if err := f.svc.ChangePassword(context.Background(), user.ID, "wrongpass", "newpass"); !errors.Is(err, domain.ErrCurrentPasswordIncorrect) {
		t.Fatalf("expected ErrCurrentPasswordIncorrect, got %v", err)
	}

	if err := f.svc.ChangePassword(context.Background(), user.ID, "oldpass", "newpass"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "henry", "newpass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "henry", "oldpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
}

func TestAuthService_ChangePassword_UnknownUser(t *testing.T) {
	f := newAuthFixture()

	if err := f.svc.ChangePassword(context.Background(), "missing", "a", "b"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_ForgotPassword_NeverLeaksExistence(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "iris", "iris@example.com", "pass", true)

	if err := f.svc.ForgotPassword(context.Background(), "iris@example.com", "https://app.example.com/reset"); err != nil {
		t.Fatalf("existing email: %v", err)
	}
	if err := f.svc.ForgotPassword(context.Background(), "nobody@example.com", "https://app.example.com/reset"); err != nil {
		t.Fatalf("unknown email must also succeed: %v", err)
	}

	if len(f.email.sent) != 1 {
		t.Fatalf("reset email must only go to the existing account, sent %d", len(f.email.sent))
	}
	if f.email.sent[0].To != "iris@example.com" || f.email.sent[0].Kind != ports.EmailKindPasswordReset {
		t.Fatalf("unexpected email: %+v", f.email.sent[0])
	}
}

func TestAuthService_ResetPassword_ConsumesTokenOnce(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "judy", "judy@example.com", "oldpass", true)

	if err := f.svc.ForgotPassword(context.Background(), "judy@example.com", "https://app.example.com/reset"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token := f.oneTime.tokens[ports.PurposePasswordReset+":judy@example.com"]

	if err := f.svc.ResetPassword(context.Background(), "judy@example.com", token, "newpass"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "judy", "newpass"); err != nil {
		t.Fatalf("login with reset password: %v", err)
	}

	// Resubmitting the consumed token fails even before nominal expiry.
	if err := f.svc.ResetPassword(context.Background(), "judy@example.com", token, "another"); !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken on reuse, got %v", err)
	}
}

func TestAuthService_ResetPassword_BadToken(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "kate", "kate@example.com", "pass", true)

	if err := f.svc.ResetPassword(context.Background(), "kate@example.com", "bogus", "newpass"); !errors.Is(err, domain.ErrInvalidOrExpiredToken) {
		t.Fatalf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestUserService_SaveProfile(t *testing.T) {
	f := newAuthFixture()
	user := f.seedUser(t, "liam", "liam@example.com", "pass", true)
	svc := NewUserService(f.users, zerolog.Nop())

	saved, err := svc.SaveProfile(context.Background(), user.ID, ports.ProfileInput{
		FirstName:      "Liam",
		LastName:       "Nguyen",
		PayPalEmail:    "liam@pay.example.com",
		VenmoAccount:   "@liam",
		EmergencyName:  "Nora Nguyen",
		EmergencyPhone: "555-0100",
		Active:         true,
		Preferred:      true,
	})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if saved.PayPalEmail != "liam@pay.example.com" || !saved.Preferred {
		t.Fatalf("profile not applied: %+v", saved)
	}
}

func TestUserService_SaveProfile_EmptyID(t *testing.T) {
	f := newAuthFixture()
	svc := NewUserService(f.users, zerolog.Nop())

	if _, err := svc.SaveProfile(context.Background(), "", ports.ProfileInput{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
