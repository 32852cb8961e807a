package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rinkside/pickup-api/internal/core/domain"
)

type stubBlacklist struct {
	entries map[string]time.Duration
}

func newStubBlacklist() *stubBlacklist {
	return &stubBlacklist{entries: make(map[string]time.Duration)}
}

func (b *stubBlacklist) Insert(_ context.Context, token string, ttl time.Duration) error {
	if _, ok := b.entries[token]; ok {
		return domain.ErrAlreadyInvalidated
	}
	b.entries[token] = ttl
	return nil
}

func (b *stubBlacklist) Contains(_ context.Context, token string) (bool, error) {
	_, ok := b.entries[token]
	return ok, nil
}

func testUser() *domain.User {
	return &domain.User{
		ID:       "user-1",
		UserName: "alice",
		Roles:    []string{domain.RoleUser, domain.RoleAdmin},
		Active:   true,
	}
}

func TestTokenService_IssueThenVerify(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, newStubBlacklist())

	token, expiresAt, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if until := time.Until(expiresAt); until <= 0 || until > time.Hour {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected subject user-1, got %s", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Fatalf("expected username alice, got %s", claims.Username)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != domain.RoleUser || claims.Roles[1] != domain.RoleAdmin {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}
	if claims.Role() != domain.RoleAdmin {
		t.Fatalf("expected collapsed role Admin, got %s", claims.Role())
	}
}

func TestTokenService_Verify_NoToken(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, newStubBlacklist())

	if _, err := svc.Verify(context.Background(), ""); !errors.Is(err, domain.ErrNoTokenFound) {
		t.Fatalf("expected ErrNoTokenFound, got %v", err)
	}
}

func TestTokenService_Verify_Malformed(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, newStubBlacklist())

	for _, token := range []string{"not-a-token", "a.b.c"} {
		if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", token, err)
		}
	}
}

func TestTokenService_Verify_BadSignature(t *testing.T) {
	other := NewTokenService("other-secret", time.Hour, newStubBlacklist())
	token, _, err := other.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc := NewTokenService("secret", time.Hour, newStubBlacklist())
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestTokenService_Verify_Expired(t *testing.T) {
	token := signExpiredToken(t, "secret")

	svc := NewTokenService("secret", time.Hour, newStubBlacklist())
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_Verify_Blacklisted(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, newStubBlacklist())

	token, _, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Invalidate(context.Background(), token); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenBlacklisted) {
		t.Fatalf("expected ErrTokenBlacklisted, got %v", err)
	}
}

func TestTokenService_Invalidate_Twice(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, newStubBlacklist())

	token, _, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.Invalidate(context.Background(), token); err != nil {
		t.Fatalf("first invalidate: %v", err)
	}
	if err := svc.Invalidate(context.Background(), token); !errors.Is(err, domain.ErrAlreadyInvalidated) {
		t.Fatalf("expected ErrAlreadyInvalidated, got %v", err)
	}
}

func TestTokenService_Invalidate_NoToken(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, newStubBlacklist())

	if err := svc.Invalidate(context.Background(), ""); !errors.Is(err, domain.ErrNoTokenFound) {
		t.Fatalf("expected ErrNoTokenFound, got %v", err)
	}
}

func TestTokenService_Invalidate_EntryNeverOutlivesToken(t *testing.T) {
	bl := newStubBlacklist()
	svc := NewTokenService("secret", time.Hour, bl)

	token, expiresAt, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Invalidate(context.Background(), token); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	ttl, ok := bl.entries[token]
	if !ok {
		t.Fatalf("token not recorded in blacklist")
	}
	if ttl <= 0 || ttl > time.Until(expiresAt)+time.Second {
		t.Fatalf("blacklist entry ttl %v exceeds token lifetime", ttl)
	}
}

func TestTokenService_Invalidate_ExpiredToken(t *testing.T) {
	svc := NewTokenService("secret", time.Hour, newStubBlacklist())

	if err := svc.Invalidate(context.Background(), signExpiredToken(t, "secret")); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func signExpiredToken(t *testing.T, secret string) string {
	t.Helper()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Username: "alice",
		Roles:    []string{domain.RoleUser},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
