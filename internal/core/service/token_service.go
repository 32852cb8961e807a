package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rinkside/pickup-api/internal/core/domain"
	"github.com/rinkside/pickup-api/internal/core/ports"
)

// defaultTokenTTL matches the product's month-long sessions.
const defaultTokenTTL = 730 * time.Hour

// sessionClaims is the wire shape of a session token payload.
type sessionClaims struct {
	jwt.RegisteredClaims
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// TokenService mints and verifies HS256 session tokens and drives the
// blacklist on logout. The signing secret is injected once at startup;
// rotating it invalidates all outstanding tokens, which is the
// intended rotation story for a symmetric key.
type TokenService struct {
	secret    []byte
	ttl       time.Duration
	blacklist ports.TokenBlacklistStore
}

func NewTokenService(secret string, ttl time.Duration, blacklist ports.TokenBlacklistStore) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, blacklist: blacklist}
}

// Issue mints a signed token embedding the user's id, username, and
// role set. Expiry is issue time plus the fixed TTL, in UTC.
func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: user.UserName,
		Roles:    user.Roles,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify validates signature/form, then expiry, then blacklist status,
// failing fast at the first check that does not pass.
func (s *TokenService) Verify(ctx context.Context, token string) (*ports.Claims, error) {
	if token == "" {
		return nil, domain.ErrNoTokenFound
	}

	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	listed, err := s.blacklist.Contains(ctx, token)
	if err != nil {
		return nil, err
	}
	if listed {
		return nil, domain.ErrTokenBlacklisted
	}

	return &ports.Claims{
		UserID:    claims.Subject,
		Username:  claims.Username,
		Roles:     claims.Roles,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Invalidate blacklists the token for exactly its remaining lifetime,
// so the entry never outlives the token's own expiry. Repeating the
// call for the same token fails with domain.ErrAlreadyInvalidated.
func (s *TokenService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrNoTokenFound
	}

	claims, err := s.parse(token)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return domain.ErrTokenExpired
	}

	return s.blacklist.Insert(ctx, token, ttl)
}

// parse maps every jwt library failure onto the subsystem's typed
// errors; no malformed input escapes as a raw parse error. Signature
// and form problems are reported before expiry, matching the
// verification order callers rely on.
func (s *TokenService) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})

	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, domain.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrTokenExpired
	case err != nil:
		return nil, domain.ErrTokenMalformed
	case !parsed.Valid || claims.ExpiresAt == nil || claims.IssuedAt == nil:
		return nil, domain.ErrTokenMalformed
	}

	return claims, nil
}
