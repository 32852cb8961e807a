package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rinkside/pickup-api/internal/core/domain"
	"github.com/rinkside/pickup-api/internal/core/ports"
)

type stubTokenService struct {
	claims    *ports.Claims
	verifyErr error
}

func (s *stubTokenService) Issue(_ *domain.User) (string, time.Time, error) {
	return "", time.Time{}, nil
}

func (s *stubTokenService) Verify(_ context.Context, _ string) (*ports.Claims, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return s.claims, nil
}

func (s *stubTokenService) Invalidate(_ context.Context, _ string) error {
	return nil
}

func newAuthContext(authorization string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", ""},
		{"bearer token", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer tok", "tok"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"scheme only", "Bearer", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newAuthContext(tc.header)
			if got := BearerToken(c); got != tc.want {
				t.Errorf("BearerToken() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAuth_ValidTokenInjectsClaims(t *testing.T) {
	tokens := &stubTokenService{claims: &ports.Claims{
		UserID:   "user-1",
		Username: "gretzky",
		Roles:    []string{domain.RoleUser},
	}}

	c, _ := newAuthContext("Bearer good-token")

	var gotUserID string
	var gotRoles []string
	next := func(c echo.Context) error {
		gotUserID, _ = c.Get(CtxUserID).(string)
		gotRoles, _ = c.Get(CtxRoles).([]string)
		return c.NoContent(http.StatusOK)
	}

	if err := Auth(tokens)(next)(c); err != nil {
		t.Fatalf("Auth() error = %v", err)
	}
	if gotUserID != "user-1" {
		t.Errorf("context user id = %q, want %q", gotUserID, "user-1")
	}
	if len(gotRoles) != 1 || gotRoles[0] != domain.RoleUser {
		t.Errorf("context roles = %v, want [%s]", gotRoles, domain.RoleUser)
	}
	if tok, _ := c.Get(CtxToken).(string); tok != "good-token" {
		t.Errorf("context token = %q, want %q", tok, "good-token")
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	tokens := &stubTokenService{}
	c, _ := newAuthContext("")

	err := Auth(tokens)(func(echo.Context) error {
		t.Fatal("next handler should not run")
		return nil
	})(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("Auth() error = %v, want 401 HTTPError", err)
	}
}

func TestAuth_RejectedToken(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"malformed", domain.ErrTokenMalformed},
		{"expired", domain.ErrTokenExpired},
		{"blacklisted", domain.ErrTokenBlacklisted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := &stubTokenService{verifyErr: tc.err}
			c, _ := newAuthContext("Bearer bad-token")

			err := Auth(tokens)(func(echo.Context) error {
				t.Fatal("next handler should not run")
				return nil
			})(c)

			var httpErr *echo.HTTPError
			if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
				t.Fatalf("Auth() error = %v, want 401 HTTPError", err)
			}
		})
	}
}

func TestRequireRole_AdminAllowed(t *testing.T) {
	c, _ := newAuthContext("")
	c.Set(CtxRoles, []string{domain.RoleAdmin, domain.RoleUser})

	called := false
	err := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)

	if err != nil {
		t.Fatalf("RequireRole() error = %v", err)
	}
	if !called {
		t.Error("next handler was not invoked for an admin caller")
	}
}

func TestRequireRole_UserForbidden(t *testing.T) {
	c, rec := newAuthContext("")
	c.Set(CtxRoles, []string{domain.RoleUser})

	err := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatal("next handler should not run")
		return nil
	})(c)

	if err != nil {
		t.Fatalf("RequireRole() error = %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireRole_MissingClaims(t *testing.T) {
	c, rec := newAuthContext("")

	err := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatal("next handler should not run")
		return nil
	})(c)

	if err != nil {
		t.Fatalf("RequireRole() error = %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
