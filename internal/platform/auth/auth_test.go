package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(ttl time.Duration) *Issuer {
	return NewIssuer(testSecret, "pdalabel-test", ttl)
}

func TestSignAndParse(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	token, err := issuer.Sign("user-1", "operator@pharmacy.test", RoleOperator)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %s", claims.Subject)
	}
	if claims.Email != "operator@pharmacy.test" {
		t.Errorf("unexpected email %s", claims.Email)
	}
	if claims.Role != RoleOperator {
		t.Errorf("unexpected role %s", claims.Role)
	}
}

func TestParse_Expired(t *testing.T) {
	issuer := newTestIssuer(-time.Minute)
	token, err := issuer.Sign("user-1", "x@y.test", RoleOperator)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := issuer.Parse(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestParse_WrongSecret(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	token, err := issuer.Sign("user-1", "x@y.test", RoleOperator)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	other := NewIssuer("another-secret-another-secret-32", "pdalabel-test", time.Hour)
	if _, err := other.Parse(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func runMiddleware(t *testing.T, issuer *Issuer, header string) (error, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Middleware(issuer, nil)(func(c echo.Context) error { return nil })
	return h(c), c
}

func TestMiddleware_MissingHeader(t *testing.T) {
	err, _ := runMiddleware(t, newTestIssuer(time.Hour), "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	token, _ := issuer.Sign("user-7", "admin@pharmacy.test", RoleAdmin)

	err, c := runMiddleware(t, issuer, "Bearer "+token)
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}
	ctx := c.Request().Context()
	if UserIDFromContext(ctx) != "user-7" {
		t.Errorf("expected user id on context, got %q", UserIDFromContext(ctx))
	}
	if RoleFromContext(ctx) != RoleAdmin {
		t.Errorf("expected admin role on context, got %q", RoleFromContext(ctx))
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		required []string
		wantCode int
	}{
		{"admin passes any check", RoleAdmin, []string{RoleOperator}, 0},
		{"matching role passes", RoleOperator, []string{RoleOperator}, 0},
		{"mismatched role rejected", RoleOperator, []string{RoleAdmin}, http.StatusForbidden},
		{"empty role unauthorized", "", []string{RoleOperator}, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.role != "" {
				ctx := context.WithValue(req.Context(), UserRoleKey, tc.role)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := RequireRole(tc.required...)(func(c echo.Context) error { return nil })
			err := h(c)

			if tc.wantCode == 0 {
				if err != nil {
					t.Errorf("expected pass, got %v", err)
				}
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != tc.wantCode {
				t.Errorf("expected %d, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword("correct horse battery staple", hash) {
		t.Error("expected matching password to verify")
	}
	if VerifyPassword("wrong password", hash) {
		t.Error("expected mismatched password to fail")
	}
}
