package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer("test-secret", time.Hour)
}

func TestIssueAndVerify(t *testing.T) {
	issuer := newTestIssuer()
	userID := uuid.New()

	token, err := issuer.Issue(userID, RoleDoctor, "doc@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.Role != "doctor" {
		t.Errorf("expected role doctor, got %s", claims.Role)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := newTestIssuer().Issue(uuid.New(), RoleUser, "u@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := NewTokenIssuer("different-secret", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Error("expected verification to fail with wrong secret")
	}
}

func TestVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)
	token, err := issuer.Issue(uuid.New(), RoleUser, "u@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected verification to fail for expired token")
	}
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, RoleFromContext(c.Request().Context()).String())
	}, mw)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_MissingHeader(t *testing.T) {
	rec := doRequest(t, Middleware(newTestIssuer()), "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_BadFormat(t *testing.T) {
	rec := doRequest(t, Middleware(newTestIssuer()), "Token abc")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	issuer := newTestIssuer()
	token, _ := issuer.Issue(uuid.New(), RoleDoctor, "doc@example.com")

	rec := doRequest(t, Middleware(issuer), "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "doctor" {
		t.Errorf("expected role doctor on context, got %s", rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/queue", handler, fakeIdentity(RoleUser), RequireRole(RoleDoctor))
	e.GET("/queue-admin", handler, fakeIdentity(RoleAdmin), RequireRole(RoleDoctor))
	e.GET("/queue-doc", handler, fakeIdentity(RoleDoctor), RequireRole(RoleDoctor))

	cases := []struct {
		path string
		want int
	}{
		{"/queue", http.StatusForbidden},
		{"/queue-admin", http.StatusOK},
		{"/queue-doc", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.path, tc.want, rec.Code)
		}
	}
}

// fakeIdentity injects a role without going through JWT parsing.
func fakeIdentity(role Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := WithIdentity(c.Request().Context(), uuid.New(), role)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
