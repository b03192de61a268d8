package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func doVerify(h *Handler, token string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email?token="+token, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.VerifyEmail(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestVerifyEmailEndpoint(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &memNotifier{})
	h := NewHandler(svc)

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email: "a@b.com", Password: "supersecret", PrivacyConsent: true,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	rec := doVerify(h, *u.VerificationToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Email verified successfully.") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestVerifyEmailEndpointExpiredToken(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &memNotifier{})
	h := NewHandler(svc)

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email: "a@b.com", Password: "supersecret", PrivacyConsent: true,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	repo.users[u.ID].VerificationTokenExpiresAt = &past

	rec := doVerify(h, *u.VerificationToken)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expired token: status = %d, want 400", rec.Code)
	}
}

func TestVerifyEmailEndpointUnknownToken(t *testing.T) {
	h := NewHandler(newTestService(newMemRepo(), &memNotifier{}))

	rec := doVerify(h, "no-such-token")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown token: status = %d, want 404", rec.Code)
	}
}
