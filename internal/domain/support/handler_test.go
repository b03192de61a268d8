package support

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/smartwound/smartwound/internal/platform/auth"
	"github.com/smartwound/smartwound/internal/platform/notification"
)

func newTestHandler(supportEmail string) (*Handler, *notification.MemorySender) {
	sender := notification.NewMemorySender()
	mailer := notification.NewMailer(sender, zerolog.Nop())
	return NewHandler(mailer, supportEmail, zerolog.Nop()), sender
}

func doRequest(h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/support/email", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	ctx := auth.WithIdentity(req.Context(), uuid.New(), auth.RoleUser)
	ctx = context.WithValue(ctx, auth.EmailKey, "user@example.com")
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestSendEmailRelaysToSupportAddress(t *testing.T) {
	h, sender := newTestHandler("support@smartwound.app")

	rec := doRequest(h.SendEmail, `{"subject":"App crash","message":"The app crashed after upload."}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Support email sent successfully!") {
		t.Errorf("body = %q", rec.Body.String())
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if sent[0].To != "support@smartwound.app" {
		t.Errorf("To = %q", sent[0].To)
	}
	if !strings.Contains(sent[0].Body, "The app crashed after upload.") {
		t.Errorf("body does not carry the message: %q", sent[0].Body)
	}
	if !strings.Contains(sent[0].Body, "user@example.com") {
		t.Errorf("body does not identify the sender: %q", sent[0].Body)
	}
}

func TestSendEmailRequiresSubjectAndMessage(t *testing.T) {
	h, sender := newTestHandler("support@smartwound.app")

	rec := doRequest(h.SendEmail, `{"subject":"","message":"help"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(sender.Sent()) != 0 {
		t.Errorf("no mail should be sent on validation failure")
	}
}

func TestSendEmailFailsWithoutConfiguredAddress(t *testing.T) {
	h, _ := newTestHandler("")

	rec := doRequest(h.SendEmail, `{"subject":"Hi","message":"There"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
