package notification

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestRender_SubstitutesPlaceholders(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render("verify-email", map[string]string{
		"name":       "Ana",
		"verify_url": "https://example.com/v?token=abc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "Verify your Smart Wound account" {
		t.Errorf("unexpected subject: %s", subject)
	}
	if !strings.Contains(body, "Hi Ana,") {
		t.Errorf("expected greeting in body, got: %s", body)
	}
	if !strings.Contains(body, "https://example.com/v?token=abc") {
		t.Error("expected verify URL in body")
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("does-not-exist", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestMailer_Send(t *testing.T) {
	sender := NewMemorySender()
	m := NewMailer(sender, testLogger())

	err := m.Send(context.Background(), "ana@example.com", "care-reminder", map[string]string{
		"name":    "Ana",
		"message": "You haven't updated your wound log for 'burn' in a few days. Time for a check-in!",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].To != "ana@example.com" {
		t.Errorf("unexpected recipient: %s", sent[0].To)
	}
	if !strings.Contains(sent[0].Body, "check-in") {
		t.Errorf("expected reminder text in body: %s", sent[0].Body)
	}
}

func TestMailer_SendRetriesThenFails(t *testing.T) {
	sender := NewMemorySender()
	sender.Fail = true
	m := NewMailer(sender, testLogger())

	err := m.Send(context.Background(), "ana@example.com", "support-relay", map[string]string{
		"subject": "help",
		"from":    "ana@example.com",
		"message": "it hurts",
	})
	if err == nil {
		t.Error("expected error when all attempts fail")
	}
}

func TestNewSMTPSender_RequiresHostAndFrom(t *testing.T) {
	if _, err := NewSMTPSender(SMTPConfig{}); err == nil {
		t.Error("expected error for empty config")
	}
	if _, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "no-reply@example.com"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
