// Package notification delivers transactional email: account verification,
// care reminders and support relays. Senders are pluggable so tests and
// development run without an SMTP server.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

// Template defines a reusable notification template. Placeholders use
// {{name}} syntax and are replaced from the data map at render time.
type Template struct {
	ID      string
	Subject string
	Body    string
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "verify-email",
			Subject: "Verify your Smart Wound account",
			Body:    "Hi {{name}},\n\nPlease verify your email address by opening the link below:\n\n{{verify_url}}\n\nThe link expires in 24 hours. If you did not create an account, ignore this message.",
		},
		{
			ID:      "care-reminder",
			Subject: "Time for a wound check-in",
			Body:    "Hi {{name}},\n\n{{message}}\n\nOpen the app to add a photo and a note to your healing log.",
		},
		{
			ID:      "support-relay",
			Subject: "[support] {{subject}}",
			Body:    "From: {{from}}\n\n{{message}}",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t *Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = t
}

// Render resolves the template and substitutes {{placeholders}} from data.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// ---------------------------------------------------------------------------
// Mailer
// ---------------------------------------------------------------------------

// Mailer renders templates and hands them to a sender, retrying transient
// failures a bounded number of times.
type Mailer struct {
	sender    EmailSender
	templates *TemplateEngine
	log       zerolog.Logger
	retries   int
}

func NewMailer(sender EmailSender, log zerolog.Logger) *Mailer {
	return &Mailer{
		sender:    sender,
		templates: NewTemplateEngine(),
		log:       log,
		retries:   3,
	}
}

// Send renders templateID with data and delivers it to the recipient.
func (m *Mailer) Send(ctx context.Context, to, templateID string, data map[string]string) error {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= m.retries; attempt++ {
		lastErr = m.sender.SendEmail(ctx, to, subject, body)
		if lastErr == nil {
			m.log.Info().Str("to", to).Str("template", templateID).Msg("email sent")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.log.Warn().Err(lastErr).Str("to", to).Int("attempt", attempt).Msg("email send failed")
	}
	return fmt.Errorf("send email to %s: %w", to, lastErr)
}

// ---------------------------------------------------------------------------
// Senders
// ---------------------------------------------------------------------------

// SMTPConfig configures the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("smtp sender requires host and from address")
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTPSender{cfg: cfg}, nil
}

func (s *SMTPSender) SendEmail(_ context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := s.cfg.Host + ":" + s.cfg.Port
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SentMessage records one delivery made through the MemorySender.
type SentMessage struct {
	To      string
	Subject string
	Body    string
	SentAt  time.Time
}

// MemorySender collects messages in memory. Used in tests and as the default
// sender in development when no SMTP host is configured.
type MemorySender struct {
	mu       sync.Mutex
	Messages []SentMessage
	// Fail makes every SendEmail call return an error; tests use it to
	// exercise retry and error paths.
	Fail bool
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) SendEmail(_ context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return errors.New("memory sender configured to fail")
	}
	s.Messages = append(s.Messages, SentMessage{To: to, Subject: subject, Body: body, SentAt: time.Now()})
	return nil
}

// Sent returns a copy of the delivered messages.
func (s *MemorySender) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentMessage, len(s.Messages))
	copy(out, s.Messages)
	return out
}
