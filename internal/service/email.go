package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/stoicjournal/stoic/internal/markdown"
)

// Mailer sends the account emails.
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, email, token, name string, expiry time.Duration) error
	SendWelcomeEmail(ctx context.Context, email, name string) error
}

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
	markdown  *markdown.Parser
}

// NewEmailService logs emails instead of sending them in development.
func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
		markdown:  markdown.NewParser(),
	}
}

func (s *EmailService) SendPasswordResetEmail(ctx context.Context, email, token, name string, expiry time.Duration) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)
	subject, body := passwordResetEmailTemplate(name, resetURL, s.appName, expiry.String())
	return s.send(ctx, "password_reset", email, subject, body, "url", resetURL)
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	journalURL := fmt.Sprintf("%s/entries/today", s.appURL)
	subject, body := welcomeEmailTemplate(name, journalURL, s.appName)
	return s.send(ctx, "welcome", email, subject, body)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body string, devAttrs ...any) error {
	if s.isDev {
		attrs := append([]any{"type", kind, "to", to, "subject", subject}, devAttrs...)
		slog.Info("email sent (dev mode)", attrs...)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	html, err := s.markdown.ParseString(body)
	if err != nil {
		slog.Warn("failed to render email html, sending text only", "error", err, "type", kind)
		html = ""
	}

	_, err = s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	slog.Info("email sent", "type", kind, "to", to)
	return nil
}
