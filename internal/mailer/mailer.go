package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"blogapi/pkg/logger"
	"blogapi/pkg/retry"
)

// Mailer delivers transactional mail. Delivery is fire-and-forget from
// the caller's point of view; implementations retry internally.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config holds sender identity and the frontend base URL used in
// action links.
type Config struct {
	FromAddress string
	FrontendURL string
}

// VerificationURL builds the email verification link for a token
func (c *Config) VerificationURL(token string) string {
	return fmt.Sprintf("%s/auth/email-verification/%s", c.FrontendURL, token)
}

// PasswordResetURL builds the password reset link for a token
func (c *Config) PasswordResetURL(token string) string {
	return fmt.Sprintf("%s/auth/password/%s", c.FrontendURL, token)
}

// LogMailer writes mail to the structured log instead of a delivery
// provider. It stands in wherever no SMTP relay is wired up, including
// development and tests.
type LogMailer struct {
	config  *Config
	retrier *retry.Retrier
}

// NewLogMailer creates a LogMailer
func NewLogMailer(config *Config) *LogMailer {
	return &LogMailer{
		config:  config,
		retrier: retry.New(retry.DefaultConfig()),
	}
}

// Send logs the mail envelope
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.retrier.Do(ctx, func(ctx context.Context) error {
		logger.Get().Info("mail sent",
			zap.String("from", m.config.FromAddress),
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Int("body_bytes", len(body)))
		return nil
	})
}

// Ensure LogMailer implements Mailer
var _ Mailer = (*LogMailer)(nil)
