package mailer

import (
	"context"
	"log/slog"
)

// Log writes the verification token to the log instead of sending an email.
// Meant for local development where no SMTP relay is configured.
type Log struct{}

// NewLog creates a Log mailer.
func NewLog() *Log { return &Log{} }

// SendVerificationEmail logs the token.
func (m *Log) SendVerificationEmail(ctx context.Context, email, token string) error {
	slog.Info("verification email (log mailer)", "email", email, "token", token)
	return nil
}
