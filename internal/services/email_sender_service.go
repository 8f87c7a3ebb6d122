package services

import (
	"context"
	"log/slog"
)

type EmailSender interface {
	SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error
}

// LogMailer stands in for a real mailer when none is configured: the link
// is written to the log instead.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerificationEmail(_ context.Context, toEmail, verifyURL string) error {
	m.log.Info("verification email not sent, no mailer configured", "to", toEmail, "verify_url", verifyURL)
	return nil
}
