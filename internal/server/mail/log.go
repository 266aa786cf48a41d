package mail

import (
	"context"

	"github.com/isaidso/auth/internal/logging"
)

// LogMailer writes outbound messages to the log instead of delivering them.
// Used in development and in tests.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mail")}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, to, name, link string) error {
	m.logger.Info(ctx, "verification email", "to", to, "name", name, "link", link)
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(ctx context.Context, to, link string) error {
	m.logger.Info(ctx, "password reset email", "to", to, "link", link)
	return nil
}
