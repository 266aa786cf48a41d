// Package mail defines the outbound notification contract and its
// implementations. Delivery is fire-and-forget from the identity core's point
// of view: a failed send surfaces as an error, the core never retries.
package mail

import "context"

// Notifier sends templated messages to an email address.
type Notifier interface {
	// SendVerificationEmail delivers the verify-your-address message with a
	// link embedding the one-time credential.
	SendVerificationEmail(ctx context.Context, to, name, link string) error

	// SendPasswordResetEmail delivers the reset-password message with a link
	// embedding the one-time credential and the subject email.
	SendPasswordResetEmail(ctx context.Context, to, link string) error
}
