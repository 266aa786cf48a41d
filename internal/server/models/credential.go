package models

import "time"

// EphemeralCredential is a single-use, expiring secret delivered out-of-band.
// Subject is a user id for verify-email and an email address for
// reset-password. At most one live credential exists per (subject, purpose).
type EphemeralCredential struct {
	ID        string
	Subject   string
	Purpose   string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
