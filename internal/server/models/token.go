package models

import (
	"strings"
	"time"
)

// Token is a stored bearer token. Only the SHA-256 digest of the secret is
// kept; the plaintext exists solely in the issuance response.
type Token struct {
	ID           string
	UserID       string
	Kind         string
	Capabilities []string
	TokenHash    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Can reports whether the token carries the given capability.
func (t *Token) Can(capability string) bool {
	for _, c := range t.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// JoinCapabilities flattens a capability set for storage in a text column.
func JoinCapabilities(caps []string) string {
	return strings.Join(caps, ",")
}

// SplitCapabilities parses a stored capability column back into a set.
func SplitCapabilities(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
