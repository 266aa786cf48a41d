// Package cryptox provides the cryptographic primitives used by the identity
// core: random secret generation, SHA-256 hashing of opaque secrets so that
// only a digest is kept at rest, and bcrypt password hashing.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// MakeRandString generates a URL-safe random string of exactly length
// characters. It draws more random bytes than needed and trims the base64
// expansion to the requested size.
func MakeRandString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return s[:length], nil
}

// HashSecret returns the hex-encoded SHA-256 digest of an opaque secret.
// The digest is what repositories store; the plaintext is returned to the
// caller once at issuance and never again retrievable.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// VerifySecret compares a plaintext secret against a stored digest in
// constant time.
func VerifySecret(secret, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashSecret(secret)), []byte(storedHash)) == 1
}

// HashPassword hashes a password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether candidate matches the stored bcrypt hash.
func CheckPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
