// Package common defines shared constants and sentinel errors used across
// client and server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("already exists")
	ErrorValidation   = errors.New("validation error")

	// Login errors.
	ErrEmailNotRegistered = errors.New("email not registered")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrBadCredentials     = errors.New("incorrect password")
	ErrWrongLoginMethod   = errors.New("wrong login method")

	// Bearer token lifecycle errors.
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidTokenType = errors.New("invalid token type")

	// Ephemeral credential lifecycle errors.
	ErrCredentialExpired = errors.New("credential expired")

	// The credential was valid but its subject account no longer exists.
	ErrSubjectMissing = errors.New("subject not found")

	// Upstream collaborator (mail, blob storage) failure.
	ErrUpstreamFailure = errors.New("upstream failure")
)
