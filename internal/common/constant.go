package common

import "time"

// Token kinds stored in the tokens table.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Capabilities attached to issued tokens. An access token may only call the
// API; a refresh token may only mint a new pair.
const (
	CapabilityAccessAPI        = "access-api"
	CapabilityIssueAccessToken = "issue-access-token"
)

// Ephemeral credential purposes.
const (
	PurposeVerifyEmail   = "verify-email"
	PurposeResetPassword = "reset-password"
)

// Token lifetimes. The refresh token lives for 20 minutes: that is the value
// the issuing code has always used, even though an old client comment said 5.
const (
	AccessTokenTTL   = 3 * time.Minute
	RefreshTokenTTL  = 20 * time.Minute
	VerifyEmailTTL   = 24 * time.Hour
	ResetPasswordTTL = 60 * time.Minute
)

// SecretLength is the character length of generated bearer-token and
// ephemeral-credential secrets.
const SecretLength = 64

// LoginMethodPassword and LoginMethodFederated are the two ways an account
// can authenticate.
const (
	LoginMethodPassword  = "password"
	LoginMethodFederated = "federated"
)
