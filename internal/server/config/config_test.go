package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaidso/auth/internal/common"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddr)
	assert.Equal(t, 3*time.Minute, c.AccessTokenTTL)
	assert.Equal(t, 20*time.Minute, c.RefreshTokenTTL)
	assert.Equal(t, 24*time.Hour, c.VerifyEmailTTL)
	assert.Equal(t, 60*time.Minute, c.ResetPasswordTTL)
	assert.Equal(t, 64, c.SecretLength)
	assert.Equal(t, "log", c.MailDriver)

	// The lifetimes are defined once, in the shared constants.
	assert.Equal(t, common.AccessTokenTTL, c.AccessTokenTTL)
	assert.Equal(t, common.RefreshTokenTTL, c.RefreshTokenTTL)
	assert.Equal(t, common.VerifyEmailTTL, c.VerifyEmailTTL)
	assert.Equal(t, common.ResetPasswordTTL, c.ResetPasswordTTL)
	assert.Equal(t, common.SecretLength, c.SecretLength)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, 3*time.Minute, cfg.AccessTokenTTL)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("ENDPOINT_ADDR", "127.0.0.1:9090")
	t.Setenv("DATABASE_DSN", "postgres://env/dsn")
	t.Setenv("FRONTEND_URL", "https://app.example")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "127.0.0.1:9090", c.EndpointAddr)
	assert.Equal(t, "postgres://env/dsn", c.DatabaseDSN)
	assert.Equal(t, "https://app.example", c.FrontendBaseURL)
	assert.Equal(t, 5*time.Minute, c.AccessTokenTTL)
}
