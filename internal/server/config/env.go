package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables, loading a .env file
// first if one exists.
func parseEnv(config *Config) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	setString(&config.EndpointAddr, "ENDPOINT_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.FrontendBaseURL, "FRONTEND_URL")

	setDuration(&config.AccessTokenTTL, "ACCESS_TOKEN_TTL")
	setDuration(&config.RefreshTokenTTL, "REFRESH_TOKEN_TTL")
	setDuration(&config.VerifyEmailTTL, "VERIFY_EMAIL_TTL")
	setDuration(&config.ResetPasswordTTL, "RESET_PASSWORD_TTL")

	setString(&config.MailDriver, "MAIL_DRIVER")
	setString(&config.SMTPHost, "SMTP_HOST")
	setString(&config.SMTPPort, "SMTP_PORT")
	setString(&config.SMTPUsername, "SMTP_USERNAME")
	setString(&config.SMTPPassword, "SMTP_PASSWORD")
	setString(&config.MailFrom, "MAIL_FROM")

	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.S3KeyPrefix, "S3_KEY_PREFIX")

	setString(&config.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&config.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&config.GoogleRedirectURL, "GOOGLE_REDIRECT_URL")
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setDuration(target *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*target = d
		}
	}
}
