package config

import (
	"encoding/json"
	"os"

	"github.com/isaidso/auth/internal/flagx"
	"github.com/isaidso/auth/internal/timex"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// Interval fields use timex.Duration so both "3m" strings and integer
// nanoseconds parse.
type JsonConfig struct {
	EndpointAddr    string `json:"endpoint_addr"`
	DatabaseDSN     string `json:"database_dsn"`
	FrontendBaseURL string `json:"frontend_base_url"`

	AccessTokenTTL   timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL  timex.Duration `json:"refresh_token_ttl"`
	VerifyEmailTTL   timex.Duration `json:"verify_email_ttl"`
	ResetPasswordTTL timex.Duration `json:"reset_password_ttl"`

	MailDriver   string `json:"mail_driver"`
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     string `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	MailFrom     string `json:"mail_from"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3KeyPrefix    string `json:"s3_key_prefix"`

	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`
	GoogleRedirectURL  string `json:"google_redirect_url"`
}

// parseJson loads configuration from the file named by the -c/-config flags.
// If no flag is set, nothing is loaded. Unset JSON fields keep the values
// already in config.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.EndpointAddr, c.EndpointAddr)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.FrontendBaseURL, c.FrontendBaseURL)
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration != 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.VerifyEmailTTL.Duration != 0 {
		config.VerifyEmailTTL = c.VerifyEmailTTL.Duration
	}
	if c.ResetPasswordTTL.Duration != 0 {
		config.ResetPasswordTTL = c.ResetPasswordTTL.Duration
	}
	overlayString(&config.MailDriver, c.MailDriver)
	overlayString(&config.SMTPHost, c.SMTPHost)
	overlayString(&config.SMTPPort, c.SMTPPort)
	overlayString(&config.SMTPUsername, c.SMTPUsername)
	overlayString(&config.SMTPPassword, c.SMTPPassword)
	overlayString(&config.MailFrom, c.MailFrom)
	overlayString(&config.S3RootUser, c.S3RootUser)
	overlayString(&config.S3RootPassword, c.S3RootPassword)
	overlayString(&config.S3Bucket, c.S3Bucket)
	overlayString(&config.S3Region, c.S3Region)
	overlayString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlayString(&config.S3KeyPrefix, c.S3KeyPrefix)
	overlayString(&config.GoogleClientID, c.GoogleClientID)
	overlayString(&config.GoogleClientSecret, c.GoogleClientSecret)
	overlayString(&config.GoogleRedirectURL, c.GoogleRedirectURL)
}

func overlayString(target *string, value string) {
	if value != "" {
		*target = value
	}
}
