// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables and
// command-line flags.
package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/mysociety/internal/server/users"
)

// Config holds runtime settings for the MySociety server.
//
// Fields:
//   - HTTPAddr: bind address of the HTTP API.
//   - RateLimitWindow / RateLimitMaxRequests: per client IP budget for /api/v1.
//     A zero in either disables limiting.
//   - ExcelFilePath / BackupDir: the workbook and where its backups go.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default in prod.
//   - AccessTokenValidityDuration: token lifetime.
//   - NotifyProvider: "mock" or "twilio"; Twilio*/WhatsAppGroupID configure the latter.
//   - DatabaseDSN: PostgreSQL DSN (pgx) of the audit journal. Empty disables it.
//   - S3*: backup mirror. An empty S3Bucket disables it.
//   - Users: the accounts allowed to log in. Empty means the dev accounts.
type Config struct {
	HTTPAddr        string
	ExcelFilePath   string
	BackupDir       string
	LogLevel        string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	RateLimitWindow      time.Duration
	RateLimitMaxRequests int

	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	Users                       []users.Account

	NotifyProvider     string
	NotifyRetryBase    time.Duration
	NotifyMaxRetries   int
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	TwilioWhatsAppTo   string
	TwilioBaseURL      string
	WhatsAppGroupID    string

	DatabaseDSN string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key default is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":3001"
	c.ExcelFilePath = "./data/mysociety_data.xlsx"
	c.BackupDir = "./backups"
	c.LogLevel = "info"
	c.AllowedOrigins = []string{"*"}
	c.ShutdownTimeout = 15 * time.Second
	c.RateLimitWindow = 15 * time.Minute
	c.RateLimitMaxRequests = 100
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.NotifyProvider = "mock"
	c.NotifyRetryBase = time.Second
	c.NotifyMaxRetries = 3
	c.S3Region = "us-east-1"
}

// NotifyRecipient is where announcements go: the WhatsApp group when one
// is configured, the single recipient otherwise.
func (c *Config) NotifyRecipient() string {
	if c.WhatsAppGroupID != "" {
		return c.WhatsAppGroupID
	}
	return c.TwilioWhatsAppTo
}

// AccountsOrDev returns the configured users, or the dev accounts when
// none are configured.
func (c *Config) AccountsOrDev() []users.Account {
	if len(c.Users) == 0 {
		return users.DevAccounts()
	}
	return c.Users
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg, os.LookupEnv)
	parseFlags(cfg)
	return cfg
}
