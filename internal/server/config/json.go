package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mysociety/internal/flagx"
	"github.com/dmitrijs2005/mysociety/internal/server/users"
	"github.com/dmitrijs2005/mysociety/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration,
// so both "1s" and integer nanoseconds are accepted. Only keys present in
// the file override the current values.
type JsonConfig struct {
	HTTPAddr        *string         `json:"http_addr"`
	ExcelFilePath   *string         `json:"excel_file_path"`
	BackupDir       *string         `json:"backup_dir"`
	LogLevel        *string         `json:"log_level"`
	AllowedOrigins  []string        `json:"allowed_origins"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`

	RateLimitWindow      *timex.Duration `json:"rate_limit_window"`
	RateLimitMaxRequests *int            `json:"rate_limit_max_requests"`

	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	Users                       []users.Account `json:"users"`

	NotifyProvider     *string         `json:"notify_provider"`
	NotifyRetryBase    *timex.Duration `json:"notify_retry_base"`
	NotifyMaxRetries   *int            `json:"notify_max_retries"`
	TwilioAccountSID   *string         `json:"twilio_account_sid"`
	TwilioAuthToken    *string         `json:"twilio_auth_token"`
	TwilioWhatsAppFrom *string         `json:"twilio_whatsapp_from"`
	TwilioWhatsAppTo   *string         `json:"twilio_whatsapp_to"`
	TwilioBaseURL      *string         `json:"twilio_base_url"`
	WhatsAppGroupID    *string         `json:"whatsapp_group_id"`

	DatabaseDSN *string `json:"database_dsn"`

	S3RootUser     *string `json:"s3_root_user"`
	S3RootPassword *string `json:"s3_root_password"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag. Without the flag nothing is loaded. An unreadable
// or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
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

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.ExcelFilePath, c.ExcelFilePath)
	setString(&config.BackupDir, c.BackupDir)
	setString(&config.LogLevel, c.LogLevel)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.RateLimitWindow != nil {
		config.RateLimitWindow = c.RateLimitWindow.Duration
	}
	if c.RateLimitMaxRequests != nil {
		config.RateLimitMaxRequests = *c.RateLimitMaxRequests
	}

	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.Users != nil {
		config.Users = c.Users
	}

	setString(&config.NotifyProvider, c.NotifyProvider)
	if c.NotifyRetryBase != nil {
		config.NotifyRetryBase = c.NotifyRetryBase.Duration
	}
	if c.NotifyMaxRetries != nil {
		config.NotifyMaxRetries = *c.NotifyMaxRetries
	}
	setString(&config.TwilioAccountSID, c.TwilioAccountSID)
	setString(&config.TwilioAuthToken, c.TwilioAuthToken)
	setString(&config.TwilioWhatsAppFrom, c.TwilioWhatsAppFrom)
	setString(&config.TwilioWhatsAppTo, c.TwilioWhatsAppTo)
	setString(&config.TwilioBaseURL, c.TwilioBaseURL)
	setString(&config.WhatsAppGroupID, c.WhatsAppGroupID)

	setString(&config.DatabaseDSN, c.DatabaseDSN)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
