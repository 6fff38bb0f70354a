package config

import (
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays the environment variables the deployment scripts set.
// Malformed numeric values are ignored.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if port, ok := lookup("PORT"); ok && port != "" {
		if strings.Contains(port, ":") {
			config.HTTPAddr = port
		} else {
			config.HTTPAddr = ":" + port
		}
	}
	str("EXCEL_FILE_PATH", &config.ExcelFilePath)
	str("BACKUP_DIR", &config.BackupDir)
	str("LOG_LEVEL", &config.LogLevel)
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		config.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("RATE_LIMIT_WINDOW_MS"); ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms >= 0 {
			config.RateLimitWindow = time.Duration(ms) * time.Millisecond
		}
	}
	if v, ok := lookup("RATE_LIMIT_MAX_REQUESTS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			config.RateLimitMaxRequests = n
		}
	}

	str("JWT_SECRET", &config.SecretKey)
	if v, ok := lookup("JWT_EXPIRES_IN"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}

	str("WHATSAPP_PROVIDER", &config.NotifyProvider)
	if v, ok := lookup("NOTIFY_RETRY_BASE"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.NotifyRetryBase = d
		}
	}
	if v, ok := lookup("NOTIFY_MAX_RETRIES"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.NotifyMaxRetries = n
		}
	}
	str("TWILIO_ACCOUNT_SID", &config.TwilioAccountSID)
	str("TWILIO_AUTH_TOKEN", &config.TwilioAuthToken)
	str("TWILIO_WHATSAPP_FROM", &config.TwilioWhatsAppFrom)
	str("TWILIO_WHATSAPP_TO", &config.TwilioWhatsAppTo)
	str("WHATSAPP_GROUP_ID", &config.WhatsAppGroupID)

	str("DATABASE_DSN", &config.DatabaseDSN)

	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
