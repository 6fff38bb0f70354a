package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mysociety/internal/server/models"
	"github.com/dmitrijs2005/mysociety/internal/server/users"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":3001", c.HTTPAddr)
	assert.Equal(t, "./data/mysociety_data.xlsx", c.ExcelFilePath)
	assert.Equal(t, "./backups", c.BackupDir)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, c.RateLimitWindow)
	assert.Equal(t, 100, c.RateLimitMaxRequests)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, "mock", c.NotifyProvider)
	assert.Equal(t, time.Second, c.NotifyRetryBase)
	assert.Equal(t, 3, c.NotifyMaxRetries)
	assert.Empty(t, c.DatabaseDSN)
	assert.Empty(t, c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
}

func TestLoadConfig_LayersEnvOverDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-l", "debug"}

	t.Setenv("EXCEL_FILE_PATH", "/srv/ledger.xlsx")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("LOG_LEVEL", "warn")

	c := LoadConfig()
	require.NotNil(t, c)

	assert.Equal(t, "/srv/ledger.xlsx", c.ExcelFilePath)
	assert.Equal(t, "from-env", c.SecretKey)
	assert.Equal(t, "debug", c.LogLevel, "flags win over the environment")
}

func TestNotifyRecipient(t *testing.T) {
	c := Config{TwilioWhatsAppTo: "+911"}
	assert.Equal(t, "+911", c.NotifyRecipient())

	c.WhatsAppGroupID = "group-1"
	assert.Equal(t, "group-1", c.NotifyRecipient())
}

func TestAccountsOrDev(t *testing.T) {
	var c Config
	assert.Equal(t, users.DevAccounts(), c.AccountsOrDev())

	c.Users = []users.Account{{Username: "sec", Role: models.RoleAdmin, PasswordHash: "$2a$..."}}
	assert.Equal(t, c.Users, c.AccountsOrDev())
}
