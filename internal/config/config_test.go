package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "FRONTEND_URL", "ROW_STORE", "MAIL_DRIVER", "PENDING_TTL", "CLAIM_LEASE", "BCRYPT_COST", "TRUST_PROXY"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "4000", cfg.AppPort)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, RowStoreDynamo, cfg.RowStore)
	assert.Equal(t, MailDriverSMTP, cfg.MailDriver)
	assert.Zero(t, cfg.PendingTTL)
	assert.Equal(t, 30*time.Second, cfg.ClaimLease)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "pending_users", cfg.DynamoTables.PendingRegistrations)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://medskill.example/")
	t.Setenv("PENDING_TTL", "72h")
	t.Setenv("CLAIM_LEASE", "5s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TRUST_PROXY", "true")
	cfg := Load()

	assert.Equal(t, "https://medskill.example", cfg.FrontendURL)
	assert.Equal(t, 72*time.Hour, cfg.PendingTTL)
	assert.Equal(t, 5*time.Second, cfg.ClaimLease)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.TrustProxy)
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("PENDING_TTL", "three days")
	assert.Equal(t, time.Minute, getEnvDuration("PENDING_TTL", time.Minute))
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("BCRYPT_COST", "high")
	assert.Equal(t, 12, getEnvInt("BCRYPT_COST", 12))
}

func TestGetEnvBool_InvalidFallsBack(t *testing.T) {
	t.Setenv("TRUST_PROXY", "maybe")
	assert.False(t, getEnvBool("TRUST_PROXY", false))
}
