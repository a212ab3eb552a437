package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"PORT", "DB_NAME", "APP_ENV", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
		"PAYMENT_DELAY", "PAYMENT_FAILURE_RATE", "CORS_ORIGINS", "JWT_REFRESH_SECRET"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "donation_hub", cfg.DBName)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.PaymentDelay)
	assert.InDelta(t, 0.05, cfg.PaymentFailureRate, 1e-12)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "secret", cfg.JWTRefreshSecret)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("PAYMENT_DELAY", "0s")
	t.Setenv("PAYMENT_FAILURE_RATE", "0")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Zero(t, cfg.PaymentDelay)
	assert.Zero(t, cfg.PaymentFailureRate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)

	logger, err := cfg.NewLogger(true)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoadRejectsMissingAndMalformed(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ACCESS_TOKEN_TTL", "soon")
	t.Setenv("PAYMENT_FAILURE_RATE", "2")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI is required")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_TTL")
	assert.Contains(t, err.Error(), "PAYMENT_FAILURE_RATE")
}
