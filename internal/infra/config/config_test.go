package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coach_outreach_service/internal/infra/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/outreach?sslmode=disable")
	t.Setenv("TRACKING_BASE_URL", "https://track.example.com")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "athlete@example.com")
	t.Setenv("SMTP_PASSWORD", "app-password")
	t.Setenv("CREDENTIALS_KEY", strings.Repeat("ab", 32))
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 45*time.Second, cfg.PacingDelay)
	assert.Equal(t, 25, cfg.BatchLimit)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "athlete@example.com", cfg.SMTPFrom, "SMTP_FROM falls back to the username")
	assert.Empty(t, cfg.TelegramToken)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PACING_DELAY", "2m")
	t.Setenv("BATCH_LIMIT", "5")
	t.Setenv("ADMIN_TELEGRAM_ID", "123456")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel, "log level is lowercased")
	assert.Equal(t, 2*time.Minute, cfg.PacingDelay)
	assert.Equal(t, 5, cfg.BatchLimit)
	assert.Equal(t, int64(123456), cfg.AdminTelegramID)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_InvalidBatchLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BATCH_LIMIT", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ShortCredentialsKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CREDENTIALS_KEY", "abcd")

	_, err := config.Load()
	assert.Error(t, err)
}
