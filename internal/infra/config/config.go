package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	DatabaseURL     string
	HTTPAddr        string
	TrackingBaseURL string
	LogLevel        string
	Environment     string

	// Cron schedules for the background loops.
	CronSpecSendTick      string // per-athlete send batches
	CronSpecFollowupSweep string // follow-up derivation
	CronSpecReclaimSweep  string // stuck-queued recovery

	// Per-send pacing delay inside a batch.
	PacingDelay time.Duration
	// Upper bound on records per batch, before the athlete's own cap.
	BatchLimit int

	// Process-wide fallback SMTP credential, used when an athlete has no
	// stored credential of their own.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// 64 hex chars (32 bytes) keying the credential store's AES-GCM.
	CredentialsKey string

	// Optional Telegram admin alert channel.
	TelegramToken   string
	AdminTelegramID int64
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPAddr = getEnvDefault("HTTP_ADDR", ":8080")
	cfg.TrackingBaseURL = os.Getenv("TRACKING_BASE_URL")
	if cfg.TrackingBaseURL == "" {
		return nil, fmt.Errorf("TRACKING_BASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(getEnvDefault("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnvDefault("ENVIRONMENT", "development"))

	cfg.CronSpecSendTick = getEnvDefault("CRON_SPEC_SEND_TICK", "*/15 * * * *")
	cfg.CronSpecFollowupSweep = getEnvDefault("CRON_SPEC_FOLLOWUP_SWEEP", "0 * * * *")
	cfg.CronSpecReclaimSweep = getEnvDefault("CRON_SPEC_RECLAIM_SWEEP", "*/5 * * * *")

	pacingStr := getEnvDefault("PACING_DELAY", "45s")
	cfg.PacingDelay, err = time.ParseDuration(pacingStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PACING_DELAY: %w", err)
	}

	batchStr := getEnvDefault("BATCH_LIMIT", "25")
	cfg.BatchLimit, err = strconv.Atoi(batchStr)
	if err != nil || cfg.BatchLimit <= 0 {
		return nil, fmt.Errorf("invalid BATCH_LIMIT: %q", batchStr)
	}

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is not set")
	}
	portStr := getEnvDefault("SMTP_PORT", "587")
	cfg.SMTPPort, err = strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.SMTPFrom = getEnvDefault("SMTP_FROM", cfg.SMTPUsername)

	cfg.CredentialsKey = os.Getenv("CREDENTIALS_KEY")
	if cfg.CredentialsKey == "" {
		return nil, fmt.Errorf("CREDENTIALS_KEY is not set")
	}
	if len(cfg.CredentialsKey) != 64 {
		return nil, fmt.Errorf("CREDENTIALS_KEY must be 64 hex characters, got %d", len(cfg.CredentialsKey))
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return cfg, nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
