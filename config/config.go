package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"papertrader/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration. Collaborator endpoints are
// injected here rather than embedded in the components that use them.
type Config struct {
	// Identity (the opaque identifier supplied by the identity provider)
	UserID string

	// Price Feed
	FeedAPIKey      string
	FeedBaseURL     string
	VenueSuffix     string        // Exchange suffix for quote lookups (e.g., ".NSE")
	QuoteTimeout    time.Duration // Per-request timeout for quote calls
	DailyQuoteQuota int           // Feed requests allowed per day

	// Database
	DBPath string

	// Dashboard
	RefreshInterval time.Duration // How often open positions are re-valuated

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	// Identity
	cfg.UserID = getEnv("USER_ID", "")
	if cfg.UserID == "" {
		errs = append(errs, "USER_ID must be set")
	}

	// Price Feed
	cfg.FeedAPIKey = getEnv("ALPHAVANTAGE_API_KEY", "")
	if cfg.FeedAPIKey == "" {
		errs = append(errs, "ALPHAVANTAGE_API_KEY must be set")
	}
	cfg.FeedBaseURL = getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co")
	cfg.VenueSuffix = getEnv("VENUE_SUFFIX", ".NSE")

	quoteTimeoutSeconds := getEnvAsInt("QUOTE_TIMEOUT_SECONDS", 10)
	if quoteTimeoutSeconds <= 0 {
		errs = append(errs, "QUOTE_TIMEOUT_SECONDS must be positive")
	}
	cfg.QuoteTimeout = time.Duration(quoteTimeoutSeconds) * time.Second

	cfg.DailyQuoteQuota = getEnvAsInt("DAILY_QUOTE_QUOTA", 25)
	if cfg.DailyQuoteQuota <= 0 {
		errs = append(errs, "DAILY_QUOTE_QUOTA must be positive")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/papertrader.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Dashboard
	refreshSeconds := getEnvAsInt("REFRESH_INTERVAL_SECONDS", 300)
	if refreshSeconds <= 0 {
		errs = append(errs, "REFRESH_INTERVAL_SECONDS must be positive")
	}
	cfg.RefreshInterval = time.Duration(refreshSeconds) * time.Second

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
