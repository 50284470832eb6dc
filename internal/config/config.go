// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the ledger and cache databases (always absolute)
	Port            int
	LogLevel        string
	DevMode         bool
	RefreshSchedule string // Cron expression for the dashboard cache refresh job
	ProjectionDays  int    // Default cash-flow projection horizon in days
}

// Load reads configuration from environment variables.
// A .env file is honored when present so local development does not
// require exporting variables by hand.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("FLUXO_DATA_DIR", "./data")

	// Always resolve to absolute path and make sure the directory exists,
	// so later database opens cannot fail on a missing parent.
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("PORT", 8040),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 5 * * *"),
		ProjectionDays:  getEnvAsInt("PROJECTION_DAYS", 30),
	}

	if cfg.ProjectionDays <= 0 {
		return nil, fmt.Errorf("PROJECTION_DAYS must be positive, got %d", cfg.ProjectionDays)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable, returning the fallback when unset or empty
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an integer environment variable, returning the fallback
// when unset or not parseable
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsBool retrieves a boolean environment variable, returning the fallback
// when unset or not parseable
func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
