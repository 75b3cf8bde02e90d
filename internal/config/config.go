// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir  string // Directory holding group CSVs and databases (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// Default metric parameters. Per-request values override these; they are
	// passed into the engine as an explicit metrics config, never as globals.
	DefaultWindow       int     // Rolling window in periods
	DefaultRiskFreeRate float64 // Annual risk-free rate
	MaxObservationDate  time.Time
	RefreshSchedule     string        // Cron spec for the dataset refresh job
	SnapshotTTL         time.Duration // Lifetime of cached metric snapshots
}

// Load reads configuration from environment variables (.env supported).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("CAPSCOPE_DATA_DIR", "data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	maxDate, err := time.Parse("2006-01-02", getEnv("CAPSCOPE_MAX_DATE", "2025-12-31"))
	if err != nil {
		return nil, fmt.Errorf("invalid CAPSCOPE_MAX_DATE: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("CAPSCOPE_PORT", 8080),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		DefaultWindow:       getEnvAsInt("CAPSCOPE_WINDOW", 12),
		DefaultRiskFreeRate: getEnvAsFloat("CAPSCOPE_RISK_FREE_RATE", 0.02),
		MaxObservationDate:  maxDate,
		RefreshSchedule:     getEnv("CAPSCOPE_REFRESH_SCHEDULE", "@daily"),
		SnapshotTTL:         time.Duration(getEnvAsInt("CAPSCOPE_SNAPSHOT_TTL_MINUTES", 60)) * time.Minute,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.DefaultWindow <= 0 {
		return fmt.Errorf("rolling window must be positive, got %d", c.DefaultWindow)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
