// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/rebalancer/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir            string // Base directory for all databases, always absolute
	TradernetAPIKey    string
	TradernetAPISecret string
	LogLevel           string
	Port               int
	DevMode            bool
	CycleInterval      time.Duration // How often the scheduler runs an evaluation cycle
	StatusCacheTTL     time.Duration // TTL of the trading status cache
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("REBALANCER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		Port:               getEnvAsInt("PORT", 8001),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		TradernetAPIKey:    getEnv("TRADERNET_API_KEY", ""),
		TradernetAPISecret: getEnv("TRADERNET_API_SECRET", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CycleInterval:      getEnvAsDuration("CYCLE_INTERVAL", 15*time.Minute),
		StatusCacheTTL:     getEnvAsDuration("STATUS_CACHE_TTL", time.Minute),
	}

	return cfg, nil
}

// UpdateFromSettings overlays credentials stored in the settings database.
// Non-empty database values take precedence over environment variables.
func (c *Config) UpdateFromSettings(settingsRepo *settings.Repository) error {
	apiKey, err := settingsRepo.Get("tradernet_api_key")
	if err != nil {
		return fmt.Errorf("failed to get tradernet_api_key from settings: %w", err)
	}
	if apiKey != nil && *apiKey != "" {
		c.TradernetAPIKey = *apiKey
	}

	apiSecret, err := settingsRepo.Get("tradernet_api_secret")
	if err != nil {
		return fmt.Errorf("failed to get tradernet_api_secret from settings: %w", err)
	}
	if apiSecret != nil && *apiSecret != "" {
		c.TradernetAPISecret = *apiSecret
	}

	return nil
}

// DatabasePath returns the absolute path for a named database file
func (c *Config) DatabasePath(name string) string {
	return filepath.Join(c.DataDir, name+".db")
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
