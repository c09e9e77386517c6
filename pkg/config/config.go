package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Remote        RemoteConfig
	Import        ImportConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
}

// RemoteConfig points at the contacts store the batches are submitted to.
type RemoteConfig struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond int
}

type ImportConfig struct {
	BatchSize     int
	SessionTTL    time.Duration
	SweepSchedule string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
		},
		Remote: RemoteConfig{
			BaseURL:           getEnv("CONTACTS_STORE_URL", ""),
			Token:             getEnv("CONTACTS_STORE_TOKEN", ""),
			Timeout:           getEnvAsDuration("CONTACTS_STORE_TIMEOUT", 60*time.Second),
			RequestsPerSecond: getEnvAsInt("CONTACTS_STORE_RPS", 5),
		},
		Import: ImportConfig{
			BatchSize:     getEnvAsInt("IMPORT_BATCH_SIZE", 3000),
			SessionTTL:    getEnvAsDuration("IMPORT_SESSION_TTL", 2*time.Hour),
			SweepSchedule: getEnv("IMPORT_SWEEP_SCHEDULE", "*/15 * * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if cfg.Remote.BaseURL == "" {
		return nil, errors.New("CONTACTS_STORE_URL is required")
	}

	if cfg.Import.BatchSize <= 0 {
		return nil, errors.New("IMPORT_BATCH_SIZE must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
