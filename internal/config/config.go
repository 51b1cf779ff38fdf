// Package config loads server configuration from environment variables.
//
// PRINCIPLES:
// - KISS: flat env names, plain getters with defaults, no config framework.
// - SRP: this package only reads and validates configuration. Constructing
//   stores, loggers, or servers from it is the caller's job.
// - DIP: core packages never import config; only cmd and adapters consume it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/patchbay/patchbay/pkg/validation"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all configuration for the patchbay server.
type Config struct {
	HTTP  HTTPConfig
	Log   LogConfig
	Store StoreConfig
}

// HTTPConfig controls the REST/SSE listener.
type HTTPConfig struct {
	Addr            string `json:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `json:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" validate:"oneof=text json"`
}

// StoreConfig selects and parameterizes the snapshot store backend.
type StoreConfig struct {
	Backend string `json:"backend" validate:"oneof=memory sqlite postgres redis"`

	SQLitePath  string `json:"sqlite_path"`
	PostgresDSN string `json:"postgres_dsn"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db" validate:"min=0"`

	// TableName applies to the SQL backends, KeyPrefix and TTL to Redis.
	TableName string        `json:"table_name"`
	KeyPrefix string        `json:"key_prefix"`
	TTL       time.Duration `json:"ttl"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:            getEnvWithDefault("HTTP_ADDR", ":8080"),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level:  getEnvWithDefault("LOG_LEVEL", "info"),
			Format: getEnvWithDefault("LOG_FORMAT", "text"),
		},
		Store: StoreConfig{
			Backend:       getEnvWithDefault("STORE_BACKEND", BackendMemory),
			SQLitePath:    getEnvWithDefault("SQLITE_PATH", "patchbay.db"),
			PostgresDSN:   getEnvWithDefault("POSTGRES_DSN", ""),
			RedisAddr:     getEnvWithDefault("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnvWithDefault("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			TableName:     getEnvWithDefault("SNAPSHOT_TABLE", "snapshots"),
			KeyPrefix:     getEnvWithDefault("SNAPSHOT_PREFIX", "patchbay:snapshot:"),
			TTL:           getEnvAsDuration("SNAPSHOT_TTL", 0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks tag rules plus the backend-conditional requirements the
// tags cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_BACKEND=sqlite")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_BACKEND=postgres")
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORE_BACKEND=redis")
		}
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
