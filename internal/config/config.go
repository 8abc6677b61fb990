package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Jobs     JobsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds the fernet API key settings. An empty secret disables
// the API key requirement (local development).
type AuthConfig struct {
	APIKeySecret string
	APIKeyTTL    time.Duration
}

// JobsConfig holds scheduled-job configuration.
type JobsConfig struct {
	// ValidationSchedule is a cron expression for the periodic consistency
	// check across all accounts. Empty disables the job.
	ValidationSchedule string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	apiKeyTTL, err := time.ParseDuration(getEnv("API_KEY_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_KEY_TTL: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/stock_ledger.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost"), ","),
		},
		Auth: AuthConfig{
			APIKeySecret: os.Getenv("API_KEY_SECRET"),
			APIKeyTTL:    apiKeyTTL,
		},
		Jobs: JobsConfig{
			ValidationSchedule: getEnv("VALIDATION_SCHEDULE", "@hourly"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
