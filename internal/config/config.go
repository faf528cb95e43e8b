// Package config provides application configuration.
package config

import (
	"os"
	"path/filepath"
)

// Config holds the application configuration.
type Config struct {
	// Server settings
	Port string
	Host string

	// Database settings
	DBPath string

	// Session settings
	SessionMaxAge int // in seconds

	// Environment
	IsDevelopment bool
}

// New creates a new Config with values from environment variables or defaults.
func New() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Host:          getEnv("HOST", "localhost"),
		DBPath:        getEnv("DB_PATH", filepath.Join("data", "wealth.db")),
		SessionMaxAge: 86400 * 7, // 7 days
		IsDevelopment: getEnv("ENV", "development") == "development",
	}
}

// Address returns the full address to bind the server to.
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
