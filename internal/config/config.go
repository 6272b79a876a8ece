// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string // Path to the SQLite database file
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens, 64 hex characters (32 bytes)
	AccessTokenKey string
	// Session durations
	AccessTokenDuration  time.Duration // e.g., 15m
	RefreshTokenDuration time.Duration // e.g., 720h (30 days)
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	port := flag.String("port", "", "Server port (default: 8080)")
	dbPath := flag.String("db-path", "", "Path to SQLite database file")
	accessTokenKey := flag.String("access-token-key", "", "PASETO v4 symmetric key (64 hex chars)")
	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := flag.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")
	envFile := flag.String("env-file", ".env", "Path to .env file")
	flag.Parse()

	// Load .env before consulting the environment.
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: firstOf(*env, os.Getenv("TASKDECK_ENV"), "development"),
		},
		Logger: LoggerConfig{
			Level: firstOf(*logLevel, os.Getenv("TASKDECK_LOG_LEVEL"), "info"),
		},
		Server: ServerConfig{
			Port: firstOf(*port, os.Getenv("TASKDECK_PORT"), "8080"),
		},
		Database: DatabaseConfig{
			Path: firstOf(*dbPath, os.Getenv("TASKDECK_DB_PATH"), "taskdeck.db"),
		},
		Auth: AuthConfig{
			AccessTokenKey: firstOf(*accessTokenKey, os.Getenv("TASKDECK_ACCESS_TOKEN_KEY"), ""),
		},
	}

	var err error
	cfg.Server.ReadTimeout, err = durationOf(firstOf(os.Getenv("TASKDECK_READ_TIMEOUT"), ""), 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("read timeout: %w", err)
	}
	cfg.Server.WriteTimeout, err = durationOf(firstOf(os.Getenv("TASKDECK_WRITE_TIMEOUT"), ""), 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("write timeout: %w", err)
	}
	cfg.Server.IdleTimeout, err = durationOf(firstOf(os.Getenv("TASKDECK_IDLE_TIMEOUT"), ""), 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("idle timeout: %w", err)
	}
	cfg.Auth.AccessTokenDuration, err = durationOf(firstOf(*accessTokenDuration, os.Getenv("TASKDECK_ACCESS_TOKEN_DURATION"), ""), 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("access token duration: %w", err)
	}
	cfg.Auth.RefreshTokenDuration, err = durationOf(firstOf(*refreshTokenDuration, os.Getenv("TASKDECK_REFRESH_TOKEN_DURATION"), ""), 30*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("refresh token duration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.App.Environment != "development" && c.App.Environment != "production" {
		return fmt.Errorf("invalid environment %q", c.App.Environment)
	}
	if c.Database.Path == "" {
		return errors.New("database path must not be empty")
	}
	if c.Auth.AccessTokenKey != "" && len(c.Auth.AccessTokenKey) != 64 {
		return fmt.Errorf("access token key must be 64 hex characters, got %d", len(c.Auth.AccessTokenKey))
	}
	return nil
}

// IsProduction returns true when running in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// loadEnvFile reads KEY=VALUE pairs from a file into the process environment.
// Existing environment variables are not overwritten.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// durationOf parses a duration string, falling back to a default when empty.
func durationOf(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}
