// Package config provides configuration management for the item API server.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultProbePort       = 9090
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
)

// Environment variable names.
const (
	EnvServerPort         = "APP_SERVER_PORT"
	EnvProbePort          = "APP_PROBE_PORT"
	EnvLogLevel           = "APP_LOG_LEVEL"
	EnvShutdownTimeout    = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled     = "APP_METRICS_ENABLED"
	EnvCORSAllowedOrigins = "APP_CORS_ALLOWED_ORIGINS"
)

// Config holds the application configuration.
type Config struct {
	ServerPort         int           `env:"APP_SERVER_PORT" envDefault:"8080"`
	ProbePort          int           `env:"APP_PROBE_PORT" envDefault:"9090"` // 0 disables the probe server.
	LogLevel           string        `env:"APP_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout    time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MetricsEnabled     bool          `env:"APP_METRICS_ENABLED" envDefault:"true"`
	CORSAllowedOrigins []string      `env:"APP_CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidProbePort       = errors.New("probe port must be between 0 and 65535")
	ErrProbePortConflict      = errors.New("probe port must differ from server port when probe port is not 0")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrNoCORSOrigins          = errors.New("at least one CORS origin must be configured")
)

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	if c.ProbePort < 0 || c.ProbePort > 65535 {
		return ErrInvalidProbePort
	}

	if c.ProbePort != 0 && c.ProbePort == c.ServerPort {
		return ErrProbePortConflict
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	if len(c.CORSAllowedOrigins) == 0 {
		return ErrNoCORSOrigins
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// ProbeEnabled reports whether the probe server should be started.
func (c *Config) ProbeEnabled() bool {
	return c.ProbePort != 0
}
