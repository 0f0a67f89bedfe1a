package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars unsets every variable Load reads so the host environment
// cannot leak into a test. t.Setenv restores the original values.
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvServerPort,
		EnvProbePort,
		EnvLogLevel,
		EnvShutdownTimeout,
		EnvMetricsEnabled,
		EnvCORSAllowedOrigins,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func validConfig() *Config {
	return &Config{
		ServerPort:         DefaultServerPort,
		ProbePort:          DefaultProbePort,
		LogLevel:           DefaultLogLevel,
		ShutdownTimeout:    DefaultShutdownTimeout,
		MetricsEnabled:     DefaultMetricsEnabled,
		CORSAllowedOrigins: []string{"*"},
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	// Arrange
	clearEnvVars(t)

	// Act
	cfg, err := Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.ServerPort)
	assert.Equal(t, DefaultProbePort, cfg.ProbePort)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, DefaultMetricsEnabled, cfg.MetricsEnabled)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.ProbeEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	// Arrange
	clearEnvVars(t)
	t.Setenv(EnvServerPort, "5000")
	t.Setenv(EnvProbePort, "0")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvShutdownTimeout, "5s")
	t.Setenv(EnvMetricsEnabled, "false")
	t.Setenv(EnvCORSAllowedOrigins, "https://a.example.com,https://b.example.com")

	// Act
	cfg, err := Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.ServerPort)
	assert.Equal(t, 0, cfg.ProbePort)
	assert.False(t, cfg.ProbeEnabled())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, ":5000", cfg.Address())
}

func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", EnvServerPort, "http"},
		{"bad duration", EnvShutdownTimeout, "soon"},
		{"bad bool", EnvMetricsEnabled, "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_ValidationError(t *testing.T) {
	clearEnvVars(t)
	t.Setenv(EnvLogLevel, "verbose")

	_, err := Load()

	require.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "probe disabled", mutate: func(c *Config) { c.ProbePort = 0 }},
		{name: "port zero", mutate: func(c *Config) { c.ServerPort = 0 }, wantErr: ErrInvalidServerPort},
		{name: "port too high", mutate: func(c *Config) { c.ServerPort = 70000 }, wantErr: ErrInvalidServerPort},
		{name: "negative probe port", mutate: func(c *Config) { c.ProbePort = -1 }, wantErr: ErrInvalidProbePort},
		{name: "probe port too high", mutate: func(c *Config) { c.ProbePort = 65536 }, wantErr: ErrInvalidProbePort},
		{name: "probe port clash", mutate: func(c *Config) { c.ProbePort = c.ServerPort }, wantErr: ErrProbePortConflict},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: ErrInvalidLogLevel},
		{name: "zero timeout", mutate: func(c *Config) { c.ShutdownTimeout = 0 }, wantErr: ErrInvalidShutdownTimeout},
		{name: "no CORS origins", mutate: func(c *Config) { c.CORSAllowedOrigins = nil }, wantErr: ErrNoCORSOrigins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
