// Package main is the entry point for the item API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/item-api/internal/config"
	"github.com/vyrodovalexey/item-api/internal/server"
	"github.com/vyrodovalexey/item-api/internal/store"
)

// Flag names.
const (
	flagPort      = "port"
	flagProbePort = "probe-port"
	flagLogLevel  = "log-level"
	flagMetrics   = "metrics"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the CLI. Flags override the APP_* environment.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "item-api",
		Short:        "In-memory item CRUD service",
		Long:         "item-api serves create/read/update/delete operations over an in-memory item collection.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}

			return run(cfg)
		},
	}

	cmd.Flags().Int(flagPort, config.DefaultServerPort, "API listen port (overrides "+config.EnvServerPort+")")
	cmd.Flags().Int(flagProbePort, config.DefaultProbePort, "probe listen port, 0 disables (overrides "+config.EnvProbePort+")")
	cmd.Flags().String(flagLogLevel, config.DefaultLogLevel, "debug, info, warn or error (overrides "+config.EnvLogLevel+")")
	cmd.Flags().Bool(flagMetrics, config.DefaultMetricsEnabled, "expose /metrics (overrides "+config.EnvMetricsEnabled+")")

	return cmd
}

// applyFlags copies explicitly set flags onto cfg and re-validates it.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed(flagPort) {
		port, err := flags.GetInt(flagPort)
		if err != nil {
			return fmt.Errorf("reading --%s: %w", flagPort, err)
		}
		cfg.ServerPort = port
	}

	if flags.Changed(flagProbePort) {
		port, err := flags.GetInt(flagProbePort)
		if err != nil {
			return fmt.Errorf("reading --%s: %w", flagProbePort, err)
		}
		cfg.ProbePort = port
	}

	if flags.Changed(flagLogLevel) {
		level, err := flags.GetString(flagLogLevel)
		if err != nil {
			return fmt.Errorf("reading --%s: %w", flagLogLevel, err)
		}
		cfg.LogLevel = level
	}

	if flags.Changed(flagMetrics) {
		enabled, err := flags.GetBool(flagMetrics)
		if err != nil {
			return fmt.Errorf("reading --%s: %w", flagMetrics, err)
		}
		cfg.MetricsEnabled = enabled
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating flags: %w", err)
	}

	return nil
}

func run(cfg *config.Config) error {
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.Int("probe_port", cfg.ProbePort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.Strings("cors_allowed_origins", cfg.CORSAllowedOrigins),
	)

	itemStore := store.NewMemoryStore()
	srv := server.New(cfg, logger, itemStore)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
