// Package cli provides the process bootstrap shared by the commands: .env
// loading, logger setup, configuration and signal handling.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendwise/internal/config"
	applog "spendwise/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// NewLogger builds the application logger from LOG_LEVEL and LOG_FORMAT
// values.
func NewLogger(w io.Writer, level, format string) (*applog.Logger, error) {
	lvl, err := applog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	handler, err := applog.NewHandler(w, format, lvl)
	if err != nil {
		return nil, err
	}
	return applog.New(applog.Config{
		Level:     lvl,
		Component: applog.ComponentApp,
		Handler:   handler,
	}), nil
}

// Bootstrap loads the environment and configuration and installs the
// default logger. Any problem is fatal for the process, so it exits instead
// of returning an error.
func Bootstrap() (*config.Config, *applog.Logger) {
	LoadEnvFile()
	cfg := config.Load()

	logger, err := NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger = applog.New(applog.DefaultConfig())
		logger.Warn("Invalid logging settings, using defaults", applog.FieldError, err)
	}
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// ListenAddr turns a PORT value into a listen address.
func ListenAddr(port string) string {
	return fmt.Sprintf(":%s", port)
}
