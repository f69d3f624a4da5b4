// Package cli provides common initialization for the registro binaries:
// cmd/registro, cmd/registro-worker, and cmd/registro-export.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"registro/internal/backend"
	"registro/internal/categories"
	"registro/internal/categories/google"
	catmem "registro/internal/categories/memory"
	"registro/internal/config"
	"registro/internal/log"
)

// SetupLogger initializes the process logger and sets it as default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.DefaultConfig(component))
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// CreateStore builds the configured document store through the backend
// factory. Exits the process on failure.
func CreateStore(logger *log.Logger, cfg *config.Config) *backend.Result {
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateStore(backend.Config{
		Type:           backend.Type(cfg.StoreBackend),
		JSONBinBaseURL: cfg.JSONBinBaseURL,
		JSONBinAPIKey:  cfg.JSONBinAPIKey,
		SQLiteDBPath:   cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize document store",
			log.FieldError, err, log.FieldBackend, cfg.StoreBackend)
		os.Exit(1)
	}
	return result
}

// NewCategorySource returns the Google Sheets source when a spreadsheet is
// configured, otherwise the file-seeded development source.
func NewCategorySource(ctx context.Context, logger *log.Logger, cfg *config.Config) categories.Source {
	if cfg.HasGoogleSheets() {
		src, err := google.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets category source", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Initialized Google Sheets category source",
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
		return src
	}
	logger.Info("No spreadsheet configured, using file-seeded categories")
	return catmem.NewFromFiles("data")
}

// GracefulShutdown sets up signal handling. Returns a context cancelled on
// SIGINT/SIGTERM and a channel closed once cleanup has run.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
