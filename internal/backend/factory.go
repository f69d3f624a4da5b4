package backend

import (
	"fmt"
	"log/slog"

	"registro/internal/binstore/jsonbin"
	"registro/internal/binstore/memory"
	"registro/internal/binstore/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateStore(cfg Config) (*Result, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid store backend: %s", cfg.Type)
	}

	switch cfg.Type {
	case JSONBinBackend:
		return f.createJSONBinStore(cfg)
	case SQLiteBackend:
		return f.createSQLiteStore(cfg)
	case MemoryBackend:
		return f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Type)
	}
}

func (f *DefaultFactory) createJSONBinStore(cfg Config) (*Result, error) {
	client, err := jsonbin.New(cfg.JSONBinBaseURL, cfg.JSONBinAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jsonbin store: %w", err)
	}

	f.logger.Info("Initialized jsonbin store", "base_url", cfg.JSONBinBaseURL)

	return &Result{Store: client}, nil
}

func (f *DefaultFactory) createSQLiteStore(cfg Config) (*Result, error) {
	store, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite store: %w", err)
	}

	f.logger.Info("Initialized sqlite store", "db_path", cfg.SQLiteDBPath)

	return &Result{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createMemoryStore() (*Result, error) {
	f.logger.Info("Initialized memory store")

	return &Result{Store: memory.New()}, nil
}
