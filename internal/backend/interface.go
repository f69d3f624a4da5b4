// Package backend wires a concrete document store adapter from configuration.
package backend

import "registro/internal/binstore"

// Type selects which store adapter the process runs against.
type Type string

const (
	JSONBinBackend Type = "jsonbin"
	SQLiteBackend  Type = "sqlite"
	MemoryBackend  Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case JSONBinBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases resources held by a store adapter.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   binstore.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateStore(cfg Config) (*Result, error)
}

// Config holds the per-adapter settings the factory needs.
type Config struct {
	Type Type

	// jsonbin specific
	JSONBinBaseURL string
	JSONBinAPIKey  string

	// sqlite specific
	SQLiteDBPath string
}
