// Package sqlite stores one serialized document per bin in a local sqlite
// file. Used as the self-hosted alternative to jsonbin and as the archive
// target for the background worker.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"registro/internal/binstore"
	"registro/internal/core"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

var _ binstore.Store = (*Store)(nil)

// New opens (creating if needed) the database at dbPath and applies
// migrations before returning.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the stored payload for a bin, or (nil, nil) when the bin has
// never been saved.
func (s *Store) Load(ctx context.Context, binID string) (json.RawMessage, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE bin_id = ?`, binID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bin %s: %w", binID, err)
	}
	return json.RawMessage(payload), nil
}

// Save upserts the bin's document. Last writer wins.
func (s *Store) Save(ctx context.Context, binID string, doc core.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (bin_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(bin_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		binID, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save bin %s: %w", binID, err)
	}
	return nil
}
