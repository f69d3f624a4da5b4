// Package memory is an in-process document store for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"registro/internal/binstore"
	"registro/internal/core"
)

type Store struct {
	mu   sync.RWMutex
	bins map[string]json.RawMessage
}

var _ binstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{bins: make(map[string]json.RawMessage)}
}

func (s *Store) Load(_ context.Context, binID string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.bins[binID]
	if !ok {
		return nil, nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, nil
}

func (s *Store) Save(_ context.Context, binID string, doc core.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bins[binID] = payload
	return nil
}
