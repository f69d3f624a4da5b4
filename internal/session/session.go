// Package session orchestrates per-bin ledger sessions: hydration from the
// document store, serialized mutation of the in-memory ledger, and persistence
// with a save-event announcement.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"registro/internal/amqp"
	"registro/internal/binstore"
	"registro/internal/categories"
	"registro/internal/core"
)

// ErrSaveInFlight is returned when a save is requested while a previous save
// for the same bin has not finished. Duplicate submissions are rejected, not
// queued.
var ErrSaveInFlight = errors.New("save already in flight")

// Publisher announces saved documents. Satisfied by *amqp.Client; nil-able
// for deployments without a broker.
type Publisher interface {
	PublishLedgerSaved(ctx context.Context, msg *amqp.LedgerSavedMessage) error
}

// Manager hands out one Session per bin id. Sessions are created lazily and
// live for the lifetime of the process.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store        binstore.Store
	source       categories.Source
	cache        *categories.Cache
	publisher    Publisher
	organization string
	now          func() time.Time
}

func NewManager(store binstore.Store, source categories.Source, publisher Publisher, organization string) *Manager {
	return &Manager{
		sessions:     make(map[string]*Session),
		store:        store,
		source:       source,
		cache:        categories.NewCache(source),
		publisher:    publisher,
		organization: organization,
		now:          time.Now,
	}
}

// Organization is the display name stamped into saved documents and exports.
func (m *Manager) Organization() string {
	return m.organization
}

// Categories returns the process-wide catalog, fetched once and memoized.
func (m *Manager) Categories(ctx context.Context) (categories.Catalog, error) {
	return m.cache.Categories(ctx)
}

// RefreshCategories refetches the catalog from the source.
func (m *Manager) RefreshCategories(ctx context.Context) (categories.Catalog, error) {
	return m.cache.Refresh(ctx)
}

// Session returns the session for a bin, creating it with an empty ledger
// and its own category cache on first use.
func (m *Manager) Session(binID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[binID]
	if !ok {
		s = &Session{
			binID:        binID,
			ledger:       core.NewLedger(),
			cache:        categories.NewCache(m.source),
			store:        m.store,
			publisher:    m.publisher,
			organization: m.organization,
			now:          m.now,
		}
		m.sessions[binID] = s
	}
	return s
}

// Session owns the working state for one bin. A mutex serializes every
// operation; the ledger itself is not safe for concurrent use.
type Session struct {
	binID string

	mu     sync.Mutex
	ledger *core.Ledger
	cache  *categories.Cache

	store        binstore.Store
	publisher    Publisher
	organization string
	now          func() time.Time

	saving atomic.Bool
}

// Hydrate loads the saved document and the category catalog concurrently
// and replaces the session's ledger with the stored state. A missing or
// malformed document yields an empty ledger. A category failure leaves the
// ledger hydrated and surfaces the error.
func (s *Session) Hydrate(ctx context.Context) error {
	var g errgroup.Group
	var raw []byte
	var loadErr error

	g.Go(func() error {
		raw, loadErr = s.store.Load(ctx, s.binID)
		if loadErr != nil {
			return fmt.Errorf("load document: %w", loadErr)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := s.cache.Categories(ctx); err != nil {
			return fmt.Errorf("fetch categories: %w", err)
		}
		return nil
	})
	err := g.Wait()

	if loadErr == nil {
		s.mu.Lock()
		s.ledger = core.FromDocument(raw)
		s.mu.Unlock()
	}
	return err
}

// Save snapshots the ledger at the moment of the call, writes the document
// through the store, and announces the save. The announcement is best
// effort: a broker failure never fails the save.
func (s *Session) Save(ctx context.Context) (core.Document, error) {
	if !s.saving.CompareAndSwap(false, true) {
		return core.Document{}, ErrSaveInFlight
	}
	defer s.saving.Store(false)

	s.mu.Lock()
	doc := s.ledger.ToDocument(s.organization, s.now())
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.binID, doc); err != nil {
		return core.Document{}, fmt.Errorf("save document: %w", err)
	}

	if s.publisher != nil {
		msg := amqp.NewLedgerSavedMessage(s.binID, len(doc.Entries), doc.Totals)
		if err := s.publisher.PublishLedgerSaved(ctx, msg); err != nil {
			slog.WarnContext(ctx, "Failed to publish save event",
				"bin_id", s.binID, "error", err)
		}
	}
	return doc, nil
}

// AddEntry validates and appends a new entry.
func (s *Session) AddEntry(dr core.Draft) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Add(dr)
}

// UpdateEntry replaces the entry with the given id.
func (s *Session) UpdateEntry(id int64, dr core.Draft) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Update(id, dr)
}

// DeleteEntry removes the entry with the given id.
func (s *Session) DeleteEntry(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Delete(id)
}

// Clear empties the ledger and restarts id assignment.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Clear()
}

// View returns the entries matching the filter plus totals computed over
// that same subset.
func (s *Session) View(f core.Filter) ([]core.Entry, core.Totals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.ledger.Filtered(f)
	return entries, core.ComputeTotals(entries)
}

// Len returns the number of entries in the full ledger.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Len()
}

// Categories returns the session's cached catalog, fetching on first use.
func (s *Session) Categories(ctx context.Context) (categories.Catalog, error) {
	return s.cache.Categories(ctx)
}

// RefreshCategories bypasses the memoized catalog and refetches.
func (s *Session) RefreshCategories(ctx context.Context) (categories.Catalog, error) {
	return s.cache.Refresh(ctx)
}
