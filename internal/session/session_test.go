package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"registro/internal/amqp"
	"registro/internal/binstore/memory"
	"registro/internal/categories"
	catmem "registro/internal/categories/memory"
	"registro/internal/core"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []*amqp.LedgerSavedMessage
	err      error
}

func (p *recordingPublisher) PublishLedgerSaved(_ context.Context, msg *amqp.LedgerSavedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

type failingSource struct{}

func (failingSource) Categories(_ context.Context) (categories.Catalog, error) {
	return categories.Catalog{}, errors.New("sheet unreachable")
}

// blockingStore delays Save until released, to exercise the in-flight guard.
type blockingStore struct {
	*memory.Store
	started     chan struct{}
	startedOnce sync.Once
	release     chan struct{}
}

func (b *blockingStore) Save(ctx context.Context, binID string, doc core.Document) error {
	b.startedOnce.Do(func() { close(b.started) })
	<-b.release
	return b.Store.Save(ctx, binID, doc)
}

func newTestManager() (*Manager, *memory.Store, *recordingPublisher) {
	store := memory.New()
	src := catmem.New([]string{"Diezmos", "Ofrendas"}, []string{"Servicios"})
	pub := &recordingPublisher{}
	return NewManager(store, src, pub, "Iglesia Central"), store, pub
}

func TestManagerReturnsSameSessionPerBin(t *testing.T) {
	m, _, _ := newTestManager()
	a := m.Session("bin-1")
	b := m.Session("bin-1")
	c := m.Session("bin-2")
	if a != b {
		t.Fatal("same bin should share a session")
	}
	if a == c {
		t.Fatal("different bins should not share a session")
	}
}

func TestHydrateMissingBinYieldsEmptyLedger(t *testing.T) {
	m, _, _ := newTestManager()
	s := m.Session("fresh")
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d entries", s.Len())
	}
	if _, err := s.AddEntry(core.Draft{Date: "2024-01-01", Event: "a", Kind: "income", Category: "Diezmos", Amount: "5"}); err != nil {
		t.Fatalf("ledger should be usable after empty hydrate: %v", err)
	}
}

func TestHydrateLoadsStoredDocument(t *testing.T) {
	m, store, _ := newTestManager()
	ctx := context.Background()

	seed := core.NewLedger()
	seed.Add(core.Draft{Date: "2024-03-01", Event: "Culto", Kind: "income", Category: "Diezmos", Amount: "100"})
	seed.Add(core.Draft{Date: "2024-03-02", Event: "Luz", Kind: "expense", Category: "Servicios", Amount: "40.50"})
	if err := store.Save(ctx, "bin-1", seed.ToDocument("Iglesia Central", time.Now())); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	s := m.Session("bin-1")
	if err := s.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}
	// the id counter resumes past the stored ids
	e, err := s.AddEntry(core.Draft{Date: "2024-03-03", Event: "b", Kind: "income", Category: "Ofrendas", Amount: "1"})
	if err != nil {
		t.Fatalf("add after hydrate: %v", err)
	}
	if e.ID != 3 {
		t.Fatalf("expected id 3 after hydrate, got %d", e.ID)
	}
}

func TestHydrateSurfacesCategoryFailureButKeepsLedger(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	seed := core.NewLedger()
	seed.Add(core.Draft{Date: "2024-03-01", Event: "Culto", Kind: "income", Category: "Diezmos", Amount: "100"})
	store.Save(ctx, "bin-1", seed.ToDocument("org", time.Now()))

	m := NewManager(store, failingSource{}, nil, "org")
	s := m.Session("bin-1")

	if err := s.Hydrate(ctx); err == nil {
		t.Fatal("expected category failure to surface")
	}
	if s.Len() != 1 {
		t.Fatalf("ledger should still hydrate, got %d entries", s.Len())
	}
}

func TestSaveWritesDocumentAndPublishes(t *testing.T) {
	m, store, pub := newTestManager()
	ctx := context.Background()
	s := m.Session("bin-1")

	s.AddEntry(core.Draft{Date: "2024-04-01", Event: "Culto", Kind: "income", Category: "Diezmos", Amount: "200"})
	s.AddEntry(core.Draft{Date: "2024-04-02", Event: "Agua", Kind: "expense", Category: "Servicios", Amount: "50"})

	doc, err := s.Save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(doc.Entries) != 2 || doc.Meta.Organization != "Iglesia Central" {
		t.Fatalf("unexpected document %+v", doc.Meta)
	}
	if doc.Totals.Balance.Cents != 15000 {
		t.Fatalf("balance = %d, want 15000", doc.Totals.Balance.Cents)
	}

	raw, err := store.Load(ctx, "bin-1")
	if err != nil || raw == nil {
		t.Fatalf("document not persisted: %v", err)
	}
	var persisted core.Document
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("persisted payload invalid: %v", err)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.BinID != "bin-1" || msg.EntryCount != 2 {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestSavePublishFailureDoesNotFailSave(t *testing.T) {
	store := memory.New()
	src := catmem.New(nil, nil)
	pub := &recordingPublisher{err: errors.New("broker down")}
	m := NewManager(store, src, pub, "org")
	s := m.Session("bin-1")

	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("save should survive publish failure: %v", err)
	}
	raw, _ := store.Load(context.Background(), "bin-1")
	if raw == nil {
		t.Fatal("document should be persisted despite publish failure")
	}
}

func TestSaveInFlightRejected(t *testing.T) {
	bs := &blockingStore{
		Store:   memory.New(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	m := NewManager(bs, catmem.New(nil, nil), nil, "org")
	s := m.Session("bin-1")

	done := make(chan error, 1)
	go func() {
		_, err := s.Save(context.Background())
		done <- err
	}()
	<-bs.started

	if _, err := s.Save(context.Background()); !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("expected ErrSaveInFlight, got %v", err)
	}

	close(bs.release)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}

	// guard released after completion
	if _, err := s.Save(context.Background()); err != nil {
		t.Fatalf("save after completion: %v", err)
	}
}

func TestViewFiltersAndTotals(t *testing.T) {
	m, _, _ := newTestManager()
	s := m.Session("bin-1")
	s.AddEntry(core.Draft{Date: "2024-01-10", Event: "Culto", Kind: "income", Category: "Diezmos", Amount: "100"})
	s.AddEntry(core.Draft{Date: "2024-02-10", Event: "Luz", Kind: "expense", Category: "Servicios", Amount: "30"})
	s.AddEntry(core.Draft{Date: "2024-02-20", Event: "Ofrenda especial", Kind: "income", Category: "Ofrendas", Amount: "70"})

	from, _ := core.ParseDate("2024-02-01")
	entries, totals := s.View(core.Filter{From: from})
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in range, got %d", len(entries))
	}
	if totals.Income.Cents != 7000 || totals.Expense.Cents != 3000 {
		t.Fatalf("totals over filtered subset wrong: %+v", totals)
	}
}

func TestClearRestartsIDs(t *testing.T) {
	m, _, _ := newTestManager()
	s := m.Session("bin-1")
	s.AddEntry(core.Draft{Date: "2024-01-01", Event: "a", Kind: "income", Category: "Diezmos", Amount: "5"})
	s.Clear()
	if s.Len() != 0 {
		t.Fatal("clear should empty the ledger")
	}
	e, _ := s.AddEntry(core.Draft{Date: "2024-01-02", Event: "b", Kind: "income", Category: "Diezmos", Amount: "5"})
	if e.ID != 1 {
		t.Fatalf("expected ids to restart at 1, got %d", e.ID)
	}
}

func TestManagerCategoriesMemoized(t *testing.T) {
	m, _, _ := newTestManager()
	cat, err := m.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cat.Incomes) != 2 || len(cat.Expenses) != 1 {
		t.Fatalf("unexpected catalog %+v", cat)
	}
	if _, err := m.RefreshCategories(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
}
