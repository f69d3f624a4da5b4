package categories

import (
	"context"
	"errors"
	"testing"
)

type countingSource struct {
	calls int
	cat   Catalog
	err   error
}

func (s *countingSource) Categories(_ context.Context) (Catalog, error) {
	s.calls++
	if s.err != nil {
		return Catalog{}, s.err
	}
	return s.cat, nil
}

func TestCacheFetchesOnce(t *testing.T) {
	src := &countingSource{cat: Catalog{Incomes: []string{"Diezmos"}, Expenses: []string{"Servicios"}}}
	c := NewCache(src)

	for i := 0; i < 3; i++ {
		cat, err := c.Categories(context.Background())
		if err != nil {
			t.Fatalf("categories: %v", err)
		}
		if len(cat.Incomes) != 1 || cat.Incomes[0] != "Diezmos" {
			t.Fatalf("unexpected catalog: %+v", cat)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", src.calls)
	}
}

func TestCacheMemoizesEmptyCatalog(t *testing.T) {
	src := &countingSource{}
	c := NewCache(src)
	if _, err := c.Categories(context.Background()); err != nil {
		t.Fatalf("categories: %v", err)
	}
	if _, err := c.Categories(context.Background()); err != nil {
		t.Fatalf("categories: %v", err)
	}
	// empty is a valid result, not a reason to refetch
	if src.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", src.calls)
	}
}

func TestCacheDoesNotMemoizeFailure(t *testing.T) {
	src := &countingSource{err: errors.New("upstream down")}
	c := NewCache(src)

	if _, err := c.Categories(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	src.err = nil
	src.cat = Catalog{Incomes: []string{"Ofrendas"}}
	cat, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if len(cat.Incomes) != 1 {
		t.Fatalf("expected retried fetch, got %+v", cat)
	}
	if src.calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", src.calls)
	}
}

func TestCacheRefresh(t *testing.T) {
	src := &countingSource{cat: Catalog{Incomes: []string{"a"}}}
	c := NewCache(src)
	c.Categories(context.Background())

	src.cat = Catalog{Incomes: []string{"a", "b"}}
	cat, err := c.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(cat.Incomes) != 2 {
		t.Fatalf("refresh did not refetch: %+v", cat)
	}
	if src.calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", src.calls)
	}
}

func TestCatalogForKind(t *testing.T) {
	cat := Catalog{Incomes: []string{"Diezmos"}, Expenses: []string{"Servicios"}}
	if got := cat.ForKind("income"); len(got) != 1 || got[0] != "Diezmos" {
		t.Fatalf("income list wrong: %v", got)
	}
	if got := cat.ForKind("expense"); len(got) != 1 || got[0] != "Servicios" {
		t.Fatalf("expense list wrong: %v", got)
	}
	if got := cat.ForKind("other"); got != nil {
		t.Fatalf("unknown kind should be nil, got %v", got)
	}
}
