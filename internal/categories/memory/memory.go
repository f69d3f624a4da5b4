// Package memory is a file-seeded category source for development and tests.
package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"registro/internal/categories"
)

type Source struct {
	mu  sync.Mutex
	cat categories.Catalog
}

var _ categories.Source = (*Source)(nil)

func New(incomes, expenses []string) *Source {
	return &Source{cat: categories.Catalog{
		Incomes:  cleaned(incomes),
		Expenses: cleaned(expenses),
	}}
}

// NewFromFiles seeds from seed_incomes.txt and seed_expenses.txt under base,
// with small defaults when neither file exists.
func NewFromFiles(base string) *Source {
	incomes := readLines(filepath.Join(base, "seed_incomes.txt"))
	expenses := readLines(filepath.Join(base, "seed_expenses.txt"))
	if len(incomes) == 0 {
		incomes = []string{"Diezmos", "Ofrendas", "Donaciones"}
	}
	if len(expenses) == 0 {
		expenses = []string{"Servicios", "Mantenimiento", "Ayuda social"}
	}
	return New(incomes, expenses)
}

func (s *Source) Categories(_ context.Context) (categories.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return categories.Catalog{
		Incomes:  append([]string(nil), s.cat.Incomes...),
		Expenses: append([]string(nil), s.cat.Expenses...),
	}, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// cleaned trims whitespace and drops blanks. Duplicates are intentionally
// preserved: the lists mirror the sheet as-is.
func cleaned(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
