// Package categories defines the category source port and the
// session-scoped cache in front of it.
package categories

import "context"

// Catalog holds the two ordered category lists. Lists are kept exactly as
// the source returns them: no de-duplication, no re-ordering. An empty list
// means "no categories available" and is not an error.
type Catalog struct {
	Incomes  []string `json:"incomes"`
	Expenses []string `json:"expenses"`
}

// ForKind returns the list matching a ledger entry kind ("income" or
// "expense"); anything else gets an empty list.
func (c Catalog) ForKind(kind string) []string {
	switch kind {
	case "income":
		return c.Incomes
	case "expense":
		return c.Expenses
	}
	return nil
}

// Source is the outbound port to wherever categories live.
type Source interface {
	Categories(ctx context.Context) (Catalog, error)
}
