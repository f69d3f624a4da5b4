package core

// Ledger holds the authoritative in-memory entry list for one session.
// Insertion order is display order. Ledger itself is not safe for
// concurrent use; the session layer serializes access.
type Ledger struct {
	entries []Entry
	nextID  int64
}

// NewLedger returns an empty ledger. The first assigned id is 1.
func NewLedger() *Ledger {
	return &Ledger{nextID: 1}
}

// Add validates the draft and appends a new entry with the next unused id.
// IDs are strictly increasing for the lifetime of the session and are never
// reused, even after the highest-id entry is deleted.
func (l *Ledger) Add(dr Draft) (Entry, error) {
	date, kind, amount, err := validate(dr)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		ID:            l.nextID,
		Date:          date,
		Event:         dr.Event,
		Kind:          kind,
		Category:      dr.Category,
		Amount:        amount,
		Description:   dr.Description,
		PaymentMethod: dr.PaymentMethod,
		Responsible:   dr.Responsible,
		Note:          dr.Note,
	}
	l.nextID++
	l.entries = append(l.entries, e)
	return e, nil
}

// Update replaces the entry with the matching id in place. The id and the
// entry's position in the list are preserved. Returns ErrNotFound if the id
// no longer exists.
func (l *Ledger) Update(id int64, dr Draft) (Entry, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Entry{}, ErrNotFound
	}
	date, kind, amount, err := validate(dr)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		ID:            id,
		Date:          date,
		Event:         dr.Event,
		Kind:          kind,
		Category:      dr.Category,
		Amount:        amount,
		Description:   dr.Description,
		PaymentMethod: dr.PaymentMethod,
		Responsible:   dr.Responsible,
		Note:          dr.Note,
	}
	l.entries[idx] = e
	return e, nil
}

// Delete removes the entry with the matching id. A second delete of the
// same id returns ErrNotFound rather than silently succeeding.
func (l *Ledger) Delete(id int64) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	l.entries = append(l.entries[:idx], l.entries[idx+1:]...)
	return nil
}

// Get returns the entry with the given id.
func (l *Ledger) Get(id int64) (Entry, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Entry{}, ErrNotFound
	}
	return l.entries[idx], nil
}

// Entries returns a copy of the full list in insertion order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Clear empties the ledger and restarts id assignment, matching the
// "clear all" action which begins a fresh book.
func (l *Ledger) Clear() {
	l.entries = nil
	l.nextID = 1
}

func (l *Ledger) indexOf(id int64) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Totals are derived, never stored: always recomputed from whatever subset
// is passed in (full list or a filtered view) to avoid drift across many
// add/delete cycles.
type Totals struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
}

// ComputeTotals sums amounts by kind. Balance is exactly income minus
// expense; all three are integer cents, so no additional rounding applies.
func ComputeTotals(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		switch e.Kind {
		case KindIncome:
			t.Income = t.Income.Add(e.Amount)
		case KindExpense:
			t.Expense = t.Expense.Add(e.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}
