package core

import "strings"

// Filter is a transient query over a ledger view. Zero fields are unset.
// It is never persisted and resets independently of the ledger.
type Filter struct {
	From Date
	To   Date
	Text string
	Kind Kind
}

// IsZero reports whether no criteria are set.
func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() && strings.TrimSpace(f.Text) == "" && f.Kind == ""
}

// Matches reports whether the entry satisfies every set criterion. The date
// range is inclusive on both ends. Text matching is a case-insensitive
// substring search over event, description, category, and kind.
func (f Filter) Matches(e Entry) bool {
	if !f.From.IsZero() && e.Date.Time.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && e.Date.Time.After(f.To.Time) {
		return false
	}
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if text := strings.ToLower(strings.TrimSpace(f.Text)); text != "" {
		haystack := strings.ToLower(strings.Join([]string{
			e.Event, e.Description, e.Category, string(e.Kind),
		}, " "))
		if !strings.Contains(haystack, text) {
			return false
		}
	}
	return true
}

// Filtered returns the entries matching the filter, preserving input order.
// It is a pure view: the underlying list is never mutated, and filtering an
// already-filtered result with the same filter yields the same set.
func (l *Ledger) Filtered(f Filter) []Entry {
	if f.IsZero() {
		return l.Entries()
	}
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
