package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDocumentRoundTrip(t *testing.T) {
	l := NewLedger()
	l.Add(Draft{Date: "2024-01-01", Kind: "income", Category: "Tithe", Amount: "100.50",
		Event: "Sunday service", Description: "first service", PaymentMethod: "cash",
		Responsible: "treasurer", Note: "counted twice"})
	l.Add(Draft{Date: "2024-01-02", Kind: "expense", Category: "Building Fund", Amount: "40"})

	doc := l.ToDocument("Misión Pentecostal", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back := FromDocument(raw)
	if back.Len() != l.Len() {
		t.Fatalf("expected %d entries, got %d", l.Len(), back.Len())
	}
	want := l.Entries()
	got := back.Entries()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d changed in round trip:\nwant %+v\ngot  %+v", i, want[i], got[i])
		}
	}
	// next id resumes past the highest persisted id
	e, err := back.Add(Draft{Date: "2024-01-03", Kind: "income", Category: "Offering", Amount: "1"})
	if err != nil {
		t.Fatalf("add after hydrate: %v", err)
	}
	if e.ID != 3 {
		t.Fatalf("expected next id 3, got %d", e.ID)
	}
}

func TestFromDocumentMalformedYieldsEmptyLedger(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty bytes", ""},
		{"null", `null`},
		{"empty object", `{}`},
		{"entries not an array", `{"entries": {"a": 1}}`},
		{"entries is a string", `{"entries": "nope"}`},
		{"top level array", `[1,2,3]`},
		{"not json at all", `<html>`},
	}
	for _, tc := range cases {
		l := FromDocument([]byte(tc.raw))
		if l == nil {
			t.Fatalf("%s: nil ledger", tc.name)
		}
		if l.Len() != 0 {
			t.Fatalf("%s: expected empty ledger, got %d entries", tc.name, l.Len())
		}
		// an empty hydrate must still assign ids from 1
		e, err := l.Add(Draft{Date: "2024-01-01", Kind: "income", Category: "Tithe", Amount: "1"})
		if err != nil || e.ID != 1 {
			t.Fatalf("%s: fresh ledger unusable (id=%d err=%v)", tc.name, e.ID, err)
		}
	}
}

func TestFromDocumentUnwrapsRecordEnvelope(t *testing.T) {
	raw := `{"record": {"meta": {"organization": "x"}, "entries": [
		{"id": 7, "date": "2024-01-01", "kind": "expense", "category": "Paint", "amount": 12.5}
	]}}`
	l := FromDocument([]byte(raw))
	if l.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", l.Len())
	}
	e := l.Entries()[0]
	if e.ID != 7 || e.Kind != KindExpense || e.Amount.Cents != 1250 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestFromDocumentDefaults(t *testing.T) {
	raw := `{"entries": [
		{"category": "Tithe", "amount": "oops"},
		{"id": 5, "date": "2024-01-02", "kind": "weird", "amount": 3}
	]}`
	l := FromDocument([]byte(raw))
	entries := l.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	first := entries[0]
	if first.ID != 1 {
		t.Fatalf("missing id should fall back to position, got %d", first.ID)
	}
	if first.Kind != KindIncome {
		t.Fatalf("missing kind should default to income, got %q", first.Kind)
	}
	if first.Amount.Cents != 0 {
		t.Fatalf("non-numeric amount should coerce to 0, got %d", first.Amount.Cents)
	}
	if !first.Date.IsZero() {
		t.Fatalf("missing date should stay zero, got %v", first.Date)
	}
	second := entries[1]
	if second.ID != 5 || second.Kind != KindIncome || second.Amount.Cents != 300 {
		t.Fatalf("unexpected second entry: %+v", second)
	}
	// counter resumes after the highest id (5), not the count (2)
	e, _ := l.Add(Draft{Date: "2024-01-03", Kind: "income", Category: "X", Amount: "1"})
	if e.ID != 6 {
		t.Fatalf("expected next id 6, got %d", e.ID)
	}
}

func TestToDocumentTotalsMatchEntries(t *testing.T) {
	l := NewLedger()
	l.Add(Draft{Date: "2024-01-01", Kind: "income", Category: "Tithe", Amount: "50"})
	l.Add(Draft{Date: "2024-01-02", Kind: "expense", Category: "Paint", Amount: "20"})
	doc := l.ToDocument("org", time.Now())
	if doc.Totals.Income.Cents != 5000 || doc.Totals.Expense.Cents != 2000 || doc.Totals.Balance.Cents != 3000 {
		t.Fatalf("unexpected totals: %+v", doc.Totals)
	}
	if doc.Meta.Organization != "org" {
		t.Fatalf("meta not carried: %+v", doc.Meta)
	}
}
