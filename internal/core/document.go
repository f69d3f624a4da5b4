package core

import (
	"encoding/json"
	"time"
)

type (
	// Document is the shape persisted to the document store: the full
	// unfiltered entry list plus a metadata block and the totals at save
	// time. The store enforces no schema, so reading back goes through
	// the tolerant FromDocument below.
	Document struct {
		Meta    DocumentMeta `json:"meta"`
		Entries []Entry      `json:"entries"`
		Totals  Totals       `json:"totals"`
	}

	DocumentMeta struct {
		Organization string    `json:"organization"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}
)

// ToDocument serializes the full entry list. UpdatedAt is the timestamp of
// the serialize call, regenerated on every save.
func (l *Ledger) ToDocument(organization string, now time.Time) Document {
	return Document{
		Meta: DocumentMeta{
			Organization: organization,
			UpdatedAt:    now.UTC(),
		},
		Entries: l.Entries(),
		Totals:  ComputeTotals(l.entries),
	}
}

// FromDocument rebuilds a ledger from a raw persisted document. This is the
// single tolerant-parse point for the free-form JSON blob the store holds:
//
//   - nil, empty, `null`, `{}`, or a non-array entry list yield an empty
//     ledger, never an error
//   - a jsonbin `{"record": ...}` envelope is unwrapped
//   - missing optional fields default to empty strings
//   - non-numeric amounts coerce to 0; unknown kinds default to income
//   - missing ids are assigned positionally; the next-id counter resumes
//     one past the highest id seen
func FromDocument(raw []byte) *Ledger {
	l := NewLedger()
	if len(raw) == 0 {
		return l
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return l
	}
	// jsonbin wraps the stored payload under "record".
	if rec, ok := doc["record"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(rec, &inner); err == nil && inner != nil {
			doc = inner
		}
	}
	rawEntries, ok := doc["entries"]
	if !ok {
		return l
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawEntries, &items); err != nil {
		return l
	}
	for i, item := range items {
		e := decodeEntry(item, int64(i+1))
		l.entries = append(l.entries, e)
		if e.ID >= l.nextID {
			l.nextID = e.ID + 1
		}
	}
	return l
}

// decodeEntry parses one persisted entry, substituting defaults for
// anything missing or malformed. fallbackID is the positional id used when
// the record carries none.
func decodeEntry(raw json.RawMessage, fallbackID int64) Entry {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Entry{ID: fallbackID, Kind: KindIncome}
	}
	e := Entry{
		ID:            decodeID(fields["id"], fallbackID),
		Event:         decodeString(fields["event"]),
		Category:      decodeString(fields["category"]),
		Description:   decodeString(fields["description"]),
		PaymentMethod: decodeString(fields["paymentMethod"]),
		Responsible:   decodeString(fields["responsible"]),
		Note:          decodeString(fields["note"]),
		Kind:          KindIncome,
	}
	if k, ok := ParseKind(decodeString(fields["kind"])); ok {
		e.Kind = k
	}
	if d, err := ParseDate(decodeString(fields["date"])); err == nil {
		e.Date = d
	}
	e.Amount = decodeAmount(fields["amount"])
	return e
}

func decodeID(raw json.RawMessage, fallback int64) int64 {
	if len(raw) == 0 {
		return fallback
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil || id <= 0 {
		return fallback
	}
	return id
}

func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func decodeAmount(raw json.RawMessage) Money {
	if len(raw) == 0 {
		return Money{}
	}
	var m Money
	// Money.UnmarshalJSON coerces non-numeric values to 0.
	_ = m.UnmarshalJSON(raw)
	return m
}
