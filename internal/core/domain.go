package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

type (
	// Kind discriminates ledger entries: income or expense.
	Kind string

	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	// Entry is one ledger line item. ID is unique within a session and
	// stable across renders; it is never reused after deletion.
	Entry struct {
		ID            int64  `json:"id"`
		Date          Date   `json:"date"`
		Event         string `json:"event"`
		Kind          Kind   `json:"kind"`
		Category      string `json:"category"`
		Amount        Money  `json:"amount"`
		Description   string `json:"description"`
		PaymentMethod string `json:"paymentMethod,omitempty"`
		Responsible   string `json:"responsible,omitempty"`
		Note          string `json:"note,omitempty"`
	}

	// Draft is the input record for Add/Update. Amount is the raw decimal
	// string as entered; parsing and rounding happen during validation.
	Draft struct {
		Date          string
		Event         string
		Kind          string
		Category      string
		Amount        string
		Description   string
		PaymentMethod string
		Responsible   string
		Note          string
	}
)

// ErrNotFound is returned by Update/Delete when no entry has the given id.
// Callers treat it as non-fatal.
var ErrNotFound = errors.New("entry not found")

// ValidationError reports the first invalid field of a draft. The ledger is
// left unchanged when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ParseKind maps a raw string onto a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindIncome:
		return KindIncome, true
	case KindExpense:
		return KindExpense, true
	}
	return "", false
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

const dateLayout = "2006-01-02"

// ParseDate parses an ISO 8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// validate checks a draft in the documented order (first failure wins) and
// returns the parsed typed fields on success.
func validate(dr Draft) (Date, Kind, Money, error) {
	if strings.TrimSpace(dr.Date) == "" {
		return Date{}, "", Money{}, invalid("date", "required")
	}
	date, err := ParseDate(dr.Date)
	if err != nil {
		return Date{}, "", Money{}, invalid("date", "must be YYYY-MM-DD")
	}
	kind, ok := ParseKind(dr.Kind)
	if !ok {
		if strings.TrimSpace(dr.Kind) == "" {
			return Date{}, "", Money{}, invalid("kind", "required")
		}
		return Date{}, "", Money{}, invalid("kind", "must be income or expense")
	}
	if strings.TrimSpace(dr.Category) == "" {
		return Date{}, "", Money{}, invalid("category", "required")
	}
	amount, err := ParseAmount(dr.Amount)
	if err != nil {
		return Date{}, "", Money{}, invalid("amount", "must be a number greater than 0")
	}
	return date, kind, amount, nil
}
