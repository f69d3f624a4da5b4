// Package core owns the in-memory ledger for a session: entry validation,
// filtered views, totals, and the persisted document shape.
//
// This file handles monetary amounts. Amounts are stored as integer cents;
// every conversion from a decimal input rounds half away from zero to two
// fractional digits, immediately, so repeated save/load cycles are stable.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount in cents.
type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to Money. It accepts both dot
// (12.34) and comma (12,34) separators, rounds half away from zero on the
// third decimal place, and rejects zero or negative amounts.
//
// Examples:
//
//	ParseAmount("12.34")   -> 1234 cents
//	ParseAmount("12,34")   -> 1234 cents
//	ParseAmount("100.005") -> 10001 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, invalid("amount", "required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, invalid("amount", "not a number")
	}
	m := roundToCents(d)
	if m.Cents <= 0 {
		return Money{}, invalid("amount", "must be greater than 0")
	}
	return m, nil
}

// MoneyFromFloat converts a float64 amount (e.g. a JSON number from a
// persisted document) to Money with the same rounding rule.
func MoneyFromFloat(f float64) Money {
	return roundToCents(decimal.NewFromFloat(f))
}

// roundToCents applies the single rounding policy of this package:
// half away from zero, two fractional digits.
func roundToCents(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Add returns the exact sum; cents arithmetic cannot drift.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the exact difference.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Float64 returns the decimal value for display or serialization.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with exactly two fractional digits.
func (m Money) String() string {
	neg := m.Cents < 0
	c := m.Cents
	if neg {
		c = -c
	}
	s := strconv.FormatInt(c/100, 10) + "." + pad2(c%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// MarshalJSON emits the amount as a plain JSON number with two decimals,
// matching the persisted document shape.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings; anything else is zero.
// Tolerance here keeps round-tripping of persisted documents lossless.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		m.Cents = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		m.Cents = 0
		return nil
	}
	*m = roundToCents(d)
	return nil
}
