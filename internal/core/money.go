// Package core provides money parsing and handling utilities.
//
// Amounts are parsed with arbitrary precision and stored as integer cents, so
// every sum the dashboard shows is exact.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// maxCents caps a single amount at about 11 billion rupees. Millions of
// such amounts still sum inside int64, and Add saturates past that.
const maxCents = int64(1) << 40

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a transaction amount to cents with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// non-numeric text and values that round to zero are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234, nil
//	ParseAmount("12,345") -> 1235, nil
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	cents, err := parseCents(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Cents: cents}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// ParseBudget converts a budget input to cents. A blank input means no
// budget and yields zero.
func ParseBudget(s string) (Money, error) {
	if strings.TrimSpace(s) == "" {
		return Money{}, nil
	}
	cents, err := parseCents(s)
	if err != nil {
		return Money{}, ErrInvalidBudget
	}
	return Money{Cents: cents}, nil
}

func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	d = d.Round(2).Mul(hundred)
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, ErrInvalidAmount
	}
	return d.IntPart(), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns the sum of both amounts, clamped to the int64 range.
func (m Money) Add(o Money) Money {
	sum := m.Cents + o.Cents
	switch {
	case o.Cents > 0 && sum < m.Cents:
		sum = math.MaxInt64
	case o.Cents < 0 && sum > m.Cents:
		sum = math.MinInt64
	}
	return Money{Cents: sum}
}

// Sub returns m minus o, which may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// String renders the amount with two decimals, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
