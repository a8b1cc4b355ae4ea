// Package core holds the value types shared by every layer: money, the
// expense record, the filter window and the aggregation engine.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a signed currency amount in cents. Calculations stay on cents;
// floating point appears only at display and averaging boundaries.
type Money struct {
	Cents int64
}

var (
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrEmptyOwner rejects any store operation without an identity to
	// scope it to.
	ErrEmptyOwner = errors.New("owner is required")
)

// ParseMoney converts a decimal string to Money with half-up rounding on
// the third decimal place. Both dot (12.34) and comma (12,34) separators
// are accepted. Negative and zero amounts are valid at this layer; the
// remote store is the arbiter of any stricter policy.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("-5")     -> -500 cents
//	ParseMoney("12.346") -> 1235 cents (rounds up)
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}

	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// Float returns the amount in currency units as a float64, for display
// and for averages. Use cents for anything that must stay exact.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// String formats the amount as a plain decimal, e.g. "12.34" or "-0.05".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s.%02d", sign, strconv.FormatInt(cents/100, 10), cents%100)
}
