// Package core holds the meal-bill domain: consumers, bills, money and
// date handling, period resolution and the summary folds.
package core

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount in integer cents.
type Money struct {
	Cents int64
}

var maxAmount = decimal.New(1<<62/100, 0)

// ParseAmount converts a decimal string to Money, rounding half-up to cents.
// Both dot and comma are accepted as the decimal separator. Only strictly
// positive amounts are valid.
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,345") -> 1235
//	ParseAmount("abc")    -> validation error
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, Validationf("amount is required")
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return Money{}, Validationf("amount must be a number")
	}
	return FromDecimal(d)
}

// FromDecimal rounds d to cents and validates it as a bill amount.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if !d.IsPositive() {
		return Money{}, Validationf("amount must be greater than 0")
	}
	if d.GreaterThan(maxAmount) {
		return Money{}, Validationf("amount too large")
	}
	m := Money{Cents: d.Round(2).Shift(2).IntPart()}
	if m.Cents <= 0 {
		return Money{}, Validationf("amount must be greater than 0")
	}
	return m, nil
}

// ParseAmountJSON accepts a JSON number or a JSON string holding a number.
func ParseAmountJSON(raw json.RawMessage) (Money, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return Money{}, Validationf("amount is required")
	}
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return Money{}, Validationf("amount must be a number")
		}
		return ParseAmount(unq)
	}
	return ParseAmount(s)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return Validationf("amount must be greater than 0")
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Decimal() decimal.Decimal { return decimal.New(m.Cents, -2) }

// String renders the amount with exactly two decimals.
func (m Money) String() string { return m.Decimal().StringFixed(2) }

// MarshalJSON encodes Money as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = unq
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.Cents = d.Round(2).Shift(2).IntPart()
	return nil
}
