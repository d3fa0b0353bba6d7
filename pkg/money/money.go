// Package money parses invoice amounts into exact decimals and formats totals
// in ISO-4217 currencies using the Fowler Money pattern.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MXN is the vendor's invoicing currency (ISO-4217).
const MXN = "MXN"

// ErrEmptyAmount is returned when there are no digits to parse.
var ErrEmptyAmount = errors.New("empty amount")

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units (cents) and a currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// NewFromDecimal creates Money from a decimal, rounding to the currency's
// minor unit. Unknown currency codes fall back to two fraction digits.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	fraction := 2
	if currency := money.GetCurrency(currencyCode); currency != nil {
		fraction = currency.Fraction
	}

	multiplier := decimal.New(1, int32(fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currencyCode)
}

// ParseDecimal parses an amount such as "1,234.56" into an exact decimal.
// Commas are thousands separators and are dropped; surrounding whitespace is
// ignored. Anything else, currency symbols included, is an error.
func ParseDecimal(amount string) (decimal.Decimal, error) {
	amount = strings.ReplaceAll(strings.TrimSpace(amount), ",", "")
	if amount == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d, nil
}

// Amount returns the amount in minor units (cents).
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Display returns a formatted string for display (e.g., "$1,234.56").
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// MarshalJSON renders the amount in minor units alongside its display form.
func (m *Money) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(map[string]interface{}{
		"amount":   m.Amount(),
		"currency": m.Currency(),
		"display":  m.Display(),
	})
}
