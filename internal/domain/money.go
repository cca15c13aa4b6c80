package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency the shop operates in.
const DefaultCurrency = "MXN"

// Money is an immutable currency-tagged decimal amount. All operations
// return a new value; arithmetic between mismatched currencies fails.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney builds a Money value. The amount must not be negative and the
// currency must be a three-letter code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, NewValidationError("currency must be a three-letter code, got %q", currency)
	}
	if amount.IsNegative() {
		return Money{}, NewValidationError("money amount must not be negative, got %s", amount)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses a decimal string into a Money value.
func NewMoneyFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, NewValidationError("invalid money amount %q", amount)
	}
	return NewMoney(d, currency)
}

// ZeroMoney returns the zero amount for the given currency.
func ZeroMoney(currency string) Money {
	return Money{amount: decimal.Zero, currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the three-letter currency code.
func (m Money) Currency() string {
	return m.currency
}

func (m Money) sameCurrency(o Money) error {
	if m.currency != o.currency {
		return NewBusinessRuleError("currency mismatch: %s vs %s", m.currency, o.currency)
	}
	return nil
}

// Add returns m + o. Fails when currencies differ.
func (m Money) Add(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(o.amount), currency: m.currency}, nil
}

// Subtract returns m - o. Fails when currencies differ.
func (m Money) Subtract(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(o.amount), currency: m.currency}, nil
}

// Multiply returns m scaled by the given factor, preserving currency.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Cmp compares two amounts of the same currency: -1 if m < o, 0 if equal,
// +1 if m > o. Fails when currencies differ.
func (m Money) Cmp(o Money) (int, error) {
	if err := m.sameCurrency(o); err != nil {
		return 0, err
	}
	return m.amount.Cmp(o.amount), nil
}

// Equals reports structural equality of amount and currency.
func (m Money) Equals(o Money) bool {
	return m.currency == o.currency && m.amount.Equal(o.amount)
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}
