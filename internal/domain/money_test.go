package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount, currency string) Money {
	t.Helper()
	m, err := NewMoneyFromString(amount, currency)
	require.NoError(t, err)
	return m
}

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		wantKind ErrorKind
	}{
		{name: "valid", amount: "10.50", currency: "MXN"},
		{name: "zero is allowed", amount: "0", currency: "MXN"},
		{name: "lowercase currency is normalized", amount: "1", currency: "mxn"},
		{name: "negative amount", amount: "-0.01", currency: "MXN", wantKind: KindValidation},
		{name: "currency too short", amount: "1", currency: "MX", wantKind: KindValidation},
		{name: "currency too long", amount: "1", currency: "PESO", wantKind: KindValidation},
		{name: "unparseable amount", amount: "ten", currency: "MXN", wantKind: KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.amount, tt.currency)
			if tt.wantKind != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "MXN", m.Currency())
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	mxn := mustMoney(t, "10", "MXN")
	usd := mustMoney(t, "10", "USD")

	_, err := mxn.Add(usd)
	assert.Equal(t, KindBusinessRule, KindOf(err))

	_, err = mxn.Subtract(usd)
	assert.Equal(t, KindBusinessRule, KindOf(err))

	_, err = mxn.Cmp(usd)
	assert.Equal(t, KindBusinessRule, KindOf(err))
}

func TestMoneyMultiplyPreservesCurrency(t *testing.T) {
	m := mustMoney(t, "19.99", "MXN")
	doubled := m.Multiply(decimal.NewFromInt(2))
	assert.Equal(t, "MXN", doubled.Currency())
	assert.True(t, doubled.Equals(mustMoney(t, "39.98", "MXN")))
}

func TestMoneyOperationsDoNotMutate(t *testing.T) {
	a := mustMoney(t, "100", "MXN")
	b := mustMoney(t, "25", "MXN")

	_, err := a.Add(b)
	require.NoError(t, err)
	_ = a.Multiply(decimal.NewFromInt(3))

	assert.True(t, a.Equals(mustMoney(t, "100", "MXN")))
}

func TestProperty_MoneyAddSubtractRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a.Add(b).Subtract(b) equals a for equal currencies", prop.ForAll(
		func(a, b int64) bool {
			left, err := NewMoney(decimal.New(a, -2), "MXN")
			if err != nil {
				return true
			}
			right, err := NewMoney(decimal.New(b, -2), "MXN")
			if err != nil {
				return true
			}
			sum, err := left.Add(right)
			if err != nil {
				t.Logf("FAIL: Add returned error: %v", err)
				return false
			}
			back, err := sum.Subtract(right)
			if err != nil {
				t.Logf("FAIL: Subtract returned error: %v", err)
				return false
			}
			return back.Equals(left)
		},
		gen.Int64Range(0, 1_000_000_000),
		gen.Int64Range(0, 1_000_000_000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
