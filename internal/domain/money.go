package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed-precision monetary value with a currency code. Stored
// amounts always round half-up to two decimal places; arithmetic never
// passes through binary floating point.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney parses a decimal string into Money. Returns ErrInvalidAmount for
// non-numeric input.
func NewMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return Money{amount: d.Round(2), currency: currency}, nil
}

// NewMoneyFromCents builds Money from integer minor units.
func NewMoneyFromCents(cents int64, currency string) Money {
	return Money{amount: decimal.New(cents, -2), currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// MustMoney is NewMoney that panics on malformed input. For literals.
func MustMoney(amount, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) assertSameCurrency(o Money) {
	if m.currency != o.currency {
		panic(fmt.Sprintf("money: currency mismatch %q vs %q", m.currency, o.currency))
	}
}

// Add returns m + o. Panics if currencies differ.
func (m Money) Add(o Money) Money {
	m.assertSameCurrency(o)
	return Money{amount: m.amount.Add(o.amount), currency: m.currency}
}

// Sub returns m - o. Panics if currencies differ.
func (m Money) Sub(o Money) Money {
	m.assertSameCurrency(o)
	return Money{amount: m.amount.Sub(o.amount), currency: m.currency}
}

// MulInt returns m multiplied by an integer quantity.
func (m Money) MulInt(n int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n))), currency: m.currency}
}

// Percent returns rate percent of m, rounded half-up to two decimals. This is
// the single rounding point for percentage-derived stored amounts.
func (m Money) Percent(rate decimal.Decimal) Money {
	v := m.amount.Mul(rate).Div(decimal.NewFromInt(100))
	return Money{amount: v.Round(2), currency: m.currency}
}

// Cmp compares amounts: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int {
	m.assertSameCurrency(o)
	return m.amount.Cmp(o.amount)
}

// LessThan reports whether m < o.
func (m Money) LessThan(o Money) bool { return m.Cmp(o) < 0 }

// Min returns the smaller of m and o.
func (m Money) Min(o Money) Money {
	if o.LessThan(m) {
		return o
	}
	return m
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Equal reports amount and currency equality.
func (m Money) Equal(o Money) bool {
	return m.currency == o.currency && m.amount.Equal(o.amount)
}

// Currency returns the currency code.
func (m Money) Currency() string { return m.currency }

// Amount exposes the underlying decimal for persistence scans.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Cents returns the amount in integer minor units, rounded to two decimals.
func (m Money) Cents() int64 {
	return m.amount.Round(2).Shift(2).IntPart()
}

// StringFixed formats the amount with exactly two decimals.
func (m Money) StringFixed() string { return m.amount.StringFixed(2) }

func (m Money) String() string {
	return m.StringFixed() + " " + m.currency
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON renders the amount as a fixed two-decimal string so clients
// never see binary-float artifacts.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.StringFixed(), Currency: m.currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewMoney(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
