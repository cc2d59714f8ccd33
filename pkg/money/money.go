// Package money provides currency-safe price arithmetic for vendor quotes.
// Amounts are held as shopspring/decimal values while parsing and calculating,
// and rendered through Rhymond/go-money so that every price shown to a user
// uses the same "$1,234.56" layout.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD is the only currency quotes are priced in.
const USD = "USD"

var (
	// ErrInvalidAmount is returned when a price string cannot be read as a number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidPercent is returned for discount percentages outside 0..100.
	ErrInvalidPercent = errors.New("invalid percent")
)

var hundred = decimal.NewFromInt(100)

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a new Money value from cents (minor units) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountCents, currencyCode),
	}
}

// NewFromDecimal creates Money from a decimal.Decimal value, rounding to the
// currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
		currencyCode = USD
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currencyCode)
}

// Amount returns the amount in minor units (cents)
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Display returns a formatted string for display (e.g., "$1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// ParseUSD reads a US-style price ("$1,234.56", "$ 2.45", "0.001", "12") into a
// decimal. The value is not rounded: sub-cent prices are kept so that callers
// can detect them.
func ParseUSD(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return d, nil
}

// FormatUSD renders a decimal amount as "$1,234.56", rounding half away from
// zero to the cent.
func FormatUSD(amount decimal.Decimal) string {
	return NewFromDecimal(amount, USD).Display()
}

// ParsePercent reads "10", "12.5" or "12.5%" into a percentage in 0..100.
func ParsePercent(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPercent, raw)
	}
	if d.IsNegative() || d.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%w: %q out of range", ErrInvalidPercent, raw)
	}
	return d, nil
}

// FormatPercent renders a percentage the way quotes print it ("10%", "12.5%").
func FormatPercent(percent decimal.Decimal) string {
	return percent.String() + "%"
}

// ApplyDiscount returns price * (1 - percent/100), rounded to the cent.
func ApplyDiscount(price, percent decimal.Decimal) decimal.Decimal {
	factor := hundred.Sub(percent).Div(hundred)
	return price.Mul(factor).Round(2)
}

// NetPrice applies an optional discount to an optional price. A nil price
// always yields a nil net price; a nil discount leaves the price unchanged.
func NetPrice(price, percent *decimal.Decimal) *decimal.Decimal {
	if price == nil {
		return nil
	}
	if percent == nil {
		p := *price
		return &p
	}
	net := ApplyDiscount(*price, *percent)
	return &net
}
