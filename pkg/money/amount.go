package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyAmount is returned when no amount was supplied
	ErrEmptyAmount = errors.New("amount is required")
	// ErrInvalidAmount is returned when the amount is not a decimal number
	ErrInvalidAmount = errors.New("invalid amount format")
)

// ParseAmount parses a decimal amount such as "100", "35.50" or "0.001".
// A comma is accepted as the decimal separator ("35,50").
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return d, nil
}

// Format renders an amount in the given ISO 4217 currency, e.g. "$1,234.50".
// Amounts are rounded half away from zero to the currency's minor unit.
// Unknown currencies fall back to "<amount> <code>" with two decimals.
func Format(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}

	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}
