// Package money stores amounts as integer counts of a currency's smallest
// unit. Decimal values only appear at the edges (HTTP payloads, assistant
// arguments, rendered documents).
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrTooPrecise      = errors.New("amount has more decimals than the currency allows")
	ErrOverflow        = errors.New("amount out of range")
)

// Amount is a value in minor units (cents, pence, ...).
type Amount int64

// Mul multiplies an amount by an integer quantity. It returns ErrOverflow
// when the product does not fit in an Amount.
func (a Amount) Mul(qty int) (Amount, error) {
	if a == 0 || qty == 0 {
		return 0, nil
	}

	q := Amount(qty)
	p := a * q
	if p/q != a || (a == -1 && q == math.MinInt64) || (q == -1 && a == math.MinInt64) {
		return 0, ErrOverflow
	}

	return p, nil
}

// Add returns a+b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, ErrOverflow
	}

	return s, nil
}

// Scale returns the number of minor-unit digits for an ISO 4217 code.
func Scale(code string) (int, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}

	scale, _ := currency.Standard.Rounding(unit)

	return scale, nil
}

// NormalizeCode upper-cases and validates a currency code.
func NormalizeCode(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if _, err := Scale(c); err != nil {
		return "", err
	}

	return c, nil
}

// FromDecimal converts a major-unit decimal into minor units of code.
func FromDecimal(d decimal.Decimal, code string) (Amount, error) {
	scale, err := Scale(code)
	if err != nil {
		return 0, err
	}

	minor := d.Shift(int32(scale))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s %s", ErrTooPrecise, d.String(), code)
	}

	if !minor.BigInt().IsInt64() {
		return 0, ErrOverflow
	}

	return Amount(minor.IntPart()), nil
}

// Parse reads a decimal string such as "250.00" into minor units of code.
func Parse(s, code string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	return FromDecimal(d, code)
}

// Round converts a decimal from an untyped source (numbers produced by a
// language model) and rounds it to the currency's minor unit.
func Round(d decimal.Decimal, code string) (Amount, error) {
	scale, err := Scale(code)
	if err != nil {
		return 0, err
	}

	return FromDecimal(d.Round(int32(scale)), code)
}

// Decimal returns the major-unit value of a.
func (a Amount) Decimal(code string) decimal.Decimal {
	scale, err := Scale(code)
	if err != nil {
		scale = 2
	}

	return decimal.New(int64(a), -int32(scale))
}

// String renders a plain major-unit string with the currency's fixed digits, e.g. "250.00".
func (a Amount) String(code string) string {
	scale, err := Scale(code)
	if err != nil {
		scale = 2
	}

	return a.Decimal(code).StringFixed(int32(scale))
}

var printer = message.NewPrinter(language.English)

// Format renders a human readable amount with grouping, e.g. "LKR 250,000.00".
func Format(a Amount, code string) string {
	scale, err := Scale(code)
	if err != nil {
		scale = 2
	}

	v := a.Decimal(code).InexactFloat64()

	return code + " " + printer.Sprint(number.Decimal(v, number.Scale(scale)))
}
