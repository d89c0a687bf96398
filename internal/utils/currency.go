package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidAmount is returned by ParseAmount when the input is not a number
// or does not fit an invoice amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Bounds on what ParseAmount accepts. MaxAmountCents is the largest value the
// invoices.amount INTEGER column holds.
const (
	MaxAmountCents    = math.MaxInt32
	maxAmountLen      = 32
	maxAmountExponent = 20
)

var (
	usd       = currency.USD
	usdPrint  = message.NewPrinter(language.AmericanEnglish)
	hundred   = decimal.NewFromInt(100)
	maxCents  = decimal.NewFromInt(MaxAmountCents)
	usdSymbol = "$"
)

// FormatCurrency renders an amount in cents as a localized USD string,
// e.g. 123456 -> "$1,234.56" and -500 -> "-$5.00".
func FormatCurrency(cents int64) string {
	scale, _ := currency.Standard.Rounding(usd)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	units := decimal.NewFromInt(cents).Div(hundred).InexactFloat64()
	return sign + usdSymbol + usdPrint.Sprintf(fmt.Sprintf("%%.%df", scale), units)
}

// ParseAmount parses a decimal amount as typed into a form ("250.30",
// " 12 ", "1e2") and returns it in cents, rounded half away from zero.
// Inputs longer than 32 bytes, exponents beyond +/-20 and results whose
// magnitude exceeds MaxAmountCents are rejected with ErrInvalidAmount.
func ParseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxAmountLen {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Rounding materializes 10^|exp|; keep it small.
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// CentsToUnits converts cents back to the decimal currency value.
func CentsToUnits(cents int64) float64 {
	return decimal.NewFromInt(cents).Div(hundred).InexactFloat64()
}
