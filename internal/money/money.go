// Package money holds the rounding and display rules applied to every
// amount before it is persisted or shown.
package money

import (
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes formatted amounts.
const CurrencySymbol = "₹"

// Round2 rounds an amount to 2 decimal places, halves away from zero.
func Round2(x float64) float64 {
	return roundTo(x, 2)
}

// Round3 rounds a quantity to 3 decimal places.
func Round3(x float64) float64 {
	return roundTo(x, 3)
}

// RoundWhole rounds an amount to the nearest whole unit.
func RoundWhole(x float64) float64 {
	return roundTo(x, 0)
}

// roundTo rounds on the shortest decimal form of x, so 2.345 is
// treated as written rather than as its binary approximation.
func roundTo(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Format renders an amount as a display string with the currency symbol
// and exactly two fraction digits, e.g. "₹180.00".
func Format(x float64) string {
	return CurrencySymbol + decimal.NewFromFloat(x).StringFixed(2)
}

// FormatQuantity renders a quantity without trailing zeros, at most three
// fraction digits.
func FormatQuantity(q float64) string {
	return decimal.NewFromFloat(q).Round(3).String()
}
