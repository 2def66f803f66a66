// Package billing computes invoice line totals, invoice summaries and
// outstanding balances. All money leaving this package is rounded to two
// decimal places.
package billing

import (
	"go-print-erp/internal/apperr"
	"go-print-erp/internal/money"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// LineInput is one line item as requested by the client.
type LineInput struct {
	Quantity      float64
	Rate          float64
	DiscountType  DiscountType
	DiscountValue float64
	BaseCost      float64
}

// LineResult holds the derived values of a line item.
type LineResult struct {
	Quantity float64
	Subtotal float64
	// DiscountAmount is the discount actually applied, never more than Subtotal.
	DiscountAmount float64
	Total          float64
	Profit         float64
}

// Validate reports every out-of-range field at once.
func (in LineInput) Validate() error {
	fields := apperr.FieldErrors{}
	if in.Quantity <= 0 {
		fields.Add("quantity", "quantity must be greater than 0")
	}
	if in.Rate < 0 {
		fields.Add("rate", "rate must be at least 0")
	}
	if in.BaseCost < 0 {
		fields.Add("baseCost", "baseCost must be at least 0")
	}
	if in.DiscountValue < 0 {
		fields.Add("discountValue", "discountValue must be at least 0")
	}
	switch in.DiscountType {
	case DiscountPercentage:
		if in.DiscountValue > 100 {
			fields.Add("discountValue", "percentage discount cannot exceed 100")
		}
	case DiscountFixed:
	default:
		fields.Add("discountType", "discountType must be one of [percentage fixed]")
	}
	return fields.Err()
}

// CalculateLine derives the total and profit of one line item. An
// over-generous discount clamps the total at zero instead of failing.
func CalculateLine(in LineInput) LineResult {
	qty := decimal.NewFromFloat(money.Round3(in.Quantity))
	rate := decimal.NewFromFloat(in.Rate)
	subtotal := qty.Mul(rate)

	var discount decimal.Decimal
	if in.DiscountType == DiscountPercentage {
		discount = subtotal.Mul(decimal.NewFromFloat(in.DiscountValue)).Div(decimal.NewFromInt(100))
	} else {
		discount = decimal.NewFromFloat(in.DiscountValue)
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	total := decimal.Max(decimal.Zero, subtotal.Sub(discount)).Round(2)
	cost := qty.Mul(decimal.NewFromFloat(in.BaseCost))
	profit := total.Sub(cost).Round(2)

	return LineResult{
		Quantity:       qty.InexactFloat64(),
		Subtotal:       subtotal.Round(2).InexactFloat64(),
		DiscountAmount: discount.Round(2).InexactFloat64(),
		Total:          total.InexactFloat64(),
		Profit:         profit.InexactFloat64(),
	}
}

// Summary is the invoice-level rollup. It is always rebuilt from the
// line items and never taken from the client.
type Summary struct {
	Subtotal      float64
	TotalDiscount float64
	GrandTotal    float64
	RoundOffTotal bool
	TotalProfit   float64
}

// Summarize folds the computed line items into an invoice summary.
// grandTotal is subtotal minus totalDiscount, optionally rounded to a
// whole unit.
func Summarize(lines []LineResult, roundOff bool) Summary {
	subtotal := decimal.Zero
	discount := decimal.Zero
	profit := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.Subtotal))
		discount = discount.Add(decimal.NewFromFloat(l.DiscountAmount))
		profit = profit.Add(decimal.NewFromFloat(l.Profit))
	}

	grand := subtotal.Sub(discount).Round(2)
	if roundOff {
		grand = grand.Round(0)
	}

	return Summary{
		Subtotal:      subtotal.Round(2).InexactFloat64(),
		TotalDiscount: discount.Round(2).InexactFloat64(),
		GrandTotal:    grand.InexactFloat64(),
		RoundOffTotal: roundOff,
		TotalProfit:   profit.Round(2).InexactFloat64(),
	}
}

// DueAmount returns what is still owed on an invoice. paid must lie
// within [0, grandTotal].
func DueAmount(grandTotal, paid float64) (float64, error) {
	g := decimal.NewFromFloat(grandTotal).Round(2)
	p := decimal.NewFromFloat(paid).Round(2)
	if p.IsNegative() {
		return 0, apperr.Field("paidAmount", "paidAmount cannot be negative")
	}
	if p.GreaterThan(g) {
		return 0, apperr.Field("paidAmount", "paidAmount cannot exceed grandTotal "+money.Format(grandTotal))
	}
	return decimal.Max(decimal.Zero, g.Sub(p)).InexactFloat64(), nil
}
