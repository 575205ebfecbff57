package pricing

import (
	"github.com/shopspring/decimal"
)

// Quote is the consistent pricing tuple derived from one unit cost. All
// monetary fields are rounded to the cent (round half up).
type Quote struct {
	CostExTax  decimal.Decimal
	Markup     decimal.Decimal
	SellExTax  decimal.Decimal
	TaxAmount  decimal.Decimal
	SellIncTax decimal.Decimal

	// EffectiveCostExTax is the per-unit cost after dividing by pack size.
	// Only set when packSize > 1, to make box-to-unit conversions visible
	// to a human reviewer.
	EffectiveCostExTax *decimal.Decimal
}

// EffectiveCost returns the per-unit cost the quote was built from:
// EffectiveCostExTax when pack division happened, CostExTax otherwise.
func (q Quote) EffectiveCost() decimal.Decimal {
	if q.EffectiveCostExTax != nil {
		return *q.EffectiveCostExTax
	}
	return q.CostExTax
}

// Calculate derives the full pricing tuple from a raw unit cost, a markup
// multiplier, a pack size, and a tax rate. Pure: same inputs, same outputs.
//
//	effectiveCost = costExTax / packSize
//	sellExTax     = round2(effectiveCost × markup)
//	taxAmount     = round2(sellExTax × taxRate)
//	sellIncTax    = sellExTax + taxAmount
//
// All arithmetic is exact fixed-point decimal; binary floating point would
// drift at the cent level. A packSize < 1 is treated as 1.
func Calculate(costExTax, markup decimal.Decimal, packSize int, taxRate decimal.Decimal) Quote {
	if packSize < 1 {
		packSize = 1
	}

	effective := costExTax
	if packSize > 1 {
		effective = costExTax.Div(decimal.NewFromInt(int64(packSize))).Round(2)
		// A pack division must never reduce a positive cost to nothing.
		if costExTax.IsPositive() && !effective.IsPositive() {
			effective = costExTax
			packSize = 1
		}
	}

	sellEx := effective.Mul(markup).Round(2)
	tax := sellEx.Mul(taxRate).Round(2)

	q := Quote{
		CostExTax:  costExTax.Round(2),
		Markup:     markup,
		SellExTax:  sellEx,
		TaxAmount:  tax,
		SellIncTax: sellEx.Add(tax),
	}
	if packSize > 1 {
		q.EffectiveCostExTax = &effective
	}
	return q
}

// centTolerance is the largest rounding discrepancy tolerated between
// sellIncTax and sellExTax + taxAmount before the tuple is flagged.
var centTolerance = decimal.New(1, -2)

// Validate checks a quote against the pricing invariants and returns the
// violated ones as human-readable findings. It never fails: a batch caller
// can keep going past one bad line. Used by tests and the anomaly scanner,
// not enforced at calculation time.
func Validate(q Quote) []string {
	var violations []string

	if !q.CostExTax.IsPositive() {
		violations = append(violations, "cost must be positive")
	}
	if !q.Markup.IsPositive() {
		violations = append(violations, "markup must be positive")
	}
	if q.SellExTax.LessThanOrEqual(q.CostExTax) {
		violations = append(violations, "sell price does not exceed cost")
	}
	drift := q.SellIncTax.Sub(q.SellExTax.Add(q.TaxAmount)).Abs()
	if drift.GreaterThan(centTolerance) {
		violations = append(violations, "sell inc tax drifts from sell ex tax plus tax")
	}

	return violations
}
