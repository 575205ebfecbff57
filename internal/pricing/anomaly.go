package pricing

import (
	"github.com/shopspring/decimal"
)

// The anomaly rule set flags catalog costs that look like case or box prices
// mistakenly stored as unit costs. Rules are evaluated in order and the
// first match wins; items with non-positive cost or sell price are skipped
// entirely. Evaluation is pure and per-item, so one bad item can never fail
// a whole scan.

// AnomalyRule identifies which rule flagged an item.
type AnomalyRule string

const (
	RuleCostExceedsSell   AnomalyRule = "COST_EXCEEDS_SELL"
	RuleLowMargin         AnomalyRule = "LOW_MARGIN"
	RuleHighCostThin      AnomalyRule = "HIGH_COST_THIN_MARGIN"
	RuleCostCeiling       AnomalyRule = "COST_CEILING"
	RuleCasePricePair     AnomalyRule = "CASE_PRICE_PAIR"
)

// AnomalyThresholds are the tunable boundaries of the rule set. They are
// injected explicitly (never read from ambient state) so scans are
// deterministic across configurations.
type AnomalyThresholds struct {
	// MinMargin is the margin fraction below which a price looks wrong.
	MinMargin decimal.Decimal
	// ThinMargin is the margin fraction considered thin for high-cost items.
	ThinMargin decimal.Decimal
	// HighCost is the cost above which a thin margin becomes suspicious.
	HighCost decimal.Decimal
	// CostCeiling is the absolute ceiling for an ordinary retail unit cost.
	CostCeiling decimal.Decimal
	// CaseSell and CaseCost together suggest both prices are case prices.
	CaseSell decimal.Decimal
	CaseCost decimal.Decimal
}

// DefaultAnomalyThresholds returns the standard rule boundaries.
func DefaultAnomalyThresholds() AnomalyThresholds {
	return AnomalyThresholds{
		MinMargin:   decimal.New(10, -2), // 10%
		ThinMargin:  decimal.New(50, -2), // 50%
		HighCost:    decimal.NewFromInt(15),
		CostCeiling: decimal.NewFromInt(20),
		CaseSell:    decimal.NewFromInt(50),
		CaseCost:    decimal.NewFromInt(10),
	}
}

// Finding names the rule that flagged an item and a reviewer-facing reason.
type Finding struct {
	Rule   AnomalyRule
	Reason string
}

// EvaluateCost runs the ordered rule set against one item's current pricing.
// Returns the first matching finding, or ok=false when the pricing looks
// plausible (or the item is skipped for non-positive cost/sell).
func EvaluateCost(cost, sellEx, sellInc decimal.Decimal, th AnomalyThresholds) (Finding, bool) {
	if !cost.IsPositive() || !sellEx.IsPositive() {
		return Finding{}, false
	}

	if cost.GreaterThanOrEqual(sellEx) {
		return Finding{Rule: RuleCostExceedsSell, Reason: "cost exceeds sell price"}, true
	}

	margin := sellEx.Sub(cost).Div(sellEx)
	if margin.LessThan(th.MinMargin) {
		return Finding{Rule: RuleLowMargin, Reason: "margin suspiciously low"}, true
	}

	// The absolute ceiling is checked before the thin-margin heuristic so a
	// blatant case price is reported as such rather than as a margin issue.
	if cost.GreaterThan(th.CostCeiling) {
		return Finding{Rule: RuleCostCeiling, Reason: "cost exceeds plausible per-unit ceiling"}, true
	}

	if cost.GreaterThan(th.HighCost) && margin.LessThan(th.ThinMargin) {
		return Finding{Rule: RuleHighCostThin, Reason: "high cost with thin margin"}, true
	}

	if sellInc.GreaterThan(th.CaseSell) && cost.GreaterThan(th.CaseCost) {
		return Finding{Rule: RuleCasePricePair, Reason: "both sell and cost look like case prices"}, true
	}

	return Finding{}, false
}
