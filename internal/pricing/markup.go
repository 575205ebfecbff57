package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MarkupTable maps product categories to their markup multiplier. The table
// is operator-configured external state; the resolver's contract is total —
// it always returns a usable multiplier and never fails. Category matching
// is case-insensitive.
type MarkupTable struct {
	byCategory map[string]decimal.Decimal
	fallback   decimal.Decimal
}

// NewMarkupTable builds a resolver from a category table and a global
// default. A non-positive default is replaced with 1 so a misconfigured
// table can never zero out a sell price.
func NewMarkupTable(categories map[string]decimal.Decimal, fallback decimal.Decimal) *MarkupTable {
	if !fallback.IsPositive() {
		fallback = decimal.NewFromInt(1)
	}
	t := &MarkupTable{
		byCategory: make(map[string]decimal.Decimal, len(categories)),
		fallback:   fallback,
	}
	for category, markup := range categories {
		if markup.IsPositive() {
			t.byCategory[normalizeCategory(category)] = markup
		}
	}
	return t
}

// Resolve returns the markup multiplier for a category. Unknown or missing
// categories resolve to the global default.
func (t *MarkupTable) Resolve(category *string) decimal.Decimal {
	if category == nil {
		return t.fallback
	}
	if markup, ok := t.byCategory[normalizeCategory(*category)]; ok {
		return markup
	}
	return t.fallback
}

// Default returns the global default multiplier.
func (t *MarkupTable) Default() decimal.Decimal {
	return t.fallback
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
