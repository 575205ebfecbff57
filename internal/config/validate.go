package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validate parses the raw decimal fields and checks business rules on the
// loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Pricing.validate(); err != nil {
		return fmt.Errorf("pricing: %w", err)
	}
	if err := c.Anomaly.validate(); err != nil {
		return fmt.Errorf("anomaly: %w", err)
	}
	return nil
}

func (p *PricingConfig) validate() error {
	var err error

	if p.TaxRate, err = decimal.NewFromString(strings.TrimSpace(p.TaxRateRaw)); err != nil {
		return fmt.Errorf("tax_rate: %w", err)
	}
	if p.TaxRate.IsNegative() {
		return fmt.Errorf("tax_rate must be >= 0 (got %s)", p.TaxRate)
	}

	if p.DefaultMarkup, err = decimal.NewFromString(strings.TrimSpace(p.DefaultMarkupRaw)); err != nil {
		return fmt.Errorf("default_markup: %w", err)
	}
	if !p.DefaultMarkup.IsPositive() {
		return fmt.Errorf("default_markup must be > 0 (got %s)", p.DefaultMarkup)
	}

	p.CategoryMarkups, err = ParseCategoryMarkups(p.CategoryMarkupsRaw)
	if err != nil {
		return fmt.Errorf("category_markups: %w", err)
	}

	return nil
}

// ParseCategoryMarkups parses a comma-separated "category:multiplier" list
// (e.g. "Fruit & Veg:1.75,Fridge & Freezer:1.5") into a markup map.
// An empty string returns an empty map.
func ParseCategoryMarkups(raw string) (map[string]decimal.Decimal, error) {
	table := make(map[string]decimal.Decimal)

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return table, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		idx := strings.LastIndex(pair, ":")
		if idx < 0 {
			return nil, fmt.Errorf("entry %q: want category:multiplier", pair)
		}
		category := strings.TrimSpace(pair[:idx])
		if category == "" {
			return nil, fmt.Errorf("entry %q: empty category", pair)
		}
		markup, err := decimal.NewFromString(strings.TrimSpace(pair[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", pair, err)
		}
		if !markup.IsPositive() {
			return nil, fmt.Errorf("entry %q: multiplier must be > 0", pair)
		}
		table[category] = markup
	}

	return table, nil
}

func (a *AnomalyConfig) validate() error {
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"min_margin", a.MinMarginRaw, &a.MinMargin},
		{"thin_margin", a.ThinMarginRaw, &a.ThinMargin},
		{"high_cost", a.HighCostRaw, &a.HighCost},
		{"cost_ceiling", a.CostCeilingRaw, &a.CostCeiling},
		{"case_sell", a.CaseSellRaw, &a.CaseSell},
		{"case_cost", a.CaseCostRaw, &a.CaseCost},
	}

	for _, f := range fields {
		v, err := decimal.NewFromString(strings.TrimSpace(f.raw))
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		if v.IsNegative() {
			return fmt.Errorf("%s must be >= 0 (got %s)", f.name, v)
		}
		*f.dst = v
	}

	return nil
}
