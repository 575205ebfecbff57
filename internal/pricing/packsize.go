// Package pricing is the pure computational core of the reconciliation
// engine: pack-size detection, price calculation, markup resolution, and the
// anomaly rule set. Nothing in this package touches storage or performs I/O.
package pricing

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// Pack-size detection turns a free-text product description into the number
// of sellable units one invoiced line represents, so a case or box price can
// be converted to a true per-unit cost. It is a best-effort heuristic: the
// rule table is tried in order and the first plausible match wins; no match
// means pack size 1 (no effect).

const (
	// Count-style matches outside [minCountPack, maxCountPack] are treated
	// as implausible (a SKU fragment, a weight, a year) and skipped.
	minCountPack = 2
	maxCountPack = 100
)

type packRuleKind int

const (
	ruleFixed packRuleKind = iota // keyword with a fixed size, e.g. "dozen"
	ruleCount                     // explicit unit count, e.g. "x12"
	ruleMass                      // weight suffix, normalized to kg
	ruleVolume                    // volume suffix, normalized to litres
)

// packRule is one prioritized detection pattern. Rules are evaluated in
// declaration order; scale converts the captured number to the larger unit
// for mass/volume rules.
type packRule struct {
	re    *regexp.Regexp
	kind  packRuleKind
	fixed int
	scale decimal.Decimal
}

var one = decimal.NewFromInt(1)

var packRules = []packRule{
	{re: regexp.MustCompile(`(?i)\bdozen\b`), kind: ruleFixed, fixed: 12},
	{re: regexp.MustCompile(`(?i)\bpack\s+of\s+(\d{1,3})\b`), kind: ruleCount},
	{re: regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:pk|pack)\b`), kind: ruleCount},
	{re: regexp.MustCompile(`(?i)(?:^|[\s(])x\s*(\d{1,3})\b`), kind: ruleCount},
	{re: regexp.MustCompile(`(?i)\b(\d{1,3})\s*x(?:[\s)]|$)`), kind: ruleCount},
	{re: regexp.MustCompile(`/\s*(\d{1,3})\b`), kind: ruleCount},
	{re: regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*kg\b`), kind: ruleMass, scale: one},
	{re: regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*g\b`), kind: ruleMass, scale: decimal.New(1, -3)},
	{re: regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:l|litre|liter)s?\b`), kind: ruleVolume, scale: one},
	{re: regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*ml\b`), kind: ruleVolume, scale: decimal.New(1, -3)},
}

// PackDetection is the outcome of pack-size detection on one description.
type PackDetection struct {
	// Size is the detected pack size, always ≥ 1.
	Size int
	// Match is the text fragment that produced the size; empty when no rule
	// matched and the size fell back to 1.
	Match string
}

// Note renders a human-readable explanation suitable for a line item's
// change log, or "" when detection had no effect.
func (d PackDetection) Note() string {
	if d.Size <= 1 || d.Match == "" {
		return ""
	}
	return fmt.Sprintf("pack size %d detected from %q", d.Size, d.Match)
}

// DetectPack extracts a pack size from a free-text product description.
// Rules are tried in priority order and the first plausible match wins:
// count-style matches must fall in [2,100]; mass/volume matches are
// normalized to kg/l and applied only when the normalized quantity is ≥ 1
// (so "500g" has no effect while "5000g" means a pack of five 1 kg units).
// A description with no plausible match returns size 1.
func DetectPack(text string) PackDetection {
	for _, rule := range packRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		switch rule.kind {
		case ruleFixed:
			return PackDetection{Size: rule.fixed, Match: m[0]}

		case ruleCount:
			n, err := strconv.Atoi(m[1])
			if err != nil || n < minCountPack || n > maxCountPack {
				continue
			}
			return PackDetection{Size: n, Match: m[0]}

		case ruleMass, ruleVolume:
			qty, err := decimal.NewFromString(m[1])
			if err != nil {
				continue
			}
			normalized := qty.Mul(rule.scale)
			if normalized.LessThan(one) {
				continue
			}
			size := int(normalized.IntPart())
			if size < 1 {
				continue
			}
			if size == 1 {
				// A single kg/l is an ordinary unit, not a pack.
				return PackDetection{Size: 1}
			}
			return PackDetection{Size: size, Match: m[0]}
		}
	}

	return PackDetection{Size: 1}
}
