package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pricewise/pricewise-backend/internal/domain"
	"github.com/pricewise/pricewise-backend/internal/pricing"
)

// FlaggedItem is one catalog item caught by the anomaly rule set.
type FlaggedItem struct {
	Item   domain.Item
	Rule   pricing.AnomalyRule
	Reason string
}

// ScanResult is the outcome of one anomaly scan.
type ScanResult struct {
	Flagged []FlaggedItem
	// Fixed is the number of items whose cost and markup were zeroed.
	// Always 0 on a dry run.
	Fixed int
}

// ScanForCostAnomalies sweeps the whole catalog for costs that look like
// case or box prices stored as unit costs. The default dry run only reports,
// sorted by cost descending. Apply mode additionally zeroes cost and markup
// for every flagged item in one batch update, forcing the cost to be
// re-established from a trustworthy source.
//
// Rule evaluation is pure and per-item, so one odd row can never fail the
// pass. The apply step deliberately runs outside the read's transaction: a
// flag gone stale by write time self-corrects on the next scan. No price
// history is written — a zeroed bad cost is a correction, not a price move.
func (s *Service) ScanForCostAnomalies(ctx context.Context, apply bool) (*ScanResult, error) {
	items, err := s.items.ListPriced(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scan candidates: %w", err)
	}

	result := &ScanResult{}
	var flaggedIDs []uuid.UUID

	// Candidates arrive ordered by cost descending, so the flagged set is too.
	for _, it := range items {
		finding, flagged := pricing.EvaluateCost(it.CostExTax, it.SellExTax, it.SellIncTax, s.thresholds)
		if !flagged {
			continue
		}
		result.Flagged = append(result.Flagged, FlaggedItem{
			Item:   it,
			Rule:   finding.Rule,
			Reason: finding.Reason,
		})
		flaggedIDs = append(flaggedIDs, it.ID)
	}

	if apply && len(flaggedIDs) > 0 {
		fixed, err := s.items.ZeroCosts(ctx, flaggedIDs)
		if err != nil {
			return nil, fmt.Errorf("zero flagged costs: %w", err)
		}
		result.Fixed = fixed
	}

	s.log.Info("anomaly scan finished",
		slog.Int("candidates", len(items)),
		slog.Int("flagged", len(result.Flagged)),
		slog.Int("fixed", result.Fixed),
		slog.Bool("apply", apply),
	)

	return result, nil
}
