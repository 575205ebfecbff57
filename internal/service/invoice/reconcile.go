package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewise/pricewise-backend/internal/domain"
)

// costChangeTolerance is the smallest cost delta treated as a genuine price
// change worth a ledger row.
var costChangeTolerance = decimal.New(1, -2)

type reconcileOutcome struct {
	itemID       uuid.UUID
	created      bool
	priceChanged bool
}

// reconcileLine matches one line item to a catalog item and applies the
// cost-overwrite policy. Matching is tiered, first success wins:
//
//  1. exact name match within the invoice's vendor,
//  2. exact name match ignoring vendor,
//  3. no match — a new item is created from the line's derived pricing.
//
// A matched item with a positive current cost keeps it: that cost is assumed
// to come from a higher-fidelity source, so only non-pricing fields are
// refreshed and the line is annotated for the reviewer. Otherwise the line's
// effective unit cost becomes authoritative, and when that moves the cost by
// more than a cent, a price history row capturing the pre-update state is
// inserted strictly before the item is mutated. Items are never deleted here.
func (s *Service) reconcileLine(ctx context.Context, inv *domain.Invoice, line *domain.LineItem) (reconcileOutcome, error) {
	match, err := s.matchItem(ctx, line.Name, inv.VendorID)
	if err != nil {
		return reconcileOutcome{}, err
	}

	if match == nil {
		created, err := s.items.Create(ctx, &domain.Item{
			Name:       line.Name,
			VendorID:   &inv.VendorID,
			Category:   line.Category,
			CostExTax:  line.EffectiveUnitCostExTax,
			Markup:     line.Markup,
			SellExTax:  line.SellExTax,
			SellIncTax: line.SellIncTax,
		})
		if err != nil {
			return reconcileOutcome{}, fmt.Errorf("create item: %w", err)
		}
		if err := s.invoices.LinkLineItem(ctx, line.ID, created.ID, line.Notes); err != nil {
			return reconcileOutcome{}, err
		}
		return reconcileOutcome{itemID: created.ID, created: true}, nil
	}

	params := domain.ItemUpdateParams{}
	if line.Category != nil {
		params.Category = line.Category
	}
	if match.VendorID == nil {
		params.VendorID = &inv.VendorID
	}

	priceChanged := false
	if match.HasEstablishedCost() {
		// Trustworthy cost in place: refresh non-pricing fields only.
		line.AppendNote(fmt.Sprintf(
			"existing cost %s preserved; invoice cost %s not applied",
			match.CostExTax.StringFixed(2), line.EffectiveUnitCostExTax.StringFixed(2)))
	} else {
		newCost := line.EffectiveUnitCostExTax
		if newCost.Sub(match.CostExTax).Abs().GreaterThan(costChangeTolerance) {
			// Ledger first, mutation second. A crash between the two leaves
			// an extra history row, never a lost price change.
			if _, err := s.history.Create(ctx, domain.PriceChange{
				ItemID:     match.ID,
				InvoiceID:  inv.ID,
				CostExTax:  match.CostExTax,
				Markup:     match.Markup,
				SellExTax:  match.SellExTax,
				SellIncTax: match.SellIncTax,
			}); err != nil {
				return reconcileOutcome{}, fmt.Errorf("record price change: %w", err)
			}
			priceChanged = true
		}
		params.CostExTax = &newCost
		params.Markup = &line.Markup
		params.SellExTax = &line.SellExTax
		params.SellIncTax = &line.SellIncTax
	}

	if _, err := s.items.Update(ctx, match.ID, params); err != nil {
		return reconcileOutcome{}, fmt.Errorf("update item: %w", err)
	}
	if err := s.invoices.LinkLineItem(ctx, line.ID, match.ID, line.Notes); err != nil {
		return reconcileOutcome{}, err
	}

	return reconcileOutcome{itemID: match.ID, priceChanged: priceChanged}, nil
}

// matchItem runs the tiered match strategies in order. A nil item with nil
// error means no match (create).
func (s *Service) matchItem(ctx context.Context, name string, vendorID uuid.UUID) (*domain.Item, error) {
	it, err := s.items.FindByNameAndVendor(ctx, name, vendorID)
	if err == nil {
		return it, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("match by vendor and name: %w", err)
	}

	it, err = s.items.FindByName(ctx, name)
	if err == nil {
		return it, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("match by name: %w", err)
	}

	return nil, nil
}
