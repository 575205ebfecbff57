package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pricewise/pricewise-backend/internal/domain"
)

// AddLineItem appends a line to a PARSED invoice, recomputing the line's
// derived pricing and the invoice totals.
func (s *Service) AddLineItem(ctx context.Context, invoiceID uuid.UUID, input LineItemInput) (*domain.LineItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var created *domain.LineItem
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.mutableInvoice(txCtx, invoiceID); err != nil {
			return err
		}

		line := domain.LineItem{
			InvoiceID:     invoiceID,
			Name:          input.Name,
			Quantity:      input.Quantity,
			UnitCostExTax: input.UnitCostExTax,
			Category:      input.Category,
			HasTax:        input.HasTax,
			Notes:         input.Notes,
		}
		s.enrichLine(&line, input.Markup)

		var err error
		created, err = s.invoices.AddLineItem(txCtx, &line)
		if err != nil {
			return fmt.Errorf("add line item: %w", err)
		}

		return s.refreshTotals(txCtx, invoiceID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateLineItem rewrites a line of a PARSED invoice from new raw values and
// recomputes the derived pricing and invoice totals.
func (s *Service) UpdateLineItem(ctx context.Context, lineID uuid.UUID, input LineItemInput) (*domain.LineItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.LineItem
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		line, err := s.invoices.GetLineItem(txCtx, lineID)
		if err != nil {
			return fmt.Errorf("load line item: %w", err)
		}
		if _, err := s.mutableInvoice(txCtx, line.InvoiceID); err != nil {
			return err
		}

		line.Name = input.Name
		line.Quantity = input.Quantity
		line.UnitCostExTax = input.UnitCostExTax
		line.Category = input.Category
		line.HasTax = input.HasTax
		if input.Notes != nil {
			line.Notes = input.Notes
		}
		s.enrichLine(line, input.Markup)

		updated, err = s.invoices.UpdateLineItem(txCtx, line)
		if err != nil {
			return fmt.Errorf("update line item: %w", err)
		}

		return s.refreshTotals(txCtx, line.InvoiceID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteLineItem removes a line from a PARSED invoice and recomputes the
// invoice totals.
func (s *Service) DeleteLineItem(ctx context.Context, lineID uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		line, err := s.invoices.GetLineItem(txCtx, lineID)
		if err != nil {
			return fmt.Errorf("load line item: %w", err)
		}
		if _, err := s.mutableInvoice(txCtx, line.InvoiceID); err != nil {
			return err
		}

		if err := s.invoices.DeleteLineItem(txCtx, lineID); err != nil {
			return fmt.Errorf("delete line item: %w", err)
		}

		return s.refreshTotals(txCtx, line.InvoiceID)
	})
}

// mutableInvoice loads an invoice under a row lock and verifies it is still
// PARSED. Mutations against POSTED invoices fail with ErrAlreadyCommitted.
func (s *Service) mutableInvoice(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.invoices.GetForUpdate(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("lock invoice: %w", err)
	}
	if inv.IsPosted() {
		return nil, domain.ErrAlreadyCommitted
	}
	return inv, nil
}

// refreshTotals recomputes and persists an invoice's monetary totals from
// its current line items.
func (s *Service) refreshTotals(ctx context.Context, invoiceID uuid.UUID) error {
	lines, err := s.invoices.ListLineItems(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("list line items: %w", err)
	}

	inv := &domain.Invoice{ID: invoiceID, LineItems: lines}
	inv.RecomputeTotals(s.taxRate)

	if err := s.invoices.UpdateTotals(ctx, inv); err != nil {
		return fmt.Errorf("update totals: %w", err)
	}
	return nil
}
