package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pricewise/pricewise-backend/internal/domain"
)

// CreateInvoice stores a newly extracted invoice in status PARSED. Each
// line's derived pricing (pack size, markup, sell prices) is computed here
// from the raw extracted values, and the invoice totals are recomputed from
// the lines.
func (s *Service) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	vendor, err := s.resolveVendor(ctx, input)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		VendorID:       vendor.ID,
		Status:         domain.InvoiceStatusParsed,
		InvoiceNumber:  input.InvoiceNumber,
		InvoiceDate:    input.InvoiceDate,
		SourceDocument: input.SourceDocument,
	}

	for _, lineInput := range input.Lines {
		line := domain.LineItem{
			Name:          strings.TrimSpace(lineInput.Name),
			Quantity:      lineInput.Quantity,
			UnitCostExTax: lineInput.UnitCostExTax,
			Category:      lineInput.Category,
			HasTax:        lineInput.HasTax,
			Notes:         lineInput.Notes,
		}
		s.enrichLine(&line, lineInput.Markup)
		inv.LineItems = append(inv.LineItems, line)
	}

	inv.RecomputeTotals(s.taxRate)

	var created *domain.Invoice
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.invoices.Create(txCtx, inv)
		if createErr != nil {
			return fmt.Errorf("create invoice: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice created",
		slog.String("invoice_id", created.ID.String()),
		slog.String("vendor", vendor.Name),
		slog.Int("lines", len(created.LineItems)),
	)

	return created, nil
}

// resolveVendor finds the invoice's vendor by id, or by name with
// create-on-first-reference semantics.
func (s *Service) resolveVendor(ctx context.Context, input CreateInvoiceInput) (*domain.Vendor, error) {
	if input.VendorID != nil {
		v, err := s.vendors.GetByID(ctx, *input.VendorID)
		if err != nil {
			return nil, fmt.Errorf("resolve vendor: %w", err)
		}
		return v, nil
	}

	v, err := s.vendors.GetOrCreateByName(ctx, strings.TrimSpace(*input.VendorName))
	if err != nil {
		return nil, fmt.Errorf("resolve vendor: %w", err)
	}
	return v, nil
}
