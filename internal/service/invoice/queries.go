package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pricewise/pricewise-backend/internal/domain"
)

// GetInvoice returns one invoice with its line items.
func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return inv, nil
}

// ListInvoices returns invoices matching the filter, newest first.
func (s *Service) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	return s.invoices.List(ctx, filter)
}

// DeleteInvoice removes an invoice and its line items. Posted invoices are
// permanent: correcting one requires compensating data, not deletion.
func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.mutableInvoice(txCtx, id); err != nil {
			return err
		}
		if err := s.invoices.Delete(txCtx, id); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		return nil
	})
}
