package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pricewise/pricewise-backend/internal/domain"
)

// CommitResult reports what one commit did to the catalog.
type CommitResult struct {
	ItemsCreated int
	ItemsUpdated int
	PriceChanges int
	Invoice      *domain.Invoice
}

// Commit walks every line item of a PARSED invoice through the reconciler
// and advances the invoice to POSTED. The whole walk is one serializable
// transaction: the status is re-verified under a row lock inside it, so a
// concurrent commit of the same invoice fails with ErrAlreadyCommitted
// instead of double-posting, and any failure rolls the invoice back to a
// clean PARSED state — partial reconciliation is never left visible.
func (s *Service) Commit(ctx context.Context, invoiceID uuid.UUID) (*CommitResult, error) {
	if invoiceID == uuid.Nil {
		return nil, domain.NewValidationError("invoiceId", "required")
	}

	result := &CommitResult{}

	err := s.tx.RunInSerializableTx(ctx, func(txCtx context.Context) error {
		inv, err := s.invoices.GetForUpdate(txCtx, invoiceID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvoiceNotFound
			}
			return fmt.Errorf("lock invoice: %w", err)
		}

		// Re-checked here, not just before the transaction: both of two
		// racing commits could have read PARSED outside it.
		if inv.IsPosted() {
			return domain.ErrAlreadyCommitted
		}

		lines, err := s.invoices.ListLineItems(txCtx, invoiceID)
		if err != nil {
			return fmt.Errorf("list line items: %w", err)
		}
		if len(lines) == 0 {
			return domain.ErrNoLineItems
		}

		for i := range lines {
			outcome, err := s.reconcileLine(txCtx, inv, &lines[i])
			if err != nil {
				return fmt.Errorf("reconcile line %s: %w", lines[i].ID, err)
			}
			if outcome.created {
				result.ItemsCreated++
			} else {
				result.ItemsUpdated++
			}
			if outcome.priceChanged {
				result.PriceChanges++
			}
		}

		if err := s.invoices.SetStatus(txCtx, invoiceID, domain.InvoiceStatusPosted); err != nil {
			return fmt.Errorf("post invoice: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("reload invoice: %w", err)
	}
	result.Invoice = inv

	s.log.Info("invoice committed",
		slog.String("invoice_id", invoiceID.String()),
		slog.Int("items_created", result.ItemsCreated),
		slog.Int("items_updated", result.ItemsUpdated),
		slog.Int("price_changes", result.PriceChanges),
	)

	return result, nil
}
