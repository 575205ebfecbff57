// Package invoice implements the invoice lifecycle: creation from extracted
// line items, line editing while PARSED, and the commit transaction that
// reconciles every line into the catalog and advances the invoice to POSTED.
package invoice

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewise/pricewise-backend/internal/domain"
	"github.com/pricewise/pricewise-backend/internal/pricing"
)

type invoiceRepo interface {
	Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error
	UpdateTotals(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddLineItem(ctx context.Context, li *domain.LineItem) (*domain.LineItem, error)
	UpdateLineItem(ctx context.Context, li *domain.LineItem) (*domain.LineItem, error)
	LinkLineItem(ctx context.Context, lineID, itemID uuid.UUID, notes *string) error
	DeleteLineItem(ctx context.Context, id uuid.UUID) error
	GetLineItem(ctx context.Context, id uuid.UUID) (*domain.LineItem, error)
	ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.LineItem, error)
}

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	FindByNameAndVendor(ctx context.Context, name string, vendorID uuid.UUID) (*domain.Item, error)
	FindByName(ctx context.Context, name string) (*domain.Item, error)
	Create(ctx context.Context, it *domain.Item) (*domain.Item, error)
	Update(ctx context.Context, id uuid.UUID, params domain.ItemUpdateParams) (*domain.Item, error)
}

type vendorRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
	GetOrCreateByName(ctx context.Context, name string) (*domain.Vendor, error)
}

type historyRepo interface {
	Create(ctx context.Context, change domain.PriceChange) (*domain.PriceChange, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunInSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides invoice operations.
type Service struct {
	invoices invoiceRepo
	items    itemRepo
	vendors  vendorRepo
	history  historyRepo
	tx       txManager

	markups *pricing.MarkupTable
	taxRate decimal.Decimal

	log *slog.Logger
}

// NewService creates a new invoice service.
func NewService(
	log *slog.Logger,
	invoices invoiceRepo,
	items itemRepo,
	vendors vendorRepo,
	history historyRepo,
	tx txManager,
	markups *pricing.MarkupTable,
	taxRate decimal.Decimal,
) *Service {
	return &Service{
		invoices: invoices,
		items:    items,
		vendors:  vendors,
		history:  history,
		tx:       tx,
		markups:  markups,
		taxRate:  taxRate,
		log:      log.With("service", "invoice"),
	}
}

// lineTaxRate returns the tax rate applied to a line's sell price: the
// configured rate for taxable lines, zero otherwise.
func (s *Service) lineTaxRate(hasTax bool) decimal.Decimal {
	if hasTax {
		return s.taxRate
	}
	return decimal.Zero
}

// enrichLine computes the derived pricing fields of a line item from its raw
// extracted values: pack size from the name, markup from the category (or
// the explicit override), and the full pricing tuple. It also appends the
// pack detection note to the line's change log.
func (s *Service) enrichLine(li *domain.LineItem, markupOverride *decimal.Decimal) {
	det := pricing.DetectPack(li.Name)
	li.DetectedPackSize = det.Size
	if note := det.Note(); note != "" {
		li.AppendNote(note)
	}

	markup := s.markups.Resolve(li.Category)
	if markupOverride != nil && markupOverride.IsPositive() {
		markup = *markupOverride
	}

	quote := pricing.Calculate(li.UnitCostExTax, markup, det.Size, s.lineTaxRate(li.HasTax))
	li.Markup = quote.Markup
	li.EffectiveUnitCostExTax = quote.EffectiveCost()
	li.SellExTax = quote.SellExTax
	li.SellIncTax = quote.SellIncTax
}
