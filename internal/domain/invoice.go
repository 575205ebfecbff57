package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	// InvoiceStatusParsed means the invoice has been extracted but its line
	// items have not yet been reconciled into the catalog. Mutable.
	InvoiceStatusParsed InvoiceStatus = "PARSED"

	// InvoiceStatusPosted means the invoice has been committed. Terminal:
	// there is no rollback transition — correcting a posted invoice requires
	// new compensating data, not a status change.
	InvoiceStatusPosted InvoiceStatus = "POSTED"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusParsed || s == InvoiceStatusPosted
}

// Invoice is one vendor invoice. Created by extraction in status PARSED;
// transitions once, irreversibly, to POSTED when committed. Deletable only
// while PARSED.
type Invoice struct {
	ID            uuid.UUID
	VendorID      uuid.UUID
	Status        InvoiceStatus
	InvoiceNumber *string
	InvoiceDate   *time.Time
	SubtotalExTax decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalIncTax   decimal.Decimal
	// SourceDocument is the raw uploaded document (PDF/image bytes). Opaque
	// here; only the extraction collaborator interprets it.
	SourceDocument []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time

	LineItems []LineItem
}

// IsPosted reports whether the invoice has been committed.
func (inv *Invoice) IsPosted() bool {
	return inv.Status == InvoiceStatusPosted
}

// RecomputeTotals recalculates the invoice monetary totals from its line
// items. Each line contributes quantity × effective unit cost ex tax, and
// tax on the line's sell price is not part of the invoice total — the tax
// amount here is the vendor-charged tax on taxable lines.
func (inv *Invoice) RecomputeTotals(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, li := range inv.LineItems {
		lineTotal := li.UnitCostExTax.Mul(li.Quantity)
		subtotal = subtotal.Add(lineTotal)
		if li.HasTax {
			tax = tax.Add(lineTotal.Mul(taxRate))
		}
	}
	inv.SubtotalExTax = subtotal.Round(2)
	inv.TaxAmount = tax.Round(2)
	inv.TotalIncTax = subtotal.Add(tax).Round(2)
}

// InvoiceFilter defines parameters for listing invoices.
type InvoiceFilter struct {
	VendorID *uuid.UUID
	Status   *InvoiceStatus
	Limit    int
	Offset   int
}

// LineItem is one line of an invoice as extracted from the source document,
// plus the pricing fields this engine derives from it. Mutable until the
// parent invoice is POSTED.
type LineItem struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	// Name is the free-text product description as printed on the invoice.
	Name     string
	Quantity decimal.Decimal
	// UnitCostExTax is the raw per-line unit cost as printed — possibly a
	// case or box price.
	UnitCostExTax decimal.Decimal
	// DetectedPackSize is the multiplier extracted from the name (1 when no
	// pack pattern matched).
	DetectedPackSize int
	// EffectiveUnitCostExTax is UnitCostExTax divided by DetectedPackSize:
	// the true per-unit cost.
	EffectiveUnitCostExTax decimal.Decimal
	Category               *string
	Markup                 decimal.Decimal
	SellExTax              decimal.Decimal
	SellIncTax             decimal.Decimal
	HasTax                 bool
	// ItemID links the line to the catalog item it resolved to at commit
	// time. Nil until the invoice is committed.
	ItemID *uuid.UUID
	// Notes accumulates a human-readable change log for the line (pack-size
	// detection, preserved costs, manual edits).
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppendNote adds a line to the item's human-readable change log.
func (li *LineItem) AppendNote(note string) {
	if note == "" {
		return
	}
	if li.Notes == nil || *li.Notes == "" {
		li.Notes = &note
		return
	}
	combined := *li.Notes + "\n" + note
	li.Notes = &combined
}
