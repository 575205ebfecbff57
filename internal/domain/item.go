package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a catalog entry: one sellable unit of stock with its current
// pricing. Items are mutated only by the invoice reconciler and the external
// catalog sync, and are never deleted while line items or price history
// reference them.
//
// Pricing fields hold a soft invariant, monitored but not enforced:
// SellExTax ≈ CostExTax × Markup, and SellIncTax ≈ SellExTax × (1 + taxRate)
// when the item is taxable. The anomaly scanner watches for drift.
type Item struct {
	ID         uuid.UUID
	Name       string
	VendorID   *uuid.UUID
	Category   *string
	CostExTax  decimal.Decimal
	Markup     decimal.Decimal
	SellExTax  decimal.Decimal
	SellIncTax decimal.Decimal
	SKU        *string
	Barcode    *string
	// POSRef is the identifier of the matching record in the external
	// point-of-sale catalog, when the catalog sync has linked one.
	POSRef    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasEstablishedCost reports whether the item's current cost is positive.
// A positive cost is treated as trustworthy (established by a higher-fidelity
// source such as the POS sync) and is not overwritten by invoice-derived
// costs.
func (i *Item) HasEstablishedCost() bool {
	return i.CostExTax.IsPositive()
}

// ItemUpdateParams carries the mutable fields of an item. Nil pointers leave
// the corresponding column untouched.
type ItemUpdateParams struct {
	Name       *string
	VendorID   *uuid.UUID
	Category   *string
	CostExTax  *decimal.Decimal
	Markup     *decimal.Decimal
	SellExTax  *decimal.Decimal
	SellIncTax *decimal.Decimal
	SKU        *string
	Barcode    *string
	POSRef     *string
}

// ItemFilter defines parameters for searching and paginating the catalog.
type ItemFilter struct {
	// Search performs a case-insensitive substring match on name.
	Search *string

	// VendorID restricts results to items associated with one vendor.
	VendorID *uuid.UUID

	// Category restricts results to one category.
	Category *string

	// Limit caps the result set. Zero means the default (50, max 500).
	Limit int

	// Offset skips the first N results.
	Offset int
}
