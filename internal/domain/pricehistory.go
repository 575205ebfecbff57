package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceChange is one row of the append-only price history ledger: the pricing
// state an item held immediately before an accepted change, tied to the
// invoice that caused the change. Rows are never updated or deleted.
//
// The only write path is "insert history, then update item" — never the
// reverse — so the ledger always records a value the item genuinely held.
type PriceChange struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	InvoiceID uuid.UUID
	// Pre-change values.
	CostExTax  decimal.Decimal
	Markup     decimal.Decimal
	SellExTax  decimal.Decimal
	SellIncTax decimal.Decimal
	CreatedAt  time.Time
}
