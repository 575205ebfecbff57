package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a supplier that issues invoices. Vendors are created on first
// reference (an invoice naming an unknown vendor creates it) and are never
// deleted while invoices reference them.
type Vendor struct {
	ID           uuid.UUID
	Name         string
	ContactEmail *string
	ContactPhone *string
	PaymentTerms *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
