package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewise/pricewise-backend/internal/domain"
)

// CreateInvoiceInput describes a new invoice as produced by extraction or
// manual entry. Exactly one of VendorID / VendorName must identify the
// vendor; naming an unknown vendor creates it.
type CreateInvoiceInput struct {
	VendorID       *uuid.UUID
	VendorName     *string
	InvoiceNumber  *string
	InvoiceDate    *time.Time
	SourceDocument []byte
	Lines          []LineItemInput
}

// Validate checks structural validity of the input.
func (in CreateInvoiceInput) Validate() error {
	var errs []domain.FieldError

	hasID := in.VendorID != nil && *in.VendorID != uuid.Nil
	hasName := in.VendorName != nil && strings.TrimSpace(*in.VendorName) != ""
	if !hasID && !hasName {
		errs = append(errs, domain.FieldError{Field: "vendor", Message: "vendor id or name is required"})
	}

	for i, line := range in.Lines {
		errs = append(errs, line.fieldErrors(i)...)
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// LineItemInput describes one raw line as extracted from the document. The
// engine derives pack size, markup, and sell prices; it never trusts the
// document for those.
type LineItemInput struct {
	Name          string
	Quantity      decimal.Decimal
	UnitCostExTax decimal.Decimal
	Category      *string
	// Markup overrides the category-resolved multiplier when positive.
	Markup *decimal.Decimal
	HasTax bool
	Notes  *string
}

// Validate checks structural validity of one line input.
func (in LineItemInput) Validate() error {
	if errs := in.fieldErrors(0); len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func (in LineItemInput) fieldErrors(index int) []domain.FieldError {
	var errs []domain.FieldError

	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, domain.FieldError{Field: lineField(index, "name"), Message: "required"})
	}
	if !in.Quantity.IsPositive() {
		errs = append(errs, domain.FieldError{Field: lineField(index, "quantity"), Message: "must be positive"})
	}
	if in.UnitCostExTax.IsNegative() {
		errs = append(errs, domain.FieldError{Field: lineField(index, "unitCostExTax"), Message: "must not be negative"})
	}
	if in.Markup != nil && !in.Markup.IsPositive() {
		errs = append(errs, domain.FieldError{Field: lineField(index, "markup"), Message: "must be positive when set"})
	}

	return errs
}

func lineField(index int, name string) string {
	return fmt.Sprintf("lines[%d].%s", index, name)
}
