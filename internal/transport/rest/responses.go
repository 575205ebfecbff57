package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewise/pricewise-backend/internal/domain"
)

type invoiceResponse struct {
	ID            uuid.UUID          `json:"id"`
	VendorID      uuid.UUID          `json:"vendorId"`
	Status        string             `json:"status"`
	InvoiceNumber *string            `json:"invoiceNumber,omitempty"`
	InvoiceDate   *time.Time         `json:"invoiceDate,omitempty"`
	SubtotalExTax decimal.Decimal    `json:"subtotalExTax"`
	TaxAmount     decimal.Decimal    `json:"taxAmount"`
	TotalIncTax   decimal.Decimal    `json:"totalIncTax"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	LineItems     []lineItemResponse `json:"lineItems"`
}

func toInvoiceResponse(inv *domain.Invoice) invoiceResponse {
	lines := make([]lineItemResponse, len(inv.LineItems))
	for i := range inv.LineItems {
		lines[i] = toLineItemResponse(&inv.LineItems[i])
	}
	return invoiceResponse{
		ID:            inv.ID,
		VendorID:      inv.VendorID,
		Status:        string(inv.Status),
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		SubtotalExTax: inv.SubtotalExTax,
		TaxAmount:     inv.TaxAmount,
		TotalIncTax:   inv.TotalIncTax,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		LineItems:     lines,
	}
}

type lineItemResponse struct {
	ID                     uuid.UUID       `json:"id"`
	InvoiceID              uuid.UUID       `json:"invoiceId"`
	Name                   string          `json:"name"`
	Quantity               decimal.Decimal `json:"quantity"`
	UnitCostExTax          decimal.Decimal `json:"unitCostExTax"`
	DetectedPackSize       int             `json:"detectedPackSize"`
	EffectiveUnitCostExTax decimal.Decimal `json:"effectiveUnitCostExTax"`
	Category               *string         `json:"category,omitempty"`
	Markup                 decimal.Decimal `json:"markup"`
	SellExTax              decimal.Decimal `json:"sellExTax"`
	SellIncTax             decimal.Decimal `json:"sellIncTax"`
	HasTax                 bool            `json:"hasTax"`
	ItemID                 *uuid.UUID      `json:"itemId,omitempty"`
	Notes                  *string         `json:"notes,omitempty"`
}

func toLineItemResponse(li *domain.LineItem) lineItemResponse {
	return lineItemResponse{
		ID:                     li.ID,
		InvoiceID:              li.InvoiceID,
		Name:                   li.Name,
		Quantity:               li.Quantity,
		UnitCostExTax:          li.UnitCostExTax,
		DetectedPackSize:       li.DetectedPackSize,
		EffectiveUnitCostExTax: li.EffectiveUnitCostExTax,
		Category:               li.Category,
		Markup:                 li.Markup,
		SellExTax:              li.SellExTax,
		SellIncTax:             li.SellIncTax,
		HasTax:                 li.HasTax,
		ItemID:                 li.ItemID,
		Notes:                  li.Notes,
	}
}

type itemResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	VendorID   *uuid.UUID      `json:"vendorId,omitempty"`
	Category   *string         `json:"category,omitempty"`
	CostExTax  decimal.Decimal `json:"costExTax"`
	Markup     decimal.Decimal `json:"markup"`
	SellExTax  decimal.Decimal `json:"sellExTax"`
	SellIncTax decimal.Decimal `json:"sellIncTax"`
	SKU        *string         `json:"sku,omitempty"`
	Barcode    *string         `json:"barcode,omitempty"`
	POSRef     *string         `json:"posRef,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func toItemResponse(it *domain.Item) itemResponse {
	return itemResponse{
		ID:         it.ID,
		Name:       it.Name,
		VendorID:   it.VendorID,
		Category:   it.Category,
		CostExTax:  it.CostExTax,
		Markup:     it.Markup,
		SellExTax:  it.SellExTax,
		SellIncTax: it.SellIncTax,
		SKU:        it.SKU,
		Barcode:    it.Barcode,
		POSRef:     it.POSRef,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
	}
}

type priceChangeResponse struct {
	ID         uuid.UUID       `json:"id"`
	ItemID     uuid.UUID       `json:"itemId"`
	InvoiceID  uuid.UUID       `json:"invoiceId"`
	CostExTax  decimal.Decimal `json:"costExTax"`
	Markup     decimal.Decimal `json:"markup"`
	SellExTax  decimal.Decimal `json:"sellExTax"`
	SellIncTax decimal.Decimal `json:"sellIncTax"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func toPriceChangeResponse(pc *domain.PriceChange) priceChangeResponse {
	return priceChangeResponse{
		ID:         pc.ID,
		ItemID:     pc.ItemID,
		InvoiceID:  pc.InvoiceID,
		CostExTax:  pc.CostExTax,
		Markup:     pc.Markup,
		SellExTax:  pc.SellExTax,
		SellIncTax: pc.SellIncTax,
		CreatedAt:  pc.CreatedAt,
	}
}

// pathUUID extracts a UUID path value; on failure it writes a 400 and
// reports ok=false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeBadRequest(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter, returning zero when absent or
// malformed.
func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
