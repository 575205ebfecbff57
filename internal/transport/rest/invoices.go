package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewise/pricewise-backend/internal/domain"
	invoicesvc "github.com/pricewise/pricewise-backend/internal/service/invoice"
)

type invoiceService interface {
	CreateInvoice(ctx context.Context, input invoicesvc.CreateInvoiceInput) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	Commit(ctx context.Context, invoiceID uuid.UUID) (*invoicesvc.CommitResult, error)
	AddLineItem(ctx context.Context, invoiceID uuid.UUID, input invoicesvc.LineItemInput) (*domain.LineItem, error)
	UpdateLineItem(ctx context.Context, lineID uuid.UUID, input invoicesvc.LineItemInput) (*domain.LineItem, error)
	DeleteLineItem(ctx context.Context, lineID uuid.UUID) error
}

// InvoiceHandler serves the invoice lifecycle endpoints.
type InvoiceHandler struct {
	invoices invoiceService
	log      *slog.Logger
}

// NewInvoiceHandler creates an InvoiceHandler.
func NewInvoiceHandler(invoices invoiceService, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoices: invoices,
		log:      logger.With("handler", "invoice"),
	}
}

type lineItemRequest struct {
	Name          string           `json:"name"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCostExTax decimal.Decimal  `json:"unitCostExTax"`
	Category      *string          `json:"category,omitempty"`
	Markup        *decimal.Decimal `json:"markup,omitempty"`
	HasTax        bool             `json:"hasTax"`
	Notes         *string          `json:"notes,omitempty"`
}

func (req lineItemRequest) toInput() invoicesvc.LineItemInput {
	qty := req.Quantity
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}
	return invoicesvc.LineItemInput{
		Name:          req.Name,
		Quantity:      qty,
		UnitCostExTax: req.UnitCostExTax,
		Category:      req.Category,
		Markup:        req.Markup,
		HasTax:        req.HasTax,
		Notes:         req.Notes,
	}
}

type createInvoiceRequest struct {
	VendorID      *uuid.UUID `json:"vendorId,omitempty"`
	VendorName    *string    `json:"vendorName,omitempty"`
	InvoiceNumber *string    `json:"invoiceNumber,omitempty"`
	InvoiceDate   *time.Time `json:"invoiceDate,omitempty"`
	// SourceDocument carries the raw uploaded document, base64 in JSON.
	SourceDocument []byte            `json:"sourceDocument,omitempty"`
	Lines          []lineItemRequest `json:"lines"`
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	input := invoicesvc.CreateInvoiceInput{
		VendorID:       req.VendorID,
		VendorName:     req.VendorName,
		InvoiceNumber:  req.InvoiceNumber,
		InvoiceDate:    req.InvoiceDate,
		SourceDocument: req.SourceDocument,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, line.toInput())
	}

	inv, err := h.invoices.CreateInvoice(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))
}

// Get handles GET /invoices/{id}.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

// List handles GET /invoices?vendorId=&status=&limit=&offset=.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.InvoiceFilter{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	if raw := r.URL.Query().Get("vendorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeBadRequest(w, "invalid vendorId")
			return
		}
		filter.VendorID = &id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.InvoiceStatus(raw)
		if !status.Valid() {
			writeBadRequest(w, "invalid status")
			return
		}
		filter.Status = &status
	}

	invoices, err := h.invoices.ListInvoices(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]invoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = toInvoiceResponse(&invoices[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /invoices/{id}.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.invoices.DeleteInvoice(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commitResponse struct {
	ItemsCreated int             `json:"itemsCreated"`
	ItemsUpdated int             `json:"itemsUpdated"`
	PriceChanges int             `json:"priceChanges"`
	Invoice      invoiceResponse `json:"invoice"`
}

// Commit handles POST /invoices/{id}/commit.
func (h *InvoiceHandler) Commit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.invoices.Commit(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commitResponse{
		ItemsCreated: result.ItemsCreated,
		ItemsUpdated: result.ItemsUpdated,
		PriceChanges: result.PriceChanges,
		Invoice:      toInvoiceResponse(result.Invoice),
	})
}

// AddLine handles POST /invoices/{id}/lines.
func (h *InvoiceHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req lineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	line, err := h.invoices.AddLineItem(r.Context(), id, req.toInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLineItemResponse(line))
}

// UpdateLine handles PUT /lines/{id}.
func (h *InvoiceHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req lineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	line, err := h.invoices.UpdateLineItem(r.Context(), id, req.toInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLineItemResponse(line))
}

// DeleteLine handles DELETE /lines/{id}.
func (h *InvoiceHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.invoices.DeleteLineItem(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
