package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pricewise/pricewise-backend/internal/domain"
)

type vendorService interface {
	GetVendor(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
	EnsureVendor(ctx context.Context, name string) (*domain.Vendor, error)
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	DeleteVendor(ctx context.Context, id uuid.UUID) error
}

// VendorHandler serves the vendor registry endpoints.
type VendorHandler struct {
	vendors vendorService
	log     *slog.Logger
}

// NewVendorHandler creates a VendorHandler.
func NewVendorHandler(vendors vendorService, logger *slog.Logger) *VendorHandler {
	return &VendorHandler{
		vendors: vendors,
		log:     logger.With("handler", "vendor"),
	}
}

type vendorResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ContactEmail *string   `json:"contactEmail,omitempty"`
	ContactPhone *string   `json:"contactPhone,omitempty"`
	PaymentTerms *string   `json:"paymentTerms,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toVendorResponse(v *domain.Vendor) vendorResponse {
	return vendorResponse{
		ID:           v.ID,
		Name:         v.Name,
		ContactEmail: v.ContactEmail,
		ContactPhone: v.ContactPhone,
		PaymentTerms: v.PaymentTerms,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

// List handles GET /vendors.
func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.vendors.ListVendors(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]vendorResponse, len(vendors))
	for i := range vendors {
		out[i] = toVendorResponse(&vendors[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /vendors/{id}.
func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	v, err := h.vendors.GetVendor(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVendorResponse(v))
}

type ensureVendorRequest struct {
	Name string `json:"name"`
}

// Ensure handles POST /vendors: get-or-create by display name.
func (h *VendorHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	var req ensureVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	v, err := h.vendors.EnsureVendor(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVendorResponse(v))
}

// Delete handles DELETE /vendors/{id}.
func (h *VendorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.vendors.DeleteVendor(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
