package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/pricewise/pricewise-backend/internal/domain"
	"github.com/pricewise/pricewise-backend/internal/service/catalog"
)

type catalogService interface {
	GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	ItemHistory(ctx context.Context, itemID uuid.UUID, limit int) ([]domain.PriceChange, error)
	ScanForCostAnomalies(ctx context.Context, apply bool) (*catalog.ScanResult, error)
}

// CatalogHandler serves the catalog read endpoints and the anomaly scan.
type CatalogHandler struct {
	catalog catalogService
	log     *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog catalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		log:     logger.With("handler", "catalog"),
	}
}

// ListItems handles GET /items?search=&vendorId=&category=&limit=&offset=.
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	filter := domain.ItemFilter{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	if raw := r.URL.Query().Get("search"); raw != "" {
		filter.Search = &raw
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		filter.Category = &raw
	}
	if raw := r.URL.Query().Get("vendorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeBadRequest(w, "invalid vendorId")
			return
		}
		filter.VendorID = &id
	}

	items, err := h.catalog.ListItems(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]itemResponse, len(items))
	for i := range items {
		out[i] = toItemResponse(&items[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// GetItem handles GET /items/{id}.
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.catalog.GetItem(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// ItemHistory handles GET /items/{id}/history?limit=.
func (h *CatalogHandler) ItemHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	changes, err := h.catalog.ItemHistory(r.Context(), id, queryInt(r, "limit"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]priceChangeResponse, len(changes))
	for i := range changes {
		out[i] = toPriceChangeResponse(&changes[i])
	}
	writeJSON(w, http.StatusOK, out)
}

type flaggedItemResponse struct {
	Item   itemResponse `json:"item"`
	Rule   string       `json:"rule"`
	Reason string       `json:"reason"`
}

type scanResponse struct {
	Flagged []flaggedItemResponse `json:"flagged"`
	Fixed   int                   `json:"fixed"`
}

// AnomalyScan handles POST /anomaly-scan?apply=true. Without the apply flag
// the scan is a dry run that only reports.
func (h *CatalogHandler) AnomalyScan(w http.ResponseWriter, r *http.Request) {
	apply := r.URL.Query().Get("apply") == "true"

	result, err := h.catalog.ScanForCostAnomalies(r.Context(), apply)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := scanResponse{
		Flagged: make([]flaggedItemResponse, len(result.Flagged)),
		Fixed:   result.Fixed,
	}
	for i, f := range result.Flagged {
		resp.Flagged[i] = flaggedItemResponse{
			Item:   toItemResponse(&f.Item),
			Rule:   string(f.Rule),
			Reason: f.Reason,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
