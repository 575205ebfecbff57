package rest

import (
	"log/slog"
	"net/http"

	"github.com/pricewise/pricewise-backend/internal/transport/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health   *HealthHandler
	Vendors  *VendorHandler
	Invoices *InvoiceHandler
	Catalog  *CatalogHandler
	Pricing  *PricingHandler
}

// NewRouter builds the HTTP routing table and wraps it with the standard
// middleware stack.
func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	mux.HandleFunc("GET /api/v1/vendors", h.Vendors.List)
	mux.HandleFunc("POST /api/v1/vendors", h.Vendors.Ensure)
	mux.HandleFunc("GET /api/v1/vendors/{id}", h.Vendors.Get)
	mux.HandleFunc("DELETE /api/v1/vendors/{id}", h.Vendors.Delete)

	mux.HandleFunc("POST /api/v1/invoices", h.Invoices.Create)
	mux.HandleFunc("GET /api/v1/invoices", h.Invoices.List)
	mux.HandleFunc("GET /api/v1/invoices/{id}", h.Invoices.Get)
	mux.HandleFunc("DELETE /api/v1/invoices/{id}", h.Invoices.Delete)
	mux.HandleFunc("POST /api/v1/invoices/{id}/commit", h.Invoices.Commit)
	mux.HandleFunc("POST /api/v1/invoices/{id}/lines", h.Invoices.AddLine)
	mux.HandleFunc("PUT /api/v1/lines/{id}", h.Invoices.UpdateLine)
	mux.HandleFunc("DELETE /api/v1/lines/{id}", h.Invoices.DeleteLine)

	mux.HandleFunc("GET /api/v1/items", h.Catalog.ListItems)
	mux.HandleFunc("GET /api/v1/items/{id}", h.Catalog.GetItem)
	mux.HandleFunc("GET /api/v1/items/{id}/history", h.Catalog.ItemHistory)
	mux.HandleFunc("POST /api/v1/anomaly-scan", h.Catalog.AnomalyScan)

	mux.HandleFunc("POST /api/v1/pricing/calculate", h.Pricing.Calculate)

	return middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)(mux)
}
