package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/pricewise/pricewise-backend/internal/pricing"
)

// PricingHandler serves the stateless price calculation endpoint. It never
// touches storage: callers use it to preview a price before committing
// anything.
type PricingHandler struct {
	markups *pricing.MarkupTable
	taxRate decimal.Decimal
	log     *slog.Logger
}

// NewPricingHandler creates a PricingHandler.
func NewPricingHandler(markups *pricing.MarkupTable, taxRate decimal.Decimal, logger *slog.Logger) *PricingHandler {
	return &PricingHandler{
		markups: markups,
		taxRate: taxRate,
		log:     logger.With("handler", "pricing"),
	}
}

type calculateRequest struct {
	// Name, when set, is scanned for a pack-size pattern.
	Name          string           `json:"name,omitempty"`
	CostExTax     decimal.Decimal  `json:"costExTax"`
	Category      *string          `json:"category,omitempty"`
	Markup        *decimal.Decimal `json:"markup,omitempty"`
	// PackSize overrides pack detection when positive.
	PackSize int  `json:"packSize,omitempty"`
	HasTax   bool `json:"hasTax"`
}

type calculateResponse struct {
	CostExTax          decimal.Decimal  `json:"costExTax"`
	EffectiveCostExTax *decimal.Decimal `json:"effectiveCostExTax,omitempty"`
	PackSize           int              `json:"packSize"`
	PackMatch          string           `json:"packMatch,omitempty"`
	Markup             decimal.Decimal  `json:"markup"`
	SellExTax          decimal.Decimal  `json:"sellExTax"`
	TaxAmount          decimal.Decimal  `json:"taxAmount"`
	SellIncTax         decimal.Decimal  `json:"sellIncTax"`
}

// Calculate handles POST /pricing/calculate.
func (h *PricingHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.CostExTax.IsNegative() {
		writeBadRequest(w, "costExTax must not be negative")
		return
	}
	if req.Markup != nil && !req.Markup.IsPositive() {
		writeBadRequest(w, "markup must be positive when set")
		return
	}

	packSize := req.PackSize
	var packMatch string
	if packSize < 1 {
		detection := pricing.DetectPack(req.Name)
		packSize = detection.Size
		packMatch = detection.Match
	}

	markup := h.markups.Resolve(req.Category)
	if req.Markup != nil {
		markup = *req.Markup
	}

	taxRate := decimal.Zero
	if req.HasTax {
		taxRate = h.taxRate
	}

	quote := pricing.Calculate(req.CostExTax, markup, packSize, taxRate)

	writeJSON(w, http.StatusOK, calculateResponse{
		CostExTax:          quote.CostExTax,
		EffectiveCostExTax: quote.EffectiveCostExTax,
		PackSize:           packSize,
		PackMatch:          packMatch,
		Markup:             quote.Markup,
		SellExTax:          quote.SellExTax,
		TaxAmount:          quote.TaxAmount,
		SellIncTax:         quote.SellIncTax,
	})
}
