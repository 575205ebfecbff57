// Package catalog implements read access to the item catalog plus the batch
// cost anomaly scan that quarantines case prices stored as unit costs.
package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pricewise/pricewise-backend/internal/domain"
	"github.com/pricewise/pricewise-backend/internal/pricing"
)

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	ListPriced(ctx context.Context) ([]domain.Item, error)
	ZeroCosts(ctx context.Context, ids []uuid.UUID) (int, error)
}

type historyRepo interface {
	ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]domain.PriceChange, error)
}

// Service provides catalog operations.
type Service struct {
	items      itemRepo
	history    historyRepo
	thresholds pricing.AnomalyThresholds
	log        *slog.Logger
}

// NewService creates a new catalog service.
func NewService(
	log *slog.Logger,
	items itemRepo,
	history historyRepo,
	thresholds pricing.AnomalyThresholds,
) *Service {
	return &Service{
		items:      items,
		history:    history,
		thresholds: thresholds,
		log:        log.With("service", "catalog"),
	}
}

// GetItem returns one catalog item.
func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.items.GetByID(ctx, id)
}

// ListItems returns catalog items matching the filter.
func (s *Service) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	return s.items.List(ctx, filter)
}

// ItemHistory returns an item's price changes, newest first.
func (s *Service) ItemHistory(ctx context.Context, itemID uuid.UUID, limit int) ([]domain.PriceChange, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.history.ListByItem(ctx, itemID, limit)
}
