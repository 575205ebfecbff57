// Package pricehistory implements the append-only price history ledger
// using PostgreSQL. Rows are inserted, read, and never touched again.
package pricehistory

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pricewise/pricewise-backend/internal/adapter/postgres"
	"github.com/pricewise/pricewise-backend/internal/domain"
)

var historyColumns = []string{
	"id", "item_id", "invoice_id",
	"cost_ex_tax", "markup", "sell_ex_tax", "sell_inc_tax", "created_at",
}

// Repo provides price history persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new price history repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create appends one ledger row capturing an item's pre-change pricing.
// Must be called strictly before the item mutation it records, inside the
// same transaction, so the ledger always reflects a value the item held.
func (r *Repo) Create(ctx context.Context, change domain.PriceChange) (*domain.PriceChange, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("price_history").
		Columns("item_id", "invoice_id",
			"cost_ex_tax", "markup", "sell_ex_tax", "sell_inc_tax").
		Values(change.ItemID, change.InvoiceID,
			change.CostExTax, change.Markup, change.SellExTax, change.SellIncTax).
		Suffix("RETURNING " + strings.Join(historyColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build price history insert: %w", err)
	}

	created, err := scanChange(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "price_change", change.ItemID)
	}
	return created, nil
}

// ListByItem returns an item's price changes, newest first.
func (r *Repo) ListByItem(ctx context.Context, itemID uuid.UUID, limit int) ([]domain.PriceChange, error) {
	if limit <= 0 {
		limit = 100
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(historyColumns...).
		From("price_history").
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build price history list: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()

	var changes []domain.PriceChange
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price change: %w", err)
		}
		changes = append(changes, *c)
	}
	return changes, rows.Err()
}

func scanChange(row pgx.Row) (*domain.PriceChange, error) {
	var c domain.PriceChange
	err := row.Scan(
		&c.ID, &c.ItemID, &c.InvoiceID,
		&c.CostExTax, &c.Markup, &c.SellExTax, &c.SellIncTax, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
