// Package item implements the catalog Item repository using PostgreSQL.
// Items are created and updated here but never deleted: line items and the
// price history ledger keep referencing them for good.
package item

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pricewise/pricewise-backend/internal/adapter/postgres"
	"github.com/pricewise/pricewise-backend/internal/domain"
)

var itemColumns = []string{
	"id", "name", "vendor_id", "category",
	"cost_ex_tax", "markup", "sell_ex_tax", "sell_inc_tax",
	"sku", "barcode", "pos_ref", "created_at", "updated_at",
}

// Repo provides catalog item persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new item repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns one catalog item.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(itemColumns...).
		From("items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item query: %w", err)
	}

	it, err := scanItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "item", id)
	}
	return it, nil
}

// FindByNameAndVendor returns the item with an exact (case-insensitive) name
// match associated with the given vendor, or domain.ErrNotFound.
func (r *Repo) FindByNameAndVendor(ctx context.Context, name string, vendorID uuid.UUID) (*domain.Item, error) {
	return r.findOne(ctx, squirrel.And{
		squirrel.Expr("lower(name) = lower(?)", strings.TrimSpace(name)),
		squirrel.Eq{"vendor_id": vendorID},
	}, name)
}

// FindByName returns the oldest item with an exact (case-insensitive) name
// match regardless of vendor, or domain.ErrNotFound.
func (r *Repo) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	return r.findOne(ctx, squirrel.Expr("lower(name) = lower(?)", strings.TrimSpace(name)), name)
}

func (r *Repo) findOne(ctx context.Context, where squirrel.Sqlizer, key string) (*domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(itemColumns...).
		From("items").
		Where(where).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item query: %w", err)
	}

	it, err := scanItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "item", key)
	}
	return it, nil
}

// Create inserts a new catalog item and returns the persisted record.
func (r *Repo) Create(ctx context.Context, it *domain.Item) (*domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("items").
		Columns("name", "vendor_id", "category",
			"cost_ex_tax", "markup", "sell_ex_tax", "sell_inc_tax",
			"sku", "barcode", "pos_ref").
		Values(strings.TrimSpace(it.Name), it.VendorID, it.Category,
			it.CostExTax, it.Markup, it.SellExTax, it.SellIncTax,
			it.SKU, it.Barcode, it.POSRef).
		Suffix("RETURNING " + strings.Join(itemColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item insert: %w", err)
	}

	created, err := scanItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "item", it.Name)
	}
	return created, nil
}

// Update applies the non-nil fields of params to an item and returns the
// updated record. An empty params set is a no-op read.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params domain.ItemUpdateParams) (*domain.Item, error) {
	update := postgres.Builder().Update("items")
	touched := false

	set := func(column string, v any) {
		update = update.Set(column, v)
		touched = true
	}

	if params.Name != nil {
		set("name", strings.TrimSpace(*params.Name))
	}
	if params.VendorID != nil {
		set("vendor_id", *params.VendorID)
	}
	if params.Category != nil {
		set("category", *params.Category)
	}
	if params.CostExTax != nil {
		set("cost_ex_tax", *params.CostExTax)
	}
	if params.Markup != nil {
		set("markup", *params.Markup)
	}
	if params.SellExTax != nil {
		set("sell_ex_tax", *params.SellExTax)
	}
	if params.SellIncTax != nil {
		set("sell_inc_tax", *params.SellIncTax)
	}
	if params.SKU != nil {
		set("sku", *params.SKU)
	}
	if params.Barcode != nil {
		set("barcode", *params.Barcode)
	}
	if params.POSRef != nil {
		set("pos_ref", *params.POSRef)
	}

	if !touched {
		return r.GetByID(ctx, id)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := update.
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(itemColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item update: %w", err)
	}

	updated, err := scanItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "item", id)
	}
	return updated, nil
}

// List returns catalog items matching the filter, ordered by name.
func (r *Repo) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	query := postgres.Builder().
		Select(itemColumns...).
		From("items")

	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		query = query.Where("name ILIKE ?", "%"+strings.TrimSpace(*filter.Search)+"%")
	}
	if filter.VendorID != nil {
		query = query.Where(squirrel.Eq{"vendor_id": *filter.VendorID})
	}
	if filter.Category != nil {
		query = query.Where("lower(category) = lower(?)", *filter.Category)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	query = query.OrderBy("name ASC").Limit(uint64(limit))
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	return r.list(ctx, query)
}

// ListPriced returns every item with a positive cost and sell price, ordered
// by cost descending. This is the anomaly scanner's candidate set; the rule
// evaluation itself is pure and happens in the service layer.
func (r *Repo) ListPriced(ctx context.Context) ([]domain.Item, error) {
	query := postgres.Builder().
		Select(itemColumns...).
		From("items").
		Where("cost_ex_tax > 0 AND sell_ex_tax > 0").
		OrderBy("cost_ex_tax DESC")

	return r.list(ctx, query)
}

// ZeroCosts clears cost and markup for the given items in one batch update,
// forcing the cost to be re-established from a trustworthy source. Returns
// the number of rows updated.
func (r *Repo) ZeroCosts(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("items").
		Set("cost_ex_tax", decimal.Zero).
		Set("markup", decimal.Zero).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build zero costs update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("zero item costs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repo) list(ctx context.Context, query squirrel.SelectBuilder) ([]domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item list: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var it domain.Item
	err := row.Scan(
		&it.ID, &it.Name, &it.VendorID, &it.Category,
		&it.CostExTax, &it.Markup, &it.SellExTax, &it.SellIncTax,
		&it.SKU, &it.Barcode, &it.POSRef, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
