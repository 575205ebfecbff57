package invoice

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pricewise/pricewise-backend/internal/adapter/postgres"
	"github.com/pricewise/pricewise-backend/internal/domain"
)

// AddLineItem inserts one line item and returns the persisted record.
func (r *Repo) AddLineItem(ctx context.Context, li *domain.LineItem) (*domain.LineItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("invoice_line_items").
		Columns("invoice_id", "name", "quantity", "unit_cost_ex_tax",
			"detected_pack_size", "effective_unit_cost_ex_tax", "category",
			"markup", "sell_ex_tax", "sell_inc_tax", "has_tax", "item_id", "notes").
		Values(li.InvoiceID, strings.TrimSpace(li.Name), li.Quantity, li.UnitCostExTax,
			li.DetectedPackSize, li.EffectiveUnitCostExTax, li.Category,
			li.Markup, li.SellExTax, li.SellIncTax, li.HasTax, li.ItemID, li.Notes).
		Suffix("RETURNING " + strings.Join(lineItemColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build line item insert: %w", err)
	}

	created, err := scanLineItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "line_item", li.InvoiceID)
	}
	return created, nil
}

// UpdateLineItem rewrites the mutable fields of a line item from li and
// returns the persisted record.
func (r *Repo) UpdateLineItem(ctx context.Context, li *domain.LineItem) (*domain.LineItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("invoice_line_items").
		Set("name", strings.TrimSpace(li.Name)).
		Set("quantity", li.Quantity).
		Set("unit_cost_ex_tax", li.UnitCostExTax).
		Set("detected_pack_size", li.DetectedPackSize).
		Set("effective_unit_cost_ex_tax", li.EffectiveUnitCostExTax).
		Set("category", li.Category).
		Set("markup", li.Markup).
		Set("sell_ex_tax", li.SellExTax).
		Set("sell_inc_tax", li.SellIncTax).
		Set("has_tax", li.HasTax).
		Set("notes", li.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": li.ID}).
		Suffix("RETURNING " + strings.Join(lineItemColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build line item update: %w", err)
	}

	updated, err := scanLineItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "line_item", li.ID)
	}
	return updated, nil
}

// LinkLineItem records which catalog item a line resolved to at commit time,
// along with the line's accumulated notes.
func (r *Repo) LinkLineItem(ctx context.Context, lineID, itemID uuid.UUID, notes *string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("invoice_line_items").
		Set("item_id", itemID).
		Set("notes", notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": lineID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build line item link: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "line_item", lineID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("line_item %s: %w", lineID, domain.ErrNotFound)
	}
	return nil
}

// DeleteLineItem removes one line item. The caller recomputes the parent
// invoice's totals afterwards.
func (r *Repo) DeleteLineItem(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Delete("invoice_line_items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build line item delete: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "line_item", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("line_item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetLineItem returns one line item.
func (r *Repo) GetLineItem(ctx context.Context, id uuid.UUID) (*domain.LineItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(lineItemColumns...).
		From("invoice_line_items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build line item query: %w", err)
	}

	li, err := scanLineItem(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "line_item", id)
	}
	return li, nil
}

// ListLineItems returns an invoice's line items in insertion order.
func (r *Repo) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.LineItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(lineItemColumns...).
		From("invoice_line_items").
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build line item list: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var lines []domain.LineItem
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		lines = append(lines, *li)
	}
	return lines, rows.Err()
}

func scanLineItem(row pgx.Row) (*domain.LineItem, error) {
	var li domain.LineItem
	err := row.Scan(
		&li.ID, &li.InvoiceID, &li.Name, &li.Quantity, &li.UnitCostExTax,
		&li.DetectedPackSize, &li.EffectiveUnitCostExTax, &li.Category,
		&li.Markup, &li.SellExTax, &li.SellIncTax, &li.HasTax, &li.ItemID, &li.Notes,
		&li.CreatedAt, &li.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &li, nil
}
