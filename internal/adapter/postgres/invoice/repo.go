// Package invoice implements the Invoice repository (invoices plus their
// line items) using PostgreSQL.
package invoice

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

var invoiceColumns = []string{
	"id", "vendor_id", "status", "invoice_number", "invoice_date",
	"subtotal_ex_tax", "tax_amount", "total_inc_tax", "source_document",
	"created_at", "updated_at",
}

var lineItemColumns = []string{
	"id", "invoice_id", "name", "quantity", "unit_cost_ex_tax",
	"detected_pack_size", "effective_unit_cost_ex_tax", "category",
	"markup", "sell_ex_tax", "sell_inc_tax", "has_tax", "item_id", "notes",
	"created_at", "updated_at",
}

// Repo provides invoice persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new invoice repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts an invoice and its line items and returns the persisted
// record with lines attached. Meant to run inside a transaction when line
// items are present.
func (r *Repo) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Insert("invoices").
		Columns("vendor_id", "status", "invoice_number", "invoice_date",
			"subtotal_ex_tax", "tax_amount", "total_inc_tax", "source_document").
		Values(inv.VendorID, inv.Status, inv.InvoiceNumber, inv.InvoiceDate,
			inv.SubtotalExTax, inv.TaxAmount, inv.TotalIncTax, inv.SourceDocument).
		Suffix("RETURNING " + strings.Join(invoiceColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoice insert: %w", err)
	}

	created, err := scanInvoice(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "invoice", inv.VendorID)
	}

	for i := range inv.LineItems {
		inv.LineItems[i].InvoiceID = created.ID
		li, err := r.AddLineItem(ctx, &inv.LineItems[i])
		if err != nil {
			return nil, err
		}
		created.LineItems = append(created.LineItems, *li)
	}

	return created, nil
}

// GetByID returns one invoice with its line items attached.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoice query: %w", err)
	}

	inv, err := scanInvoice(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "invoice", id)
	}

	lines, err := r.ListLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = lines
	return inv, nil
}

// GetForUpdate reads one invoice under a FOR UPDATE row lock, without line
// items. The commit path uses it to re-verify status inside the transaction:
// two concurrent commits of the same invoice serialize on this lock, so only
// the first can still observe PARSED.
func (r *Repo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoice lock query: %w", err)
	}

	inv, err := scanInvoice(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "invoice", id)
	}
	return inv, nil
}

// List returns invoices matching the filter, newest first, without line items.
func (r *Repo) List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	query := postgres.Builder().
		Select(invoiceColumns...).
		From("invoices")

	if filter.VendorID != nil {
		query = query.Where(squirrel.Eq{"vendor_id": *filter.VendorID})
	}
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filter.Status})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	query = query.OrderBy("created_at DESC").Limit(uint64(limit))
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoice list: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// SetStatus advances the invoice status. The caller is responsible for
// verifying the transition is legal (inside a transaction, via GetForUpdate).
func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("invoices").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "invoice", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateTotals writes recomputed monetary totals.
func (r *Repo) UpdateTotals(ctx context.Context, inv *domain.Invoice) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Update("invoices").
		Set("subtotal_ex_tax", inv.SubtotalExTax).
		Set("tax_amount", inv.TaxAmount).
		Set("total_inc_tax", inv.TotalIncTax).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": inv.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build totals update: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "invoice", inv.ID)
	}
	return nil
}

// Delete removes an invoice; line items cascade. The service layer refuses
// to delete posted invoices before calling this.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := postgres.Builder().
		Delete("invoices").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build invoice delete: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "invoice", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.ID, &inv.VendorID, &inv.Status, &inv.InvoiceNumber, &inv.InvoiceDate,
		&inv.SubtotalExTax, &inv.TaxAmount, &inv.TotalIncTax, &inv.SourceDocument,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
