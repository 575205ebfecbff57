package invoice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pricewise/pricewise-backend/internal/adapter/postgres/invoice"
	"github.com/pricewise/pricewise-backend/internal/adapter/postgres/testhelper"
	"github.com/pricewise/pricewise-backend/internal/domain"
)

func newRepo(t *testing.T) (*invoice.Repo, *pgxpool.Pool, domain.Vendor) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return invoice.New(pool), pool, testhelper.SeedVendor(t, pool)
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func testLine(t *testing.T, name string, cost string) domain.LineItem {
	t.Helper()
	return domain.LineItem{
		Name:                   name,
		Quantity:               decimal.NewFromInt(1),
		UnitCostExTax:          dec(t, cost),
		DetectedPackSize:       1,
		EffectiveUnitCostExTax: dec(t, cost),
		Markup:                 dec(t, "1.65"),
	}
}

func TestRepo_Create_WithLineItems(t *testing.T) {
	t.Parallel()
	repo, _, vend := newRepo(t)
	ctx := context.Background()

	number := "INV-1001"
	created, err := repo.Create(ctx, &domain.Invoice{
		VendorID:      vend.ID,
		Status:        domain.InvoiceStatusParsed,
		InvoiceNumber: &number,
		SubtotalExTax: dec(t, "7.40"),
		TotalIncTax:   dec(t, "7.40"),
		LineItems: []domain.LineItem{
			testLine(t, "  Bananas  ", "2.50"),
			testLine(t, "Milk 2L", "4.90"),
		},
	})
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected assigned invoice id")
	}
	if len(created.LineItems) != 2 {
		t.Fatalf("len(LineItems) = %d, want 2", len(created.LineItems))
	}
	if created.LineItems[0].Name != "Bananas" {
		t.Errorf("line name = %q, want trimmed %q", created.LineItems[0].Name, "Bananas")
	}
	if created.LineItems[0].InvoiceID != created.ID {
		t.Errorf("line InvoiceID = %s, want %s", created.LineItems[0].InvoiceID, created.ID)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.InvoiceStatusParsed {
		t.Errorf("Status = %s, want PARSED", got.Status)
	}
	if got.InvoiceNumber == nil || *got.InvoiceNumber != number {
		t.Errorf("InvoiceNumber = %v, want %q", got.InvoiceNumber, number)
	}
	if !got.SubtotalExTax.Equal(dec(t, "7.40")) {
		t.Errorf("SubtotalExTax = %s, want 7.40", got.SubtotalExTax)
	}
	if len(got.LineItems) != 2 {
		t.Fatalf("reloaded len(LineItems) = %d, want 2", len(got.LineItems))
	}
}

func TestRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	repo, _, _ := newRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_GetForUpdate_OmitsLineItems(t *testing.T) {
	t.Parallel()
	repo, pool, vend := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedInvoice(t, pool, vend.ID, dec(t, "3.00"), "Bread", "Butter")

	got, err := repo.GetForUpdate(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetForUpdate: %v", err)
	}
	if got.ID != seeded.ID {
		t.Errorf("ID = %s, want %s", got.ID, seeded.ID)
	}
	if len(got.LineItems) != 0 {
		t.Errorf("GetForUpdate attached %d line items, want none", len(got.LineItems))
	}
}

func TestRepo_SetStatus(t *testing.T) {
	t.Parallel()
	repo, pool, vend := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedInvoice(t, pool, vend.ID, dec(t, "3.00"), "Bread")

	if err := repo.SetStatus(ctx, seeded.ID, domain.InvoiceStatusPosted); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	got, err := repo.GetByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.InvoiceStatusPosted {
		t.Errorf("Status = %s, want POSTED", got.Status)
	}

	if err := repo.SetStatus(ctx, uuid.New(), domain.InvoiceStatusPosted); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown invoice, got %v", err)
	}
}

func TestRepo_UpdateTotals(t *testing.T) {
	t.Parallel()
	repo, pool, vend := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedInvoice(t, pool, vend.ID, dec(t, "3.00"), "Bread")

	seeded.SubtotalExTax = dec(t, "12.00")
	seeded.TaxAmount = dec(t, "1.20")
	seeded.TotalIncTax = dec(t, "13.20")
	if err := repo.UpdateTotals(ctx, &seeded); err != nil {
		t.Fatalf("UpdateTotals: %v", err)
	}

	got, err := repo.GetByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.SubtotalExTax.Equal(dec(t, "12.00")) {
		t.Errorf("SubtotalExTax = %s, want 12.00", got.SubtotalExTax)
	}
	if !got.TaxAmount.Equal(dec(t, "1.20")) {
		t.Errorf("TaxAmount = %s, want 1.20", got.TaxAmount)
	}
	if !got.TotalIncTax.Equal(dec(t, "13.20")) {
		t.Errorf("TotalIncTax = %s, want 13.20", got.TotalIncTax)
	}
}

func TestRepo_Delete_CascadesLineItems(t *testing.T) {
	t.Parallel()
	repo, pool, vend := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedInvoice(t, pool, vend.ID, dec(t, "3.00"), "Bread", "Butter")
	lineID := seeded.LineItems[0].ID

	if err := repo.Delete(ctx, seeded.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, seeded.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := repo.GetLineItem(ctx, lineID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected line items to cascade, got %v", err)
	}

	if err := repo.Delete(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown invoice, got %v", err)
	}
}

func TestRepo_List_FiltersAndOrder(t *testing.T) {
	t.Parallel()
	repo, pool, vend := newRepo(t)
	ctx := context.Background()

	first := testhelper.SeedInvoice(t, pool, vend.ID, dec(t, "1.00"), "Bread")
	second := testhelper.SeedInvoice(t, pool, vend.ID, dec(t, "2.00"), "Butter")
	if err := repo.SetStatus(ctx, second.ID, domain.InvoiceStatusPosted); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	all, err := repo.List(ctx, domain.InvoiceFilter{VendorID: &vend.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}
	if all[0].ID != second.ID || all[1].ID != first.ID {
		t.Errorf("expected newest first, got [%s %s]", all[0].ID, all[1].ID)
	}
	if len(all[0].LineItems) != 0 {
		t.Errorf("List attached line items, want none")
	}

	parsed := domain.InvoiceStatusParsed
	filtered, err := repo.List(ctx, domain.InvoiceFilter{VendorID: &vend.ID, Status: &parsed})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != first.ID {
		t.Fatalf("status filter returned %d rows, want only the parsed invoice", len(filtered))
	}
}

func TestRepo_LineItemLifecycle(t *testing.T) {
	t.Parallel()
	repo, pool, vend := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedInvoice(t, pool, vend.ID, dec(t, "3.00"), "Bread")

	line := testLine(t, "Muffins 4pk", "6.00")
	line.InvoiceID = seeded.ID
	line.DetectedPackSize = 4
	line.EffectiveUnitCostExTax = dec(t, "1.50")

	added, err := repo.AddLineItem(ctx, &line)
	if err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}
	if added.DetectedPackSize != 4 {
		t.Errorf("DetectedPackSize = %d, want 4", added.DetectedPackSize)
	}
	if !added.EffectiveUnitCostExTax.Equal(dec(t, "1.50")) {
		t.Errorf("EffectiveUnitCostExTax = %s, want 1.50", added.EffectiveUnitCostExTax)
	}

	added.UnitCostExTax = dec(t, "7.20")
	added.EffectiveUnitCostExTax = dec(t, "1.80")
	updated, err := repo.UpdateLineItem(ctx, added)
	if err != nil {
		t.Fatalf("UpdateLineItem: %v", err)
	}
	if !updated.UnitCostExTax.Equal(dec(t, "7.20")) {
		t.Errorf("UnitCostExTax = %s, want 7.20", updated.UnitCostExTax)
	}

	itemID := testhelper.SeedItem(t, pool, vend.ID, dec(t, "1.80"), dec(t, "2.97")).ID
	notes := "linked at commit"
	if err := repo.LinkLineItem(ctx, updated.ID, itemID, &notes); err != nil {
		t.Fatalf("LinkLineItem: %v", err)
	}
	linked, err := repo.GetLineItem(ctx, updated.ID)
	if err != nil {
		t.Fatalf("GetLineItem: %v", err)
	}
	if linked.ItemID == nil || *linked.ItemID != itemID {
		t.Errorf("ItemID = %v, want %s", linked.ItemID, itemID)
	}
	if linked.Notes == nil || *linked.Notes != notes {
		t.Errorf("Notes = %v, want %q", linked.Notes, notes)
	}

	lines, err := repo.ListLineItems(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("ListLineItems: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[1].ID != updated.ID {
		t.Errorf("expected insertion order, got %s last", lines[len(lines)-1].ID)
	}

	if err := repo.DeleteLineItem(ctx, updated.ID); err != nil {
		t.Fatalf("DeleteLineItem: %v", err)
	}
	if _, err := repo.GetLineItem(ctx, updated.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after line delete, got %v", err)
	}
	if err := repo.DeleteLineItem(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown line, got %v", err)
	}
}
