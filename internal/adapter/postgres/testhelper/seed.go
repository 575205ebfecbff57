package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pricewise/pricewise-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting
// test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedVendor creates a vendor with a unique name.
func SeedVendor(t *testing.T, pool *pgxpool.Pool) domain.Vendor {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	vendor := domain.Vendor{
		ID:        uuid.New(),
		Name:      "Test Vendor " + suffix,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO vendors (id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		vendor.ID, vendor.Name, vendor.CreatedAt, vendor.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedVendor: %v", err)
	}

	return vendor
}

// SeedItem creates a catalog item for the given vendor with the given
// pricing. Pass decimal.Zero for cost to seed an unestablished-cost item.
func SeedItem(t *testing.T, pool *pgxpool.Pool, vendorID uuid.UUID, cost, sellEx decimal.Decimal) domain.Item {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	item := domain.Item{
		ID:         uuid.New(),
		Name:       "Test Item " + suffix,
		VendorID:   &vendorID,
		CostExTax:  cost,
		Markup:     decimal.NewFromFloat(1.65),
		SellExTax:  sellEx,
		SellIncTax: sellEx.Mul(decimal.NewFromFloat(1.10)).Round(2),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO items (id, name, vendor_id, cost_ex_tax, markup, sell_ex_tax, sell_inc_tax, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.Name, item.VendorID, item.CostExTax, item.Markup,
		item.SellExTax, item.SellIncTax, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedItem: %v", err)
	}

	return item
}

// SeedInvoice creates a PARSED invoice for the given vendor with one line
// item per name in lines, each priced at unitCost.
func SeedInvoice(t *testing.T, pool *pgxpool.Pool, vendorID uuid.UUID, unitCost decimal.Decimal, lines ...string) domain.Invoice {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	inv := domain.Invoice{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Status:    domain.InvoiceStatusParsed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO invoices (id, vendor_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		inv.ID, inv.VendorID, string(inv.Status), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedInvoice: %v", err)
	}

	for _, name := range lines {
		li := domain.LineItem{
			ID:                     uuid.New(),
			InvoiceID:              inv.ID,
			Name:                   name,
			Quantity:               decimal.NewFromInt(1),
			UnitCostExTax:          unitCost,
			DetectedPackSize:       1,
			EffectiveUnitCostExTax: unitCost,
			Markup:                 decimal.NewFromFloat(1.65),
			SellExTax:              unitCost.Mul(decimal.NewFromFloat(1.65)).Round(2),
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		li.SellIncTax = li.SellExTax

		_, err := pool.Exec(ctx,
			`INSERT INTO invoice_line_items
			   (id, invoice_id, name, quantity, unit_cost_ex_tax, detected_pack_size,
			    effective_unit_cost_ex_tax, markup, sell_ex_tax, sell_inc_tax, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			li.ID, li.InvoiceID, li.Name, li.Quantity, li.UnitCostExTax, li.DetectedPackSize,
			li.EffectiveUnitCostExTax, li.Markup, li.SellExTax, li.SellIncTax, li.CreatedAt, li.UpdatedAt,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedInvoice line: %v", err)
		}
		inv.LineItems = append(inv.LineItems, li)
	}

	return inv
}
