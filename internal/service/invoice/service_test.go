package invoice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewise/pricewise-backend/internal/domain"
	"github.com/pricewise/pricewise-backend/internal/pricing"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockInvoiceRepo struct {
	CreateFunc         func(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetForUpdateFunc   func(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	ListFunc           func(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error)
	SetStatusFunc      func(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error
	UpdateTotalsFunc   func(ctx context.Context, inv *domain.Invoice) error
	DeleteFunc         func(ctx context.Context, id uuid.UUID) error
	AddLineItemFunc    func(ctx context.Context, li *domain.LineItem) (*domain.LineItem, error)
	UpdateLineItemFunc func(ctx context.Context, li *domain.LineItem) (*domain.LineItem, error)
	LinkLineItemFunc   func(ctx context.Context, lineID, itemID uuid.UUID, notes *string) error
	DeleteLineItemFunc func(ctx context.Context, id uuid.UUID) error
	GetLineItemFunc    func(ctx context.Context, id uuid.UUID) (*domain.LineItem, error)
	ListLineItemsFunc  func(ctx context.Context, invoiceID uuid.UUID) ([]domain.LineItem, error)
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, inv)
	}
	inv.ID = uuid.New()
	return inv, nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockInvoiceRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockInvoiceRepo) List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockInvoiceRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockInvoiceRepo) UpdateTotals(ctx context.Context, inv *domain.Invoice) error {
	if m.UpdateTotalsFunc != nil {
		return m.UpdateTotalsFunc(ctx, inv)
	}
	return nil
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockInvoiceRepo) AddLineItem(ctx context.Context, li *domain.LineItem) (*domain.LineItem, error) {
	if m.AddLineItemFunc != nil {
		return m.AddLineItemFunc(ctx, li)
	}
	li.ID = uuid.New()
	return li, nil
}

func (m *mockInvoiceRepo) UpdateLineItem(ctx context.Context, li *domain.LineItem) (*domain.LineItem, error) {
	if m.UpdateLineItemFunc != nil {
		return m.UpdateLineItemFunc(ctx, li)
	}
	return li, nil
}

func (m *mockInvoiceRepo) LinkLineItem(ctx context.Context, lineID, itemID uuid.UUID, notes *string) error {
	if m.LinkLineItemFunc != nil {
		return m.LinkLineItemFunc(ctx, lineID, itemID, notes)
	}
	return nil
}

func (m *mockInvoiceRepo) DeleteLineItem(ctx context.Context, id uuid.UUID) error {
	if m.DeleteLineItemFunc != nil {
		return m.DeleteLineItemFunc(ctx, id)
	}
	return nil
}

func (m *mockInvoiceRepo) GetLineItem(ctx context.Context, id uuid.UUID) (*domain.LineItem, error) {
	if m.GetLineItemFunc != nil {
		return m.GetLineItemFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockInvoiceRepo) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.LineItem, error) {
	if m.ListLineItemsFunc != nil {
		return m.ListLineItemsFunc(ctx, invoiceID)
	}
	return nil, nil
}

type mockItemRepo struct {
	GetByIDFunc             func(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	FindByNameAndVendorFunc func(ctx context.Context, name string, vendorID uuid.UUID) (*domain.Item, error)
	FindByNameFunc          func(ctx context.Context, name string) (*domain.Item, error)
	CreateFunc              func(ctx context.Context, it *domain.Item) (*domain.Item, error)
	UpdateFunc              func(ctx context.Context, id uuid.UUID, params domain.ItemUpdateParams) (*domain.Item, error)
}

func (m *mockItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockItemRepo) FindByNameAndVendor(ctx context.Context, name string, vendorID uuid.UUID) (*domain.Item, error) {
	if m.FindByNameAndVendorFunc != nil {
		return m.FindByNameAndVendorFunc(ctx, name, vendorID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockItemRepo) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	if m.FindByNameFunc != nil {
		return m.FindByNameFunc(ctx, name)
	}
	return nil, domain.ErrNotFound
}

func (m *mockItemRepo) Create(ctx context.Context, it *domain.Item) (*domain.Item, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, it)
	}
	it.ID = uuid.New()
	return it, nil
}

func (m *mockItemRepo) Update(ctx context.Context, id uuid.UUID, params domain.ItemUpdateParams) (*domain.Item, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return &domain.Item{ID: id}, nil
}

type mockVendorRepo struct {
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
	GetOrCreateByNameFunc func(ctx context.Context, name string) (*domain.Vendor, error)
}

func (m *mockVendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockVendorRepo) GetOrCreateByName(ctx context.Context, name string) (*domain.Vendor, error) {
	if m.GetOrCreateByNameFunc != nil {
		return m.GetOrCreateByNameFunc(ctx, name)
	}
	return &domain.Vendor{ID: uuid.New(), Name: name}, nil
}

type mockHistoryRepo struct {
	CreateFunc func(ctx context.Context, change domain.PriceChange) (*domain.PriceChange, error)
}

func (m *mockHistoryRepo) Create(ctx context.Context, change domain.PriceChange) (*domain.PriceChange, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, change)
	}
	change.ID = uuid.New()
	return &change, nil
}

type mockTxManager struct {
	RunInTxFunc             func(ctx context.Context, fn func(ctx context.Context) error) error
	RunInSerializableTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

func (m *mockTxManager) RunInSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInSerializableTxFunc != nil {
		return m.RunInSerializableTxFunc(ctx, fn)
	}
	return fn(ctx)
}

// ===========================================================================
// Helpers
// ===========================================================================

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type testDeps struct {
	invoices *mockInvoiceRepo
	items    *mockItemRepo
	vendors  *mockVendorRepo
	history  *mockHistoryRepo
	tx       *mockTxManager
}

func newTestService() (*Service, *testDeps) {
	deps := &testDeps{
		invoices: &mockInvoiceRepo{},
		items:    &mockItemRepo{},
		vendors:  &mockVendorRepo{},
		history:  &mockHistoryRepo{},
		tx:       &mockTxManager{},
	}
	markups := pricing.NewMarkupTable(map[string]decimal.Decimal{
		"Fruit & Veg": dec("1.75"),
	}, dec("1.65"))
	svc := NewService(
		slog.Default(),
		deps.invoices,
		deps.items,
		deps.vendors,
		deps.history,
		deps.tx,
		markups,
		dec("0.10"),
	)
	return svc, deps
}

func ptrString(s string) *string { return &s }

func parsedInvoice(id, vendorID uuid.UUID) *domain.Invoice {
	return &domain.Invoice{ID: id, VendorID: vendorID, Status: domain.InvoiceStatusParsed}
}

func caseLine(invoiceID uuid.UUID) domain.LineItem {
	return domain.LineItem{
		ID:                     uuid.New(),
		InvoiceID:              invoiceID,
		Name:                   "Coke 24 x 375ml Cans",
		Quantity:               dec("1"),
		UnitCostExTax:          dec("45.60"),
		DetectedPackSize:       24,
		EffectiveUnitCostExTax: dec("1.90"),
		Markup:                 dec("1.65"),
		SellExTax:              dec("3.14"),
		SellIncTax:             dec("3.45"),
		HasTax:                 true,
	}
}

// ===========================================================================
// 1. CreateInvoice Tests
// ===========================================================================

func TestService_CreateInvoice_DerivesLinePricing(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	var stored *domain.Invoice
	deps.invoices.CreateFunc = func(_ context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
		inv.ID = uuid.New()
		stored = inv
		return inv, nil
	}

	result, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{
		VendorName: ptrString("Acme Beverages"),
		Lines: []LineItemInput{{
			Name:          "Coke 24 x 375ml Cans",
			Quantity:      dec("2"),
			UnitCostExTax: dec("45.60"),
		}},
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.InvoiceStatusParsed, result.Status)

	line := stored.LineItems[0]
	assert.Equal(t, 24, line.DetectedPackSize)
	assert.True(t, dec("1.90").Equal(line.EffectiveUnitCostExTax), "effective cost: %s", line.EffectiveUnitCostExTax)
	assert.True(t, dec("1.65").Equal(line.Markup))
	assert.True(t, dec("3.14").Equal(line.SellExTax), "sell ex tax: %s", line.SellExTax)
	require.NotNil(t, line.Notes)
	assert.Contains(t, *line.Notes, "pack size 24")

	// Invoice totals come from the raw line cost, not the sell prices.
	assert.True(t, dec("91.20").Equal(stored.SubtotalExTax), "subtotal: %s", stored.SubtotalExTax)
	assert.True(t, stored.TaxAmount.IsZero())
}

func TestService_CreateInvoice_MarkupOverride(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	var stored *domain.Invoice
	deps.invoices.CreateFunc = func(_ context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
		inv.ID = uuid.New()
		stored = inv
		return inv, nil
	}

	override := dec("2.00")
	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{
		VendorName: ptrString("Acme"),
		Lines: []LineItemInput{{
			Name:          "Bananas",
			Quantity:      dec("1"),
			UnitCostExTax: dec("3.00"),
			Category:      ptrString("Fruit & Veg"),
			Markup:        &override,
		}},
	})
	require.NoError(t, err)

	line := stored.LineItems[0]
	assert.True(t, dec("2.00").Equal(line.Markup), "override beats the category table")
	assert.True(t, dec("6.00").Equal(line.SellExTax))
}

func TestService_CreateInvoice_VendorRequired(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{
		Lines: []LineItemInput{{Name: "Bananas", Quantity: dec("1"), UnitCostExTax: dec("1.00")}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_CreateInvoice_UnknownVendorCreatedByName(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	var askedName string
	deps.vendors.GetOrCreateByNameFunc = func(_ context.Context, name string) (*domain.Vendor, error) {
		askedName = name
		return &domain.Vendor{ID: uuid.New(), Name: name}, nil
	}

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceInput{
		VendorName: ptrString("  New Supplier  "),
		Lines:      []LineItemInput{{Name: "Bananas", Quantity: dec("1"), UnitCostExTax: dec("1.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "New Supplier", askedName)
}

// ===========================================================================
// 2. Commit Tests
// ===========================================================================

func TestService_Commit_CreatesNewItem(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	vendorID := uuid.New()
	inv := parsedInvoice(invoiceID, vendorID)
	line := caseLine(invoiceID)

	deps.invoices.GetForUpdateFunc = func(_ context.Context, id uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}
	deps.invoices.ListLineItemsFunc = func(_ context.Context, _ uuid.UUID) ([]domain.LineItem, error) {
		return []domain.LineItem{line}, nil
	}

	var createdItem *domain.Item
	deps.items.CreateFunc = func(_ context.Context, it *domain.Item) (*domain.Item, error) {
		it.ID = uuid.New()
		createdItem = it
		return it, nil
	}

	var linkedItemID uuid.UUID
	deps.invoices.LinkLineItemFunc = func(_ context.Context, lineID, itemID uuid.UUID, _ *string) error {
		assert.Equal(t, line.ID, lineID)
		linkedItemID = itemID
		return nil
	}

	var postedStatus domain.InvoiceStatus
	deps.invoices.SetStatusFunc = func(_ context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
		postedStatus = status
		inv.Status = status
		return nil
	}
	deps.invoices.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}

	result, err := svc.Commit(context.Background(), invoiceID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ItemsCreated)
	assert.Equal(t, 0, result.ItemsUpdated)
	assert.Equal(t, 0, result.PriceChanges)
	assert.Equal(t, domain.InvoiceStatusPosted, postedStatus)

	// The item is priced from the line's derived values, per unit.
	require.NotNil(t, createdItem)
	assert.True(t, dec("1.90").Equal(createdItem.CostExTax))
	assert.True(t, dec("3.14").Equal(createdItem.SellExTax))
	require.NotNil(t, createdItem.VendorID)
	assert.Equal(t, vendorID, *createdItem.VendorID)
	assert.Equal(t, createdItem.ID, linkedItemID)
}

func TestService_Commit_ZeroCostItemAdoptsInvoiceCost(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	inv := parsedInvoice(invoiceID, uuid.New())
	line := caseLine(invoiceID)
	existing := &domain.Item{
		ID:        uuid.New(),
		Name:      line.Name,
		VendorID:  &inv.VendorID,
		CostExTax: decimal.Zero,
		Markup:    dec("1.65"),
	}

	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}
	deps.invoices.ListLineItemsFunc = func(_ context.Context, _ uuid.UUID) ([]domain.LineItem, error) {
		return []domain.LineItem{line}, nil
	}
	deps.items.FindByNameAndVendorFunc = func(_ context.Context, _ string, _ uuid.UUID) (*domain.Item, error) {
		return existing, nil
	}
	deps.invoices.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}

	// Ledger row must land before the item mutation.
	var order []string
	var recorded domain.PriceChange
	deps.history.CreateFunc = func(_ context.Context, change domain.PriceChange) (*domain.PriceChange, error) {
		order = append(order, "history")
		recorded = change
		change.ID = uuid.New()
		return &change, nil
	}
	var applied domain.ItemUpdateParams
	deps.items.UpdateFunc = func(_ context.Context, id uuid.UUID, params domain.ItemUpdateParams) (*domain.Item, error) {
		order = append(order, "update")
		applied = params
		return &domain.Item{ID: id}, nil
	}

	result, err := svc.Commit(context.Background(), invoiceID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ItemsCreated)
	assert.Equal(t, 1, result.ItemsUpdated)
	assert.Equal(t, 1, result.PriceChanges)

	assert.Equal(t, []string{"history", "update"}, order)
	assert.Equal(t, existing.ID, recorded.ItemID)
	assert.Equal(t, invoiceID, recorded.InvoiceID)
	assert.True(t, recorded.CostExTax.IsZero(), "ledger captures the pre-change cost")

	require.NotNil(t, applied.CostExTax)
	assert.True(t, dec("1.90").Equal(*applied.CostExTax))
}

func TestService_Commit_EstablishedCostPreserved(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	inv := parsedInvoice(invoiceID, uuid.New())
	line := caseLine(invoiceID)
	existing := &domain.Item{
		ID:        uuid.New(),
		Name:      line.Name,
		VendorID:  &inv.VendorID,
		CostExTax: dec("2.10"),
	}

	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}
	deps.invoices.ListLineItemsFunc = func(_ context.Context, _ uuid.UUID) ([]domain.LineItem, error) {
		return []domain.LineItem{line}, nil
	}
	deps.items.FindByNameAndVendorFunc = func(_ context.Context, _ string, _ uuid.UUID) (*domain.Item, error) {
		return existing, nil
	}
	deps.invoices.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}

	historyCalled := false
	deps.history.CreateFunc = func(_ context.Context, change domain.PriceChange) (*domain.PriceChange, error) {
		historyCalled = true
		return &change, nil
	}
	var applied domain.ItemUpdateParams
	deps.items.UpdateFunc = func(_ context.Context, id uuid.UUID, params domain.ItemUpdateParams) (*domain.Item, error) {
		applied = params
		return &domain.Item{ID: id}, nil
	}
	var linkedNotes *string
	deps.invoices.LinkLineItemFunc = func(_ context.Context, _, _ uuid.UUID, notes *string) error {
		linkedNotes = notes
		return nil
	}

	result, err := svc.Commit(context.Background(), invoiceID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ItemsUpdated)
	assert.Equal(t, 0, result.PriceChanges)
	assert.False(t, historyCalled, "preserved cost must not produce a ledger row")
	assert.Nil(t, applied.CostExTax, "pricing fields stay untouched")
	assert.Nil(t, applied.SellExTax)
	require.NotNil(t, linkedNotes)
	assert.Contains(t, *linkedNotes, "existing cost 2.10 preserved")
}

func TestService_Commit_SubCentDeltaSkipsLedger(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	inv := parsedInvoice(invoiceID, uuid.New())
	line := caseLine(invoiceID)
	line.EffectiveUnitCostExTax = dec("0.01")
	existing := &domain.Item{ID: uuid.New(), Name: line.Name, VendorID: &inv.VendorID}

	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}
	deps.invoices.ListLineItemsFunc = func(_ context.Context, _ uuid.UUID) ([]domain.LineItem, error) {
		return []domain.LineItem{line}, nil
	}
	deps.items.FindByNameAndVendorFunc = func(_ context.Context, _ string, _ uuid.UUID) (*domain.Item, error) {
		return existing, nil
	}
	deps.invoices.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}

	historyCalled := false
	deps.history.CreateFunc = func(_ context.Context, change domain.PriceChange) (*domain.PriceChange, error) {
		historyCalled = true
		return &change, nil
	}
	var applied domain.ItemUpdateParams
	deps.items.UpdateFunc = func(_ context.Context, id uuid.UUID, params domain.ItemUpdateParams) (*domain.Item, error) {
		applied = params
		return &domain.Item{ID: id}, nil
	}

	result, err := svc.Commit(context.Background(), invoiceID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.PriceChanges)
	assert.False(t, historyCalled)
	require.NotNil(t, applied.CostExTax, "cost still applied, just without a ledger row")
	assert.True(t, dec("0.01").Equal(*applied.CostExTax))
}

func TestService_Commit_NameOnlyMatchLinksVendor(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	inv := parsedInvoice(invoiceID, uuid.New())
	line := caseLine(invoiceID)
	orphan := &domain.Item{ID: uuid.New(), Name: line.Name, CostExTax: dec("1.90")}

	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}
	deps.invoices.ListLineItemsFunc = func(_ context.Context, _ uuid.UUID) ([]domain.LineItem, error) {
		return []domain.LineItem{line}, nil
	}
	deps.items.FindByNameFunc = func(_ context.Context, name string) (*domain.Item, error) {
		assert.Equal(t, line.Name, name)
		return orphan, nil
	}
	deps.invoices.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}

	var applied domain.ItemUpdateParams
	deps.items.UpdateFunc = func(_ context.Context, id uuid.UUID, params domain.ItemUpdateParams) (*domain.Item, error) {
		applied = params
		return &domain.Item{ID: id}, nil
	}

	_, err := svc.Commit(context.Background(), invoiceID)
	require.NoError(t, err)

	require.NotNil(t, applied.VendorID, "vendorless match adopts the invoice's vendor")
	assert.Equal(t, inv.VendorID, *applied.VendorID)
}

func TestService_Commit_AlreadyCommitted(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	posted := parsedInvoice(invoiceID, uuid.New())
	posted.Status = domain.InvoiceStatusPosted

	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return posted, nil
	}

	_, err := svc.Commit(context.Background(), invoiceID)
	require.ErrorIs(t, err, domain.ErrAlreadyCommitted)
}

func TestService_Commit_NoLineItems(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return parsedInvoice(invoiceID, uuid.New()), nil
	}

	_, err := svc.Commit(context.Background(), invoiceID)
	require.ErrorIs(t, err, domain.ErrNoLineItems)
}

func TestService_Commit_InvoiceNotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	_, err := svc.Commit(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestService_Commit_NilID(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()

	_, err := svc.Commit(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Commit_ReconcileFailureLeavesInvoiceParsed(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	inv := parsedInvoice(invoiceID, uuid.New())
	boom := errors.New("constraint violated")

	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return inv, nil
	}
	deps.invoices.ListLineItemsFunc = func(_ context.Context, _ uuid.UUID) ([]domain.LineItem, error) {
		return []domain.LineItem{caseLine(invoiceID)}, nil
	}
	deps.items.CreateFunc = func(_ context.Context, _ *domain.Item) (*domain.Item, error) {
		return nil, boom
	}

	statusChanged := false
	deps.invoices.SetStatusFunc = func(_ context.Context, _ uuid.UUID, _ domain.InvoiceStatus) error {
		statusChanged = true
		return nil
	}

	_, err := svc.Commit(context.Background(), invoiceID)
	require.ErrorIs(t, err, boom)
	assert.False(t, statusChanged, "a failed walk must not advance the status")
}

// ===========================================================================
// 3. Line item editing tests
// ===========================================================================

func TestService_AddLineItem_PostedInvoiceRefused(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	posted := parsedInvoice(invoiceID, uuid.New())
	posted.Status = domain.InvoiceStatusPosted
	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return posted, nil
	}

	_, err := svc.AddLineItem(context.Background(), invoiceID, LineItemInput{
		Name:          "Bananas",
		Quantity:      dec("1"),
		UnitCostExTax: dec("1.00"),
	})
	require.ErrorIs(t, err, domain.ErrAlreadyCommitted)
}

func TestService_AddLineItem_RecomputesTotals(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return parsedInvoice(invoiceID, uuid.New()), nil
	}
	deps.invoices.ListLineItemsFunc = func(_ context.Context, _ uuid.UUID) ([]domain.LineItem, error) {
		return []domain.LineItem{
			{Quantity: dec("3"), UnitCostExTax: dec("2.00"), HasTax: true},
		}, nil
	}

	var totals *domain.Invoice
	deps.invoices.UpdateTotalsFunc = func(_ context.Context, inv *domain.Invoice) error {
		totals = inv
		return nil
	}

	created, err := svc.AddLineItem(context.Background(), invoiceID, LineItemInput{
		Name:          "Muffins 4pk",
		Quantity:      dec("1"),
		UnitCostExTax: dec("6.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, 4, created.DetectedPackSize)
	assert.True(t, dec("1.50").Equal(created.EffectiveUnitCostExTax))

	require.NotNil(t, totals)
	assert.True(t, dec("6.00").Equal(totals.SubtotalExTax), "subtotal: %s", totals.SubtotalExTax)
	assert.True(t, dec("0.60").Equal(totals.TaxAmount), "tax: %s", totals.TaxAmount)
	assert.True(t, dec("6.60").Equal(totals.TotalIncTax))
}

func TestService_UpdateLineItem_RederivesPricing(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	invoiceID := uuid.New()
	line := caseLine(invoiceID)

	deps.invoices.GetLineItemFunc = func(_ context.Context, id uuid.UUID) (*domain.LineItem, error) {
		copied := line
		return &copied, nil
	}
	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return parsedInvoice(invoiceID, uuid.New()), nil
	}

	updated, err := svc.UpdateLineItem(context.Background(), line.ID, LineItemInput{
		Name:          "Coke Single Can",
		Quantity:      dec("1"),
		UnitCostExTax: dec("1.90"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.DetectedPackSize, "pack detection reruns against the new name")
	assert.True(t, dec("1.90").Equal(updated.EffectiveUnitCostExTax))
	assert.True(t, dec("3.14").Equal(updated.SellExTax))
}

func TestService_DeleteInvoice_PostedRefused(t *testing.T) {
	t.Parallel()
	svc, deps := newTestService()

	posted := parsedInvoice(uuid.New(), uuid.New())
	posted.Status = domain.InvoiceStatusPosted
	deps.invoices.GetForUpdateFunc = func(_ context.Context, _ uuid.UUID) (*domain.Invoice, error) {
		return posted, nil
	}

	err := svc.DeleteInvoice(context.Background(), posted.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyCommitted)
}
