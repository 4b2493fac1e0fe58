package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"billing/internal/pricing"
	"billing/internal/repository"
	"billing/internal/store"
	"billing/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

type countingIDs struct{ n int }

func (c *countingIDs) NewID() string {
	c.n++
	return fmt.Sprintf("rec-%d", c.n)
}

type fixture struct {
	manager *Manager
	catalog *Catalog
	repo    *repository.Repository
	backend *store.MemoryBackend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := store.NewMemoryBackend()
	repo, err := repository.New(store.NewCollectionStore(backend), repository.WithIDGenerator(&countingIDs{}))
	require.NoError(t, err)

	numbers := NewNumberGenerator("INV-")
	numbers.now = func() time.Time { return fixedNow }

	return &fixture{
		manager: NewManager(repo, pricing.NewEngine(), WithNumberGenerator(numbers), WithClock(func() time.Time { return fixedNow })),
		catalog: NewCatalog(repo),
		repo:    repo,
		backend: backend,
	}
}

func (f *fixture) product(t *testing.T, name, price, tax string) *models.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), models.Product{
		Name:          name,
		UnitPrice:     decimal.RequireFromString(price),
		StockQuantity: 10,
		TaxRate:       decimal.RequireFromString(tax),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) invoiceCount(t *testing.T) int {
	t.Helper()
	all, err := f.manager.ListInvoices(context.Background())
	require.NoError(t, err)
	return len(all)
}

func TestCreateInvoiceSingleLine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.product(t, "A", "100", "10")

	inv, err := f.manager.CreateInvoice(ctx, "1", []models.LineSelection{{ProductID: a.ID, Quantity: 2}})
	require.NoError(t, err)

	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, "INV-1741599000000", inv.InvoiceNumber)
	assert.Equal(t, models.StatusPending, inv.Status)
	assert.True(t, inv.CreatedAt.Equal(fixedNow))
	assert.Equal(t, "200", inv.SubTotal.String())
	assert.Equal(t, "20", inv.TaxTotal.String())
	assert.Equal(t, "220", inv.GrandTotal.String())

	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, a.ID, inv.LineItems[0].ProductID)
	assert.Equal(t, "A", inv.LineItems[0].ProductName)
	assert.Equal(t, 2, inv.LineItems[0].Quantity)

	assert.Equal(t, "John Doe", inv.Customer.Name)
	assert.Equal(t, "1", inv.Customer.ID)

	stored, err := f.manager.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, stored.InvoiceNumber)
	assert.True(t, stored.GrandTotal.Equal(inv.GrandTotal))
}

func TestCreateInvoiceTwoLines(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "100", "10")
	b := f.product(t, "B", "200", "0")

	inv, err := f.manager.CreateInvoice(context.Background(), "2", []models.LineSelection{
		{ProductID: a.ID, Quantity: 1},
		{ProductID: b.ID, Quantity: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, "700", inv.SubTotal.String())
	assert.Equal(t, "10", inv.TaxTotal.String())
	assert.Equal(t, "710", inv.GrandTotal.String())
	require.Len(t, inv.LineItems, 2)
	assert.Equal(t, "B", inv.LineItems[1].ProductName, "line order preserved")
}

func TestCreateInvoiceValidation(t *testing.T) {
	tests := []struct {
		name       string
		customerID string
		selections []models.LineSelection
		cause      error
	}{
		{
			name:       "unknown customer",
			customerID: "no-such-customer",
			selections: []models.LineSelection{{ProductID: "1", Quantity: 1}},
			cause:      ErrInvalidCustomer,
		},
		{
			name:       "unknown customer with no items",
			customerID: "",
			selections: nil,
			cause:      ErrInvalidCustomer,
		},
		{
			name:       "no line items",
			customerID: "1",
			selections: []models.LineSelection{},
			cause:      ErrEmptyLineItems,
		},
		{
			name:       "unknown product",
			customerID: "1",
			selections: []models.LineSelection{{ProductID: "1", Quantity: 1}, {ProductID: "999", Quantity: 1}},
			cause:      ErrInvalidProduct,
		},
		{
			name:       "zero quantity",
			customerID: "1",
			selections: []models.LineSelection{{ProductID: "1", Quantity: 0}},
			cause:      ErrInvalidQuantity,
		},
		{
			name:       "negative quantity",
			customerID: "1",
			selections: []models.LineSelection{{ProductID: "1", Quantity: -3}},
			cause:      ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.invoiceCount(t)

			inv, err := f.manager.CreateInvoice(context.Background(), tt.customerID, tt.selections)
			assert.Nil(t, inv)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, tt.cause)

			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)

			assert.Equal(t, before, f.invoiceCount(t), "nothing persisted")
		})
	}
}

func TestInvoiceSnapshotsSurviveCatalogEdits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.product(t, "Widget", "100", "10")

	inv, err := f.manager.CreateInvoice(ctx, "1", []models.LineSelection{{ProductID: a.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = f.catalog.UpdateProduct(ctx, a.ID, models.Product{Name: "Widget v2", UnitPrice: decimal.NewFromInt(999), TaxRate: decimal.NewFromInt(28)})
	require.NoError(t, err)
	_, err = f.catalog.UpdateCustomer(ctx, "1", models.Customer{Name: "John Renamed", Phone: "555"})
	require.NoError(t, err)
	require.NoError(t, f.catalog.DeleteProduct(ctx, a.ID))

	stored, err := f.manager.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", stored.LineItems[0].ProductName)
	assert.Equal(t, "100", stored.LineItems[0].UnitPrice.String())
	assert.Equal(t, "10", stored.LineItems[0].TaxRate.String())
	assert.Equal(t, "John Doe", stored.Customer.Name)
	assert.Equal(t, "john@example.com", stored.Customer.Email)
	assert.Equal(t, "110", stored.GrandTotal.String())
}

func TestInvoiceNumbersAreUnique(t *testing.T) {
	f := newFixture(t)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		inv, err := f.manager.CreateInvoice(context.Background(), "1", []models.LineSelection{{ProductID: "1", Quantity: 1}})
		require.NoError(t, err)
		assert.False(t, seen[inv.InvoiceNumber], "duplicate %s", inv.InvoiceNumber)
		seen[inv.InvoiceNumber] = true
	}
	assert.Equal(t, 5, f.invoiceCount(t))
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv, err := f.manager.CreateInvoice(ctx, "1", []models.LineSelection{{ProductID: "2", Quantity: 2}})
	require.NoError(t, err)

	paid, err := f.manager.MarkPaid(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)

	// Only the status changed.
	assert.Equal(t, inv.InvoiceNumber, paid.InvoiceNumber)
	assert.Equal(t, inv.LineItems[0].ProductName, paid.LineItems[0].ProductName)
	assert.True(t, inv.GrandTotal.Equal(paid.GrandTotal))
	assert.True(t, inv.CreatedAt.Equal(paid.CreatedAt))

	after1, err := f.repo.FetchOne(ctx, models.CollectionInvoices, inv.ID)
	require.NoError(t, err)

	again, err := f.manager.MarkPaid(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, again.Status)

	after2, err := f.repo.FetchOne(ctx, models.CollectionInvoices, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, after1, after2, "second call changes nothing")
}

func TestMarkPaidNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.MarkPaid(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestMarkPaidRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.repo.Create(ctx, models.CollectionInvoices, map[string]any{"status": "VOID"})
	require.NoError(t, err)

	_, err = f.manager.MarkPaid(ctx, repository.RecordID(rec))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.backend.Unavailable = true

	_, err := f.manager.CreateInvoice(ctx, "1", []models.LineSelection{{ProductID: "1", Quantity: 1}})
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, ErrValidation)

	_, err = f.manager.ListInvoices(ctx)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	var billingErr *BillingError
	require.ErrorAs(t, err, &billingErr)
	assert.Equal(t, "ListInvoices", billingErr.Op)
}
