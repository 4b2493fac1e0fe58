package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"billing/internal/billing"
	"billing/internal/logger"
	"billing/internal/repository"
	"billing/internal/store"
	"billing/pkg/models"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Disable()
	m.Run()
}

func TestParseItems(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    []models.LineSelection
		wantErr bool
	}{
		{
			name: "several items",
			raw:  []string{"1:2", " 3 : 1 "},
			want: []models.LineSelection{{ProductID: "1", Quantity: 2}, {ProductID: "3", Quantity: 1}},
		},
		{
			name: "none",
			raw:  nil,
			want: []models.LineSelection{},
		},
		{
			name: "zero quantity is left to the manager",
			raw:  []string{"1:0"},
			want: []models.LineSelection{{ProductID: "1", Quantity: 0}},
		},
		{name: "missing quantity", raw: []string{"1"}, wantErr: true},
		{name: "missing product", raw: []string{":2"}, wantErr: true},
		{name: "fractional quantity", raw: []string{"1:1.5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseItems(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func filterCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addFilterFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestCriteriaFromFlags(t *testing.T) {
	c := filterCommand(t, "--from", "2025-03-01", "--to", "2025-03-31", "--status", "paid", "--number", " INV-1 ")

	criteria, err := criteriaFromFlags(c, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, criteria.Status)
	assert.Equal(t, "INV-1", criteria.InvoiceNumber)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), criteria.Range.From)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), criteria.Range.To)

	_, err = criteriaFromFlags(filterCommand(t, "--status", "VOID"), time.UTC)
	assert.Error(t, err)

	_, err = criteriaFromFlags(filterCommand(t, "--from", "03/01/2025"), time.UTC)
	assert.Error(t, err)

	_, err = criteriaFromFlags(filterCommand(t, "--from", "2025-04-01", "--to", "2025-03-01"), time.UTC)
	assert.Error(t, err)
}

func TestHandleError(t *testing.T) {
	log := logger.WithComponent("test")

	err := handleError(billing.NewValidationError("customerId", "9", billing.ErrInvalidCustomer, "customer does not exist"), log)
	assert.EqualError(t, err, "invalid input: customer does not exist")

	err = handleError(&repository.RepositoryError{Op: "FetchOne", Collection: "invoices", ID: "42", Err: repository.ErrNotFound}, log)
	assert.EqualError(t, err, `no invoice record with id "42"`)

	storeErr := store.NewStoreError("Get", "invoices", errors.New("disk gone"))
	err = handleError(storeErr, log)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	other := errors.New("boom")
	assert.Equal(t, other, handleError(other, log))
}

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.Bytes()
}

func TestInvoiceLifecycleThroughCLI(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("STORE_PATH", filepath.Join(dir, "billing.json"))
	t.Setenv("REPORT_TIMEZONE", "UTC")
	t.Setenv("REPOSITORY_LATENCY", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("INVOICE_PREFIX", "")
	t.Setenv("ID_NODE", "")

	var created models.Invoice
	require.NoError(t, json.Unmarshal(run(t, "invoice", "create", "--customer", "1", "--item", "2:3"), &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, "600", created.GrandTotal.String())

	var customer models.Customer
	require.NoError(t, json.Unmarshal(run(t, "customer", "show", "2"), &customer))
	assert.Equal(t, "Jane Smith", customer.Name)

	var paid models.Invoice
	require.NoError(t, json.Unmarshal(run(t, "invoice", "pay", created.ID), &paid))
	assert.Equal(t, models.StatusPaid, paid.Status)
	assert.Equal(t, created.InvoiceNumber, paid.InvoiceNumber)

	var report struct {
		Summary struct {
			Count       int    `json:"totalInvoices"`
			TotalAmount string `json:"totalAmount"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(run(t, "report"), &report))
	assert.Equal(t, 1, report.Summary.Count)
	assert.Equal(t, "600", report.Summary.TotalAmount)

	var dashboard struct {
		TotalProducts int `json:"totalProducts"`
		TotalInvoices int `json:"totalInvoices"`
		PaidInvoices  int `json:"paidInvoices"`
	}
	require.NoError(t, json.Unmarshal(run(t, "dashboard"), &dashboard))
	assert.Equal(t, 3, dashboard.TotalProducts)
	assert.Equal(t, 1, dashboard.TotalInvoices)
	assert.Equal(t, 1, dashboard.PaidInvoices)
}
