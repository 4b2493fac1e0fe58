// Package billing implements the invoice lifecycle and the product and
// customer catalog on top of the record repository.
//
// Invoices copy the customer and every selected product by value when they
// are created. Later catalog edits never reach an existing invoice. After
// creation the only permitted change is the PENDING -> PAID transition.
package billing

import (
	"context"
	"errors"
	"time"

	"billing/internal/logger"
	"billing/internal/pricing"
	"billing/internal/repository"
	"billing/internal/store"
	"billing/pkg/models"
	"billing/pkg/services"
	"github.com/rs/zerolog"
)

// Records is the subset of the record repository the billing services use.
type Records interface {
	Create(ctx context.Context, collection string, data any) (store.Record, error)
	FetchAll(ctx context.Context, collection string) ([]store.Record, error)
	FetchOne(ctx context.Context, collection, id string) (store.Record, error)
	Update(ctx context.Context, collection, id string, partial any) (store.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

var _ Records = (*repository.Repository)(nil)

var _ services.InvoiceService = (*Manager)(nil)

// Manager creates invoices and moves them through their lifecycle.
type Manager struct {
	records Records
	engine  *pricing.Engine
	numbers *NumberGenerator
	now     func() time.Time
	log     zerolog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithNumberGenerator sets the invoice number source.
func WithNumberGenerator(g *NumberGenerator) ManagerOption {
	return func(m *Manager) {
		m.numbers = g
	}
}

// WithClock sets the function used for invoice creation timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates an invoice manager over records.
func NewManager(records Records, engine *pricing.Engine, opts ...ManagerOption) *Manager {
	m := &Manager{
		records: records,
		engine:  engine,
		now:     time.Now,
		log:     logger.WithComponent("invoices"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.numbers == nil {
		m.numbers = NewNumberGenerator(DefaultInvoicePrefix)
	}
	return m
}

// CreateInvoice validates the selections, snapshots the customer and
// products, prices the lines and persists a new PENDING invoice. Nothing is
// written when validation fails.
func (m *Manager) CreateInvoice(ctx context.Context, customerID string, selections []models.LineSelection) (*models.Invoice, error) {
	const op = "CreateInvoice"

	customer, err := m.resolveCustomer(ctx, customerID)
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	if len(selections) == 0 {
		return nil, NewValidationError("lineItems", nil, ErrEmptyLineItems, "an invoice needs at least one line item")
	}

	items := make([]models.LineItem, 0, len(selections))
	lines := make([]pricing.Line, 0, len(selections))
	for i, sel := range selections {
		if sel.Quantity < 1 {
			return nil, NewValidationError("quantity", sel.Quantity, ErrInvalidQuantity, "quantity must be at least 1")
		}

		product, err := m.resolveProduct(ctx, sel.ProductID)
		if err != nil {
			return nil, wrapError(op, err, "resolving line item")
		}

		item := models.LineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    sel.Quantity,
			UnitPrice:   product.UnitPrice,
			TaxRate:     product.TaxRate,
		}
		items = append(items, item)
		lines = append(lines, pricing.Line{
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			TaxRate:   item.TaxRate,
		})

		m.log.Debug().
			Int("line", i).
			Str("product_id", product.ID).
			Int("quantity", sel.Quantity).
			Msg("Line item resolved")
	}

	totals := m.engine.Compute(lines)

	invoice := models.Invoice{
		InvoiceNumber: m.numbers.Next(),
		Customer:      *customer,
		LineItems:     items,
		SubTotal:      totals.SubTotal,
		TaxTotal:      totals.TaxTotal,
		GrandTotal:    totals.GrandTotal,
		Status:        models.StatusPending,
		CreatedAt:     m.now(),
	}

	record, err := m.records.Create(ctx, models.CollectionInvoices, invoice)
	if err != nil {
		return nil, wrapError(op, err, "persisting invoice")
	}

	stored, err := repository.Decode[models.Invoice](record)
	if err != nil {
		return nil, wrapError(op, err, "decoding stored invoice")
	}

	m.log.Info().
		Str("invoice_id", stored.ID).
		Str("invoice_number", stored.InvoiceNumber).
		Str("customer_id", customer.ID).
		Int("line_items", len(stored.LineItems)).
		Str("grand_total", stored.GrandTotal.StringFixed(2)).
		Msg("Invoice created")

	return &stored, nil
}

// MarkPaid moves an invoice from PENDING to PAID. An invoice that is
// already paid is returned unchanged.
func (m *Manager) MarkPaid(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	const op = "MarkPaid"

	invoice, err := m.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	if invoice.IsPaid() {
		m.log.Debug().
			Str("invoice_id", invoiceID).
			Msg("Invoice already paid")
		return invoice, nil
	}
	if !invoice.Status.CanTransitionTo(models.StatusPaid) {
		return nil, &BillingError{Op: op, Err: ErrInvalidStatus, Details: string(invoice.Status)}
	}

	record, err := m.records.Update(ctx, models.CollectionInvoices, invoiceID, map[string]any{
		"status": models.StatusPaid,
	})
	if err != nil {
		return nil, wrapError(op, err, "persisting status")
	}

	paid, err := repository.Decode[models.Invoice](record)
	if err != nil {
		return nil, wrapError(op, err, "decoding stored invoice")
	}

	m.log.Info().
		Str("invoice_id", paid.ID).
		Str("invoice_number", paid.InvoiceNumber).
		Msg("Invoice marked as paid")

	return &paid, nil
}

// GetInvoice returns the invoice with the given id.
func (m *Manager) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	const op = "GetInvoice"

	record, err := m.records.FetchOne(ctx, models.CollectionInvoices, invoiceID)
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	invoice, err := repository.Decode[models.Invoice](record)
	if err != nil {
		return nil, wrapError(op, err, "")
	}
	return &invoice, nil
}

// ListInvoices returns every invoice in creation order.
func (m *Manager) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	const op = "ListInvoices"

	records, err := m.records.FetchAll(ctx, models.CollectionInvoices)
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	invoices, err := repository.DecodeAll[models.Invoice](records)
	if err != nil {
		return nil, wrapError(op, err, "")
	}
	return invoices, nil
}

func (m *Manager) resolveCustomer(ctx context.Context, id string) (*models.Customer, error) {
	record, err := m.records.FetchOne(ctx, models.CollectionCustomers, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewValidationError("customerId", id, ErrInvalidCustomer, "customer does not exist")
	}
	if err != nil {
		return nil, err
	}

	customer, err := repository.Decode[models.Customer](record)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (m *Manager) resolveProduct(ctx context.Context, id string) (*models.Product, error) {
	record, err := m.records.FetchOne(ctx, models.CollectionProducts, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewValidationError("productId", id, ErrInvalidProduct, "product does not exist")
	}
	if err != nil {
		return nil, err
	}

	product, err := repository.Decode[models.Product](record)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
