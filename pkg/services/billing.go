package services

import (
	"context"

	"billing/pkg/models"
)

// InvoiceService defines the invoice operations offered to presentation layers
type InvoiceService interface {
	// CreateInvoice prices the selections, snapshots the customer and products,
	// and persists a new PENDING invoice.
	CreateInvoice(ctx context.Context, customerID string, selections []models.LineSelection) (*models.Invoice, error)

	// MarkPaid moves an invoice to PAID. Calling it on a paid invoice is a no-op.
	MarkPaid(ctx context.Context, invoiceID string) (*models.Invoice, error)

	// GetInvoice returns a single invoice by id
	GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error)

	// ListInvoices returns all invoices in insertion order
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
}

// CatalogService defines master-data operations for products, customers and users
type CatalogService interface {
	CreateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id string, p models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, c models.Customer) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]models.User, error)
}
