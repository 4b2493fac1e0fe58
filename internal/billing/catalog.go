package billing

import (
	"context"
	"strings"

	"billing/internal/logger"
	"billing/internal/repository"
	"billing/pkg/models"
	"billing/pkg/services"
	"github.com/rs/zerolog"
)

var _ services.CatalogService = (*Catalog)(nil)

// Catalog manages products, customers and users. Input is validated here so
// that the repository only ever stores well-formed master data.
type Catalog struct {
	records Records
	log     zerolog.Logger
}

// NewCatalog creates a catalog over records.
func NewCatalog(records Records) *Catalog {
	return &Catalog{
		records: records,
		log:     logger.WithComponent("catalog"),
	}
}

// CreateProduct validates and stores a new product.
func (c *Catalog) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	const op = "CreateProduct"

	p.Name = strings.TrimSpace(p.Name)
	if err := ValidateProduct(p); err != nil {
		return nil, err
	}

	record, err := c.records.Create(ctx, models.CollectionProducts, p)
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	created, err := repository.Decode[models.Product](record)
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	c.log.Info().
		Str("product_id", created.ID).
		Str("name", created.Name).
		Msg("Product created")

	return &created, nil
}

// GetProduct returns the product with the given id.
func (c *Catalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return fetchOne[models.Product](ctx, c.records, "GetProduct", models.CollectionProducts, id)
}

// ListProducts returns every product in insertion order.
func (c *Catalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	return fetchAll[models.Product](ctx, c.records, "ListProducts", models.CollectionProducts)
}

// UpdateProduct replaces the editable fields of a product. Existing invoices
// keep their snapshots.
func (c *Catalog) UpdateProduct(ctx context.Context, id string, p models.Product) (*models.Product, error) {
	const op = "UpdateProduct"

	p.Name = strings.TrimSpace(p.Name)
	if err := ValidateProduct(p); err != nil {
		return nil, err
	}

	record, err := c.records.Update(ctx, models.CollectionProducts, id, map[string]any{
		"name":           p.Name,
		"unitPrice":      p.UnitPrice,
		"stockQuantity":  p.StockQuantity,
		"taxRatePercent": p.TaxRate,
	})
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	updated, err := repository.Decode[models.Product](record)
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	c.log.Info().
		Str("product_id", id).
		Msg("Product updated")

	return &updated, nil
}

// DeleteProduct removes a product. Deleting an unknown id succeeds.
func (c *Catalog) DeleteProduct(ctx context.Context, id string) error {
	if err := c.records.Delete(ctx, models.CollectionProducts, id); err != nil {
		return wrapError("DeleteProduct", err, "")
	}
	c.log.Info().Str("product_id", id).Msg("Product deleted")
	return nil
}

// CreateCustomer validates and stores a new customer.
func (c *Catalog) CreateCustomer(ctx context.Context, cu models.Customer) (*models.Customer, error) {
	const op = "CreateCustomer"

	cu = trimCustomer(cu)
	if err := ValidateCustomer(cu); err != nil {
		return nil, err
	}

	record, err := c.records.Create(ctx, models.CollectionCustomers, cu)
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	created, err := repository.Decode[models.Customer](record)
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	c.log.Info().
		Str("customer_id", created.ID).
		Str("name", created.Name).
		Msg("Customer created")

	return &created, nil
}

// GetCustomer returns the customer with the given id.
func (c *Catalog) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return fetchOne[models.Customer](ctx, c.records, "GetCustomer", models.CollectionCustomers, id)
}

// ListCustomers returns every customer in insertion order.
func (c *Catalog) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return fetchAll[models.Customer](ctx, c.records, "ListCustomers", models.CollectionCustomers)
}

// UpdateCustomer replaces the editable fields of a customer. Optional fields
// left empty are cleared.
func (c *Catalog) UpdateCustomer(ctx context.Context, id string, cu models.Customer) (*models.Customer, error) {
	const op = "UpdateCustomer"

	cu = trimCustomer(cu)
	if err := ValidateCustomer(cu); err != nil {
		return nil, err
	}

	record, err := c.records.Update(ctx, models.CollectionCustomers, id, map[string]any{
		"name":                  cu.Name,
		"phone":                 cu.Phone,
		"email":                 cu.Email,
		"address":               cu.Address,
		"taxRegistrationNumber": cu.TaxRegistrationNumber,
	})
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	updated, err := repository.Decode[models.Customer](record)
	if err != nil {
		return nil, wrapError(op, err, "")
	}

	c.log.Info().
		Str("customer_id", id).
		Msg("Customer updated")

	return &updated, nil
}

// DeleteCustomer removes a customer. Deleting an unknown id succeeds.
func (c *Catalog) DeleteCustomer(ctx context.Context, id string) error {
	if err := c.records.Delete(ctx, models.CollectionCustomers, id); err != nil {
		return wrapError("DeleteCustomer", err, "")
	}
	c.log.Info().Str("customer_id", id).Msg("Customer deleted")
	return nil
}

// ListUsers returns the operator accounts.
func (c *Catalog) ListUsers(ctx context.Context) ([]models.User, error) {
	return fetchAll[models.User](ctx, c.records, "ListUsers", models.CollectionUsers)
}

// ValidateProduct checks the fields a product must carry.
func ValidateProduct(p models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", nil, ErrRequiredField, "product name is required")
	}
	if p.UnitPrice.IsNegative() {
		return NewValidationError("unitPrice", p.UnitPrice, ErrNegativeValue, "unit price must not be negative")
	}
	if p.StockQuantity < 0 {
		return NewValidationError("stockQuantity", p.StockQuantity, ErrNegativeValue, "stock quantity must not be negative")
	}
	if p.TaxRate.IsNegative() {
		return NewValidationError("taxRatePercent", p.TaxRate, ErrNegativeValue, "tax rate must not be negative")
	}
	return nil
}

// ValidateCustomer checks the fields a customer must carry.
func ValidateCustomer(cu models.Customer) error {
	if strings.TrimSpace(cu.Name) == "" {
		return NewValidationError("name", nil, ErrRequiredField, "customer name is required")
	}
	if strings.TrimSpace(cu.Phone) == "" {
		return NewValidationError("phone", nil, ErrRequiredField, "customer phone is required")
	}
	return nil
}

func trimCustomer(cu models.Customer) models.Customer {
	cu.Name = strings.TrimSpace(cu.Name)
	cu.Phone = strings.TrimSpace(cu.Phone)
	cu.Email = strings.TrimSpace(cu.Email)
	cu.Address = strings.TrimSpace(cu.Address)
	cu.TaxRegistrationNumber = strings.TrimSpace(cu.TaxRegistrationNumber)
	return cu
}

func fetchOne[T any](ctx context.Context, records Records, op, collection, id string) (*T, error) {
	record, err := records.FetchOne(ctx, collection, id)
	if err != nil {
		return nil, wrapError(op, err, "")
	}
	v, err := repository.Decode[T](record)
	if err != nil {
		return nil, wrapError(op, err, "")
	}
	return &v, nil
}

func fetchAll[T any](ctx context.Context, records Records, op, collection string) ([]T, error) {
	all, err := records.FetchAll(ctx, collection)
	if err != nil {
		return nil, wrapError(op, err, "")
	}
	out, err := repository.DecodeAll[T](all)
	if err != nil {
		return nil, wrapError(op, err, "")
	}
	return out, nil
}
