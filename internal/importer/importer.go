package importer

import (
	"context"
	"errors"
	"fmt"

	"billing/internal/billing"
	"billing/internal/logger"
	"billing/pkg/services"
	"github.com/rs/zerolog"
)

// Result counts what an import did.
type Result struct {
	Created  int      `json:"created"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// Importer writes parsed catalog rows through the catalog service, so every
// row passes the same validation as manual entry.
type Importer struct {
	reader  *DataReader
	catalog services.CatalogService
	log     zerolog.Logger
}

// New creates an importer reading from source and writing to catalog.
func New(source RangeReader, catalog services.CatalogService) *Importer {
	return &Importer{
		reader:  NewDataReader(source),
		catalog: catalog,
		log:     logger.WithComponent("importer"),
	}
}

// ImportProducts creates a product for every valid row of sheetName. Rows the
// catalog rejects as invalid are skipped; any other failure stops the import.
func (im *Importer) ImportProducts(ctx context.Context, sheetName string) (Result, error) {
	const op = "ImportProducts"

	products, err := im.reader.ReadProducts(ctx, sheetName)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	var res Result
	for _, p := range products {
		_, err := im.catalog.CreateProduct(ctx, p)
		if errors.Is(err, billing.ErrValidation) {
			res.skip(fmt.Sprintf("product %q: %v", p.Name, err))
			continue
		}
		if err != nil {
			return res, fmt.Errorf("%s: failed to create product %q: %w", op, p.Name, err)
		}
		res.Created++
	}

	im.log.Info().
		Str("sheet", sheetName).
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Msg("Products imported")

	return res, nil
}

// ImportCustomers creates a customer for every valid row of sheetName.
func (im *Importer) ImportCustomers(ctx context.Context, sheetName string) (Result, error) {
	const op = "ImportCustomers"

	customers, err := im.reader.ReadCustomers(ctx, sheetName)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	var res Result
	for _, c := range customers {
		_, err := im.catalog.CreateCustomer(ctx, c)
		if errors.Is(err, billing.ErrValidation) {
			res.skip(fmt.Sprintf("customer %q: %v", c.Name, err))
			continue
		}
		if err != nil {
			return res, fmt.Errorf("%s: failed to create customer %q: %w", op, c.Name, err)
		}
		res.Created++
	}

	im.log.Info().
		Str("sheet", sheetName).
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Msg("Customers imported")

	return res, nil
}

func (r *Result) skip(warning string) {
	r.Skipped++
	r.Warnings = append(r.Warnings, warning)
}
