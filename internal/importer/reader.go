// Package importer loads catalog master data from spreadsheet ranges.
//
// Product sheets use the columns Name, Unit price, Stock, Tax rate %;
// customer sheets use Name, Phone, Email, Address, Tax registration no.
// The first row is a header and is skipped. Amounts may be written with
// either "." or "," as the decimal separator and may carry a currency sign.
package importer

import (
	"context"
	"fmt"
	"strings"

	"billing/internal/logger"
	"billing/pkg/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RangeReader reads the cell values of a spreadsheet range.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

// DataReader parses catalog rows out of a spreadsheet.
type DataReader struct {
	source RangeReader
	log    zerolog.Logger
}

// NewDataReader creates a reader over source.
func NewDataReader(source RangeReader) *DataReader {
	return &DataReader{
		source: source,
		log:    logger.WithComponent("importer"),
	}
}

// ReadProducts reads products from sheetName. Rows that cannot be parsed are
// logged and skipped.
func (dr *DataReader) ReadProducts(ctx context.Context, sheetName string) ([]models.Product, error) {
	const op = "ReadProducts"

	dr.log.Info().Str("sheet", sheetName).Msg("Reading products")

	values, err := dr.source.ReadRange(ctx, sheetName+"!A:D")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s sheet: %w", op, sheetName, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: %s sheet is empty", op, sheetName)
	}

	var products []models.Product
	for i, row := range values[1:] {
		rowNum := i + 2 // header plus 1-based rows

		if isBlank(row) {
			continue
		}

		product, err := dr.parseProductRow(row, rowNum)
		if err != nil {
			dr.log.Warn().
				Err(err).
				Int("row", rowNum).
				Str("sheet", sheetName).
				Msg("Failed to parse product, skipping")
			continue
		}
		products = append(products, product)
	}

	dr.log.Info().
		Int("total_rows", len(values)-1).
		Int("parsed_products", len(products)).
		Str("sheet", sheetName).
		Msg("Products read successfully")

	return products, nil
}

// ReadCustomers reads customers from sheetName. Rows without a name are
// skipped.
func (dr *DataReader) ReadCustomers(ctx context.Context, sheetName string) ([]models.Customer, error) {
	const op = "ReadCustomers"

	dr.log.Info().Str("sheet", sheetName).Msg("Reading customers")

	values, err := dr.source.ReadRange(ctx, sheetName+"!A:E")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s sheet: %w", op, sheetName, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: %s sheet is empty", op, sheetName)
	}

	var customers []models.Customer
	for i, row := range values[1:] {
		rowNum := i + 2

		if isBlank(row) {
			continue
		}

		name := getString(row, 0)
		if name == "" {
			dr.log.Warn().
				Int("row", rowNum).
				Str("sheet", sheetName).
				Msg("Skipping customer row without a name")
			continue
		}

		customers = append(customers, models.Customer{
			Name:                  name,
			Phone:                 getString(row, 1),
			Email:                 getString(row, 2),
			Address:               getString(row, 3),
			TaxRegistrationNumber: getString(row, 4),
		})
	}

	dr.log.Info().
		Int("total_rows", len(values)-1).
		Int("parsed_customers", len(customers)).
		Str("sheet", sheetName).
		Msg("Customers read successfully")

	return customers, nil
}

// parseProductRow parses a single product row
func (dr *DataReader) parseProductRow(row []interface{}, rowNum int) (models.Product, error) {
	const op = "parseProductRow"

	name := getString(row, 0)
	if name == "" {
		return models.Product{}, fmt.Errorf("%s: missing name in row %d", op, rowNum)
	}

	priceStr := getString(row, 1)
	price, err := parseAmount(priceStr)
	if err != nil {
		return models.Product{}, fmt.Errorf("%s: invalid unit price '%s' in row %d: %w", op, priceStr, rowNum, err)
	}

	stockStr := getString(row, 2)
	stock, err := parseAmount(stockStr)
	if err != nil {
		dr.log.Warn().
			Str("stock_str", stockStr).
			Int("row", rowNum).
			Msg("Invalid stock quantity, using 0")
		stock = decimal.Zero
	}
	if !stock.IsInteger() {
		dr.log.Warn().
			Str("stock_str", stockStr).
			Int("row", rowNum).
			Msg("Fractional stock quantity truncated")
	}

	rateStr := strings.TrimSuffix(getString(row, 3), "%")
	rate, err := parseAmount(rateStr)
	if err != nil {
		dr.log.Warn().
			Str("tax_rate_str", rateStr).
			Int("row", rowNum).
			Msg("Invalid tax rate, using 0")
		rate = decimal.Zero
	}

	return models.Product{
		Name:          name,
		UnitPrice:     price,
		StockQuantity: int(stock.IntPart()),
		TaxRate:       rate,
	}, nil
}

// parseAmount parses a number written with either decimal convention, with
// optional thousands separators, currency signs and a leading minus.
func parseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(amountStr)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	negative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimPrefix(cleaned, "-")

	for _, symbol := range []string{" ", "\u00a0", "₹", "€", "$", "£", "Rs.", "Rs", "INR", "EUR", "USD"} {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Whichever separator comes last is the decimal one.
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s (cleaned: %s)", amountStr, cleaned)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// getString safely extracts a string value from a row slice
func getString(row []interface{}, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[index]))
}

func isBlank(row []interface{}) bool {
	for i := range row {
		if getString(row, i) != "" {
			return false
		}
	}
	return true
}
