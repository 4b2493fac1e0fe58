package query

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

// ErrUnknownField is returned when an aggregate names a field that is not an
// invoice amount.
var ErrUnknownField = errors.New("unknown invoice amount field")

// Field names an invoice amount that can be summed.
type Field string

const (
	FieldSubTotal   Field = "subTotal"
	FieldTaxTotal   Field = "taxTotal"
	FieldGrandTotal Field = "grandTotal"
)

const monthLayout = "2006-01"

// Point is one entry of an ordered series.
type Point struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
}

// Summary is the headline of a report.
type Summary struct {
	Count       int             `json:"totalInvoices"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalTax    decimal.Decimal `json:"totalTax"`
}

// AggregateByDay sums field per calendar day of creation. Keys are
// "YYYY-MM-DD" dates in loc (UTC when loc is nil).
func AggregateByDay(invoices []models.Invoice, field Field, loc *time.Location) (map[string]decimal.Decimal, error) {
	return aggregate(invoices, field, loc, DateLayout)
}

// AggregateByMonth sums field per calendar month of creation. Keys are
// "YYYY-MM" in loc (UTC when loc is nil).
func AggregateByMonth(invoices []models.Invoice, field Field, loc *time.Location) (map[string]decimal.Decimal, error) {
	return aggregate(invoices, field, loc, monthLayout)
}

func aggregate(invoices []models.Invoice, field Field, loc *time.Location, layout string) (map[string]decimal.Decimal, error) {
	get, err := accessor(field)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	out := make(map[string]decimal.Decimal)
	for _, inv := range invoices {
		key := inv.CreatedAt.In(loc).Format(layout)
		sum, ok := out[key]
		if !ok {
			sum = decimal.Zero
		}
		out[key] = sum.Add(get(inv))
	}
	return out, nil
}

func accessor(field Field) (func(models.Invoice) decimal.Decimal, error) {
	switch field {
	case FieldSubTotal:
		return func(inv models.Invoice) decimal.Decimal { return inv.SubTotal }, nil
	case FieldTaxTotal:
		return func(inv models.Invoice) decimal.Decimal { return inv.TaxTotal }, nil
	case FieldGrandTotal:
		return func(inv models.Invoice) decimal.Decimal { return inv.GrandTotal }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// Summarize counts the invoices and totals their grand and tax amounts.
func Summarize(invoices []models.Invoice) Summary {
	s := Summary{
		Count:       len(invoices),
		TotalAmount: decimal.Zero,
		TotalTax:    decimal.Zero,
	}
	for _, inv := range invoices {
		s.TotalAmount = s.TotalAmount.Add(inv.GrandTotal)
		s.TotalTax = s.TotalTax.Add(inv.TaxTotal)
	}
	return s
}

// SortedKeys returns the keys of an aggregate in ascending order.
func SortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Series orders an aggregate by key.
func Series(m map[string]decimal.Decimal) []Point {
	points := make([]Point, 0, len(m))
	for _, k := range SortedKeys(m) {
		points = append(points, Point{Key: k, Total: m[k]})
	}
	return points
}
