package query

import (
	"time"

	"billing/pkg/models"
)

// Criteria selects the invoices of a report. Zero fields do not filter.
type Criteria struct {
	Range         DateRange
	InvoiceNumber string
	Status        models.InvoiceStatus
}

// Report is a filtered invoice list with its summary and per-day series.
type Report struct {
	Summary    Summary          `json:"summary"`
	DailySales []Point          `json:"dailySales"`
	DailyTax   []Point          `json:"dailyTax"`
	Invoices   []models.Invoice `json:"invoices"`
}

// Apply runs every filter of c over invoices.
func Apply(invoices []models.Invoice, c Criteria) []models.Invoice {
	out := FilterByDateRange(invoices, c.Range)
	out = FilterByInvoiceNumber(out, c.InvoiceNumber)
	out = FilterByStatus(out, c.Status)
	return out
}

// BuildReport filters invoices and aggregates the selection by day in loc.
func BuildReport(invoices []models.Invoice, c Criteria, loc *time.Location) Report {
	selected := Apply(invoices, c)

	sales, _ := AggregateByDay(selected, FieldGrandTotal, loc)
	tax, _ := AggregateByDay(selected, FieldTaxTotal, loc)

	return Report{
		Summary:    Summarize(selected),
		DailySales: Series(sales),
		DailyTax:   Series(tax),
		Invoices:   selected,
	}
}
