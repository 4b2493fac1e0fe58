// Package query filters and aggregates invoices for reports and the
// dashboard. Every function is pure: inputs are never modified and results
// depend only on the arguments.
package query

import (
	"time"

	"billing/pkg/models"
)

// DateLayout is the canonical calendar-date key and input format.
const DateLayout = "2006-01-02"

// DateRange bounds invoice creation dates by calendar day. A zero From or To
// leaves that side open. Both ends are inclusive: From counts from the start
// of its day and To up to 23:59:59.999 of its day, in the bound's location.
type DateRange struct {
	From time.Time
	To   time.Time
}

// start returns the first instant included by the range.
func (r DateRange) start() time.Time {
	return startOfDay(r.From)
}

// end returns the last instant included by the range.
func (r DateRange) end() time.Time {
	return startOfDay(r.To).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.start()) {
		return false
	}
	if !r.To.IsZero() && t.After(r.end()) {
		return false
	}
	return true
}

// ParseDateRange builds a range from two optional "YYYY-MM-DD" strings
// interpreted in loc. Empty strings leave that side open.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}

	var r DateRange
	if from != "" {
		t, err := time.ParseInLocation(DateLayout, from, loc)
		if err != nil {
			return DateRange{}, err
		}
		r.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(DateLayout, to, loc)
		if err != nil {
			return DateRange{}, err
		}
		r.To = t
	}
	return r, nil
}

// FilterByDateRange returns the invoices created inside r, in input order.
func FilterByDateRange(invoices []models.Invoice, r DateRange) []models.Invoice {
	if r.From.IsZero() && r.To.IsZero() {
		return invoices
	}
	return filter(invoices, func(inv models.Invoice) bool {
		return r.Contains(inv.CreatedAt)
	})
}

// FilterByInvoiceNumber returns the invoices whose number equals number
// exactly. An empty number returns the input unchanged.
func FilterByInvoiceNumber(invoices []models.Invoice, number string) []models.Invoice {
	if number == "" {
		return invoices
	}
	return filter(invoices, func(inv models.Invoice) bool {
		return inv.InvoiceNumber == number
	})
}

// FilterByStatus returns the invoices in the given status. An empty status
// returns the input unchanged.
func FilterByStatus(invoices []models.Invoice, status models.InvoiceStatus) []models.Invoice {
	if status == "" {
		return invoices
	}
	return filter(invoices, func(inv models.Invoice) bool {
		return inv.Status == status
	})
}

func filter(invoices []models.Invoice, keep func(models.Invoice) bool) []models.Invoice {
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if keep(inv) {
			out = append(out, inv)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
