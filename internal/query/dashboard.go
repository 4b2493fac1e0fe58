package query

import (
	"sort"
	"time"

	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

// DefaultRecentLimit is how many invoices the dashboard lists.
const DefaultRecentLimit = 5

// Dashboard is the overview of the catalog and invoicing activity.
type Dashboard struct {
	TotalProducts   int              `json:"totalProducts"`
	TotalCustomers  int              `json:"totalCustomers"`
	TotalInvoices   int              `json:"totalInvoices"`
	TotalSales      decimal.Decimal  `json:"totalSales"`
	PaidInvoices    int              `json:"paidInvoices"`
	PendingInvoices int              `json:"pendingInvoices"`
	MonthlySales    []Point          `json:"monthlySales"`
	RecentInvoices  []models.Invoice `json:"recentInvoices"`
}

// BuildDashboard summarises the collections. Total sales count every invoice
// regardless of status; anything not PAID is pending.
func BuildDashboard(products []models.Product, customers []models.Customer, invoices []models.Invoice, loc *time.Location) Dashboard {
	d := Dashboard{
		TotalProducts:  len(products),
		TotalCustomers: len(customers),
		TotalInvoices:  len(invoices),
		TotalSales:     Summarize(invoices).TotalAmount,
		RecentInvoices: Recent(invoices, DefaultRecentLimit),
	}

	for _, inv := range invoices {
		if inv.IsPaid() {
			d.PaidInvoices++
		} else {
			d.PendingInvoices++
		}
	}

	// FieldGrandTotal is always known, so the error is impossible here.
	monthly, _ := AggregateByMonth(invoices, FieldGrandTotal, loc)
	d.MonthlySales = Series(monthly)

	return d
}

// Recent returns up to n invoices, newest first. Invoices created at the same
// instant keep their stored order reversed, so the later insert comes first.
func Recent(invoices []models.Invoice, n int) []models.Invoice {
	if n <= 0 {
		return []models.Invoice{}
	}

	sorted := make([]models.Invoice, len(invoices))
	for i := range invoices {
		sorted[len(invoices)-1-i] = invoices[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
