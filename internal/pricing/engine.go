// Package pricing computes invoice totals from product line selections.
//
// All arithmetic is exact decimal arithmetic:
//
//	net   = unitPrice × quantity
//	tax   = net × taxRate / 100
//	total = net + tax
//
// and the invoice totals are the sums of the per-line values. Nothing is
// rounded here; presentation code decides how many places to show.
package pricing

import (
	"billing/internal/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Line is one priced selection: a product snapshot and a quantity.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	TaxRate   decimal.Decimal // percent
}

// LineTotal is a Line with its computed amounts.
type LineTotal struct {
	Line
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Total decimal.Decimal
}

// Totals holds the per-line and aggregate amounts of an invoice.
type Totals struct {
	Lines      []LineTotal
	SubTotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Engine computes invoice totals. It has no side effects beyond logging.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a pricing engine.
func NewEngine() *Engine {
	return &Engine{log: logger.WithComponent("pricing")}
}

// Compute prices every line and aggregates the invoice totals. Negative
// quantities are counted as zero.
func (e *Engine) Compute(lines []Line) Totals {
	totals := Totals{
		Lines:      make([]LineTotal, 0, len(lines)),
		SubTotal:   decimal.Zero,
		TaxTotal:   decimal.Zero,
		GrandTotal: decimal.Zero,
	}

	for i, line := range lines {
		if line.Quantity < 0 {
			e.log.Warn().
				Int("line", i).
				Int("quantity", line.Quantity).
				Msg("Negative quantity clamped to zero")
			line.Quantity = 0
		}

		lt := PriceLine(line)
		totals.Lines = append(totals.Lines, lt)
		totals.SubTotal = totals.SubTotal.Add(lt.Net)
		totals.TaxTotal = totals.TaxTotal.Add(lt.Tax)
	}
	totals.GrandTotal = totals.SubTotal.Add(totals.TaxTotal)

	return totals
}

// PriceLine computes the amounts of a single line.
func PriceLine(line Line) LineTotal {
	net := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	// Shift(-2) divides by 100 without a division precision limit.
	tax := net.Mul(line.TaxRate).Shift(-2)

	return LineTotal{
		Line:  line,
		Net:   net,
		Tax:   tax,
		Total: net.Add(tax),
	}
}
