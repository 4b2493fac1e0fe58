package pricing_test

import (
	"fmt"

	"billing/internal/pricing"
	"github.com/shopspring/decimal"
)

// Example prices two lines, one of them untaxed.
func Example() {
	engine := pricing.NewEngine()

	totals := engine.Compute([]pricing.Line{
		{UnitPrice: decimal.NewFromInt(100), Quantity: 1, TaxRate: decimal.NewFromInt(10)},
		{UnitPrice: decimal.NewFromInt(200), Quantity: 3, TaxRate: decimal.Zero},
	})

	for _, lt := range totals.Lines {
		fmt.Printf("%s x %d = %s (+%s tax)\n", lt.UnitPrice.StringFixed(2), lt.Quantity, lt.Net.StringFixed(2), lt.Tax.StringFixed(2))
	}
	fmt.Println("sub:", totals.SubTotal.StringFixed(2))
	fmt.Println("tax:", totals.TaxTotal.StringFixed(2))
	fmt.Println("grand:", totals.GrandTotal.StringFixed(2))

	// Output:
	// 100.00 x 1 = 100.00 (+10.00 tax)
	// 200.00 x 3 = 600.00 (+0.00 tax)
	// sub: 700.00
	// tax: 10.00
	// grand: 710.00
}

// ExampleEngine_Coerce converts loosely typed form values into a line.
func ExampleEngine_Coerce() {
	engine := pricing.NewEngine()

	line := engine.Coerce(pricing.RawLine{UnitPrice: "49.90", Quantity: "2", TaxRate: "5"})
	lt := pricing.PriceLine(line)

	fmt.Println(lt.Total.StringFixed(2))
	// Output: 104.79
}
