package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// RawLine carries loosely typed line fields, as they arrive from forms,
// spreadsheets or stored records.
type RawLine struct {
	UnitPrice any
	Quantity  any
	TaxRate   any
}

// Coerce converts a RawLine into a Line. Missing values become zero. Values
// that are present but not numeric also become zero, and are logged as
// warnings so bad input stays visible. Fractional quantities are truncated.
func (e *Engine) Coerce(raw RawLine) Line {
	price := e.coerceDecimal("unit_price", raw.UnitPrice)
	rate := e.coerceDecimal("tax_rate", raw.TaxRate)
	qty := e.coerceDecimal("quantity", raw.Quantity)

	return Line{
		UnitPrice: price,
		Quantity:  int(qty.Truncate(0).IntPart()),
		TaxRate:   rate,
	}
}

func (e *Engine) coerceDecimal(field string, v any) decimal.Decimal {
	d, err := ToDecimal(v)
	if err != nil {
		e.log.Warn().
			Str("field", field).
			Interface("value", v).
			Err(err).
			Msg("Non-numeric value treated as zero")
		return decimal.Zero
	}
	return d
}

// ToDecimal converts common numeric representations into a decimal. nil and
// empty strings are zero. Anything else that is not a finite number is an
// error.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return n, nil
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, nil
		}
		return *n, nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number: %v", n)
		}
		return decimal.NewFromFloat(n), nil
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number: %v", n)
		}
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case uint:
		return decimal.NewFromUint64(uint64(n)), nil
	case uint64:
		return decimal.NewFromUint64(n), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %T", v)
	}
}
