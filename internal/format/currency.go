// Package format renders amounts the way the reports show them:
// "R$ 1.234.567,80", with "N/D" for anything that is not a number.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is shown in place of a missing or non-numeric amount.
const NotAvailable = "N/D"

const currencyPrefix = "R$ "

// BRL formats any numeric value as Brazilian currency. Non-numeric input,
// nil and non-finite floats yield NotAvailable.
func BRL(value interface{}) string {
	d, ok := toDecimal(value)
	if !ok {
		return NotAvailable
	}
	return BRLDecimal(d)
}

// BRLDecimal formats d with two decimals, dot grouping and comma decimals.
func BRLDecimal(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, found := strings.Cut(fixed, ".")
	if !found {
		fracPart = "00"
	}

	return currencyPrefix + sign + groupThousands(intPart) + "," + fracPart
}

// Count renders an item count as a plain integer.
func Count(n int64) string {
	return strconv.FormatInt(n, 10)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func toDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Decimal{}, false
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Decimal{}, false
		}
		return *v, true
	case decimal.NullDecimal:
		return v.Decimal, v.Valid
	case float64:
		return fromFloat(v)
	case float32:
		return fromFloat(float64(v))
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int8:
		return decimal.NewFromInt(int64(v)), true
	case int16:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case uint:
		return decimal.NewFromUint64(uint64(v)), true
	case uint8:
		return decimal.NewFromUint64(uint64(v)), true
	case uint16:
		return decimal.NewFromUint64(uint64(v)), true
	case uint32:
		return decimal.NewFromUint64(uint64(v)), true
	case uint64:
		return decimal.NewFromUint64(v), true
	default:
		return decimal.Decimal{}, false
	}
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(f), true
}
