package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Places is the number of fraction digits written for every amount,
// quantity and percentage in a generated document
const Places = 2

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// Fixed2 formats d with exactly two fraction digits.
// Halves round away from zero: 2.345 -> "2.35", -2.345 -> "-2.35".
func Fixed2(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Float64 returns the nearest float64 to d
func Float64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
