package types

import "github.com/shopspring/decimal"

var (
	decimalZero    = decimal.Zero
	decimalHundred = decimal.NewFromInt(100)
)

// RoundMoney rounds a monetary decimal to two places, half away from zero,
// and returns it as a float64 for JSON serialization. Rounding happens here
// and only here; internal arithmetic stays in decimal precision so repeated
// balance updates cannot drift.
func RoundMoney(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
