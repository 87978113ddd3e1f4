package shared

import "github.com/shopspring/decimal"

// Money quantisation scales. Monetary amounts are stored with two decimal
// places; index factors keep four.
const (
	MoneyScale = 2
	RateScale  = 4
)

// RoundMoney quantises a monetary amount to scale 2, half-up. Matches the
// rounding the statement columns are persisted with.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(MoneyScale)
}

// RoundRate quantises a rate (the compounded index factor minus one) to
// scale 4, half-up.
func RoundRate(v decimal.Decimal) decimal.Decimal {
	return v.Round(RateScale)
}

// Percent converts a stored percentage (e.g. 10.00) into its multiplier
// fraction (0.10).
func Percent(rate decimal.Decimal) decimal.Decimal {
	return rate.Div(decimal.NewFromInt(100))
}
