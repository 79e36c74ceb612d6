package services

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// pence rounds an amount of pence to the nearest whole penny, half away
// from zero.
func pence(v decimal.Decimal) int64 {
	return v.Round(0).IntPart()
}

// rate converts a float rate from config into a decimal.
func rate(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// FormatGBP renders pence as pounds, e.g. 1234 -> "£12.34".
func FormatGBP(p int64) string {
	d := decimal.NewFromInt(p).Div(hundred)
	if p < 0 {
		return "-£" + d.Neg().StringFixed(2)
	}
	return "£" + d.StringFixed(2)
}

// percentOf returns part/whole as a percentage rounded to one decimal
// place, or 0 when whole is 0.
func percentOf(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	pct, _ := decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Round(1).Float64()
	return pct
}
