package token

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var magnitudes = []struct {
	exp    int32
	suffix string
}{
	{12, "T"},
	{9, "B"},
	{6, "M"},
	{3, "K"},
}

// FormatAmount scales a raw integer amount by 10^-decimals.
func FormatAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}

// HumanAmount renders a scaled amount with a K/M/B/T suffix and two decimals.
func HumanAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	d := decimal.NewFromBigInt(value, -int32(decimals))
	abs := d.Abs()
	for _, m := range magnitudes {
		unit := decimal.New(1, m.exp)
		if abs.GreaterThanOrEqual(unit) {
			return d.Div(unit).StringFixed(2) + m.suffix
		}
	}
	return d.StringFixed(2)
}
