package valuation

import (
	"math/big"

	"github.com/shopspring/decimal"

	"tokenScope/internal/model"
)

const (
	// USDScale is the fixed scale of reported USD liquidity.
	USDScale = 6
	// PriceScale is the fixed scale of reported per-token prices.
	PriceScale = 18
	// divPrecision bounds intermediate divisions.
	divPrecision = 60
)

var (
	one  = decimal.NewFromInt(1)
	two  = decimal.NewFromInt(2)
	q192 = new(big.Int).Lsh(big.NewInt(1), 192)
)

// scaled converts a raw integer amount into whole units.
func scaled(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// sideAmount returns the scaled reserve of one side, or false when its
// decimals are unknown.
func sideAmount(t model.PoolToken) (decimal.Decimal, bool) {
	if t.Decimals == nil {
		return decimal.Decimal{}, false
	}
	return scaled(t.Reserve, *t.Decimals), true
}

func hasZeroReserve(p model.Pool) bool {
	for _, t := range p.Tokens {
		if t.Reserve == nil || t.Reserve.Sign() == 0 {
			return true
		}
	}
	return false
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
