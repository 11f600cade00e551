package valuation

import (
	"math/big"

	"github.com/shopspring/decimal"

	"tokenScope/internal/model"
)

// spotPrice returns the price of one whole unit of Tokens[base] in whole
// units of Tokens[quote].
func spotPrice(p model.Pool, base, quote int) (decimal.Decimal, bool) {
	b, q := p.Tokens[base], p.Tokens[quote]
	if b.Decimals == nil || q.Decimals == nil {
		return decimal.Decimal{}, false
	}

	switch p.Kind {
	case model.PoolConcentratedLiquidity:
		if p.SqrtPriceX96 != nil && p.SqrtPriceX96.Sign() > 0 && len(p.Tokens) == 2 {
			return sqrtPrice(p.SqrtPriceX96, *p.Tokens[0].Decimals, *p.Tokens[1].Decimals, base == 0)
		}
	case model.PoolStableSwap:
		// pegged assets trade near 1:1 around the invariant's balance point
		return one, true
	case model.PoolWeighted:
		bAmt, _ := sideAmount(b)
		qAmt, _ := sideAmount(q)
		if bAmt.IsZero() {
			return decimal.Decimal{}, false
		}
		num := qAmt.DivRound(weight(p, quote), divPrecision)
		den := bAmt.DivRound(weight(p, base), divPrecision)
		return num.DivRound(den, divPrecision), true
	}

	bAmt, _ := sideAmount(b)
	qAmt, _ := sideAmount(q)
	if bAmt.IsZero() {
		return decimal.Decimal{}, false
	}
	return qAmt.DivRound(bAmt, divPrecision), true
}

// sqrtPrice converts a Q64.96 square-root price into whole-unit terms.
// The raw value is token1 per token0.
func sqrtPrice(sqrtX96 *big.Int, dec0, dec1 uint8, baseIsToken0 bool) (decimal.Decimal, bool) {
	num := new(big.Int).Mul(sqrtX96, sqrtX96)
	raw := decimal.NewFromBigInt(num, 0).DivRound(decimal.NewFromBigInt(q192, 0), divPrecision)
	price := raw.Shift(int32(dec0) - int32(dec1))
	if baseIsToken0 {
		return price, price.IsPositive()
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, false
	}
	return one.DivRound(price, divPrecision), true
}

// weight returns the normalized weight of a side, defaulting to 1/n.
func weight(p model.Pool, idx int) decimal.Decimal {
	if w := p.Tokens[idx].Weight; w != nil && w.IsPositive() {
		return *w
	}
	return one.DivRound(decimal.NewFromInt(int64(len(p.Tokens))), divPrecision)
}

// liquidityFromSide extrapolates total pool value from one priced side.
func liquidityFromSide(p model.Pool, idx int, usd decimal.Decimal) (decimal.Decimal, bool) {
	amount, ok := sideAmount(p.Tokens[idx])
	if !ok {
		return decimal.Decimal{}, false
	}
	value := amount.Mul(usd)
	switch p.Kind {
	case model.PoolWeighted:
		return value.DivRound(weight(p, idx), divPrecision), true
	case model.PoolStableSwap:
		return value.Mul(decimal.NewFromInt(int64(len(p.Tokens)))), true
	default:
		return value.Mul(two), true
	}
}
