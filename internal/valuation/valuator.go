// Package valuation prices discovered pools in USD.
package valuation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"tokenScope/internal/model"
)

const component = "valuation"

// Valuator prices pools against the reference assets of one chain.
type Valuator struct {
	chain model.ChainContext
	book  *PriceBook
}

func NewValuator(chain model.ChainContext, book *PriceBook) *Valuator {
	return &Valuator{chain: chain, book: book}
}

// Value prices pool with respect to target. An unresolvable price leaves
// LiquidityUSD nil and returns a diagnostic; the pool is still returned.
func (v *Valuator) Value(pool model.Pool, target common.Address) (model.ValuedPool, *model.Diagnostic) {
	vp := model.ValuedPool{Pool: pool}
	ti := pool.Side(target)
	if ti < 0 || len(pool.Tokens) < 2 {
		return vp, v.unresolved(pool, "pool does not pair %s", target.Hex())
	}
	if hasZeroReserve(pool) {
		vp.LiquidityUSD = ptr(decimal.Zero.Round(USDScale))
		return vp, nil
	}

	ri, refUSD, ok := v.reference(pool, ti)
	if !ok {
		if v.pairsNative(pool, ti) {
			return vp, v.unresolved(pool, "no native/stablecoin anchor pool to price %s", v.chain.WrappedNative.Hex())
		}
		return vp, v.unresolved(pool, "no priced reference asset")
	}
	ref := pool.Tokens[ri].Address
	vp.Reference = &ref

	if pool.Tokens[ti].Decimals == nil {
		return vp, v.unresolved(pool, "decimals unknown for %s", target.Hex())
	}
	if pool.Tokens[ri].Decimals == nil {
		return vp, v.unresolved(pool, "decimals unknown for %s", ref.Hex())
	}

	price, ok := spotPrice(pool, ti, ri)
	if !ok {
		return vp, v.unresolved(pool, "spot price unavailable")
	}
	priceUSD := price.Mul(refUSD)
	vp.PriceInReference = ptr(price.Round(PriceScale))
	vp.PriceUSD = ptr(priceUSD.Round(PriceScale))
	if native, ok := v.book.NativeUSD(); ok && native.IsPositive() {
		vp.PriceInNative = ptr(priceUSD.DivRound(native, PriceScale))
	}

	liq, err := v.liquidity(pool, ti, ri, priceUSD, refUSD)
	if err != nil {
		return vp, v.unresolved(pool, "%v", err)
	}
	vp.LiquidityUSD = ptr(liq.Round(USDScale))
	return vp, nil
}

// reference picks the pricing side: a stablecoin, then the wrapped native
// asset, then any other side with a known USD price.
func (v *Valuator) reference(pool model.Pool, ti int) (int, decimal.Decimal, bool) {
	pick := func(match func(common.Address) bool) (int, decimal.Decimal, bool) {
		for i, t := range pool.Tokens {
			if i == ti || !match(t.Address) {
				continue
			}
			if usd, ok := v.book.USD(t.Address); ok {
				return i, usd, true
			}
		}
		return -1, decimal.Decimal{}, false
	}
	if i, usd, ok := pick(v.chain.IsStablecoin); ok {
		return i, usd, true
	}
	if i, usd, ok := pick(v.chain.IsWrappedNative); ok {
		return i, usd, true
	}
	return pick(func(common.Address) bool { return true })
}

func (v *Valuator) pairsNative(pool model.Pool, ti int) bool {
	for i, t := range pool.Tokens {
		if i != ti && v.chain.IsWrappedNative(t.Address) {
			return true
		}
	}
	return false
}

// liquidity applies the per-kind convention: twice the reference side for
// two-sided pools, reference side over its weight for weighted pools, and
// the sum of all coins for stable-swap pools. Every stable-swap coin other
// than the target needs its own book price.
func (v *Valuator) liquidity(pool model.Pool, ti, ri int, priceUSD, refUSD decimal.Decimal) (decimal.Decimal, error) {
	if pool.Kind != model.PoolStableSwap {
		liq, ok := liquidityFromSide(pool, ri, refUSD)
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("decimals unknown for %s", pool.Tokens[ri].Address.Hex())
		}
		return liq, nil
	}
	total := decimal.Zero
	for i, t := range pool.Tokens {
		amount, ok := sideAmount(t)
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("decimals unknown for %s", t.Address.Hex())
		}
		usd := priceUSD
		if i != ti {
			if usd, ok = v.book.USD(t.Address); !ok {
				return decimal.Decimal{}, fmt.Errorf("no USD price for coin %s", t.Address.Hex())
			}
		}
		total = total.Add(amount.Mul(usd))
	}
	return total, nil
}

func (v *Valuator) unresolved(pool model.Pool, format string, args ...interface{}) *model.Diagnostic {
	d := model.NewDiagnostic(component, model.DiagPricingUnresolved, "%s pool %s: %s", pool.DEX, pool.Address.Hex(), fmt.Sprintf(format, args...))
	return &d
}
