package valuation

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"tokenScope/internal/model"
)

// Anchor records the pool a reference price was taken from.
type Anchor struct {
	DEX          string
	Pool         common.Address
	Price        decimal.Decimal
	LiquidityUSD decimal.Decimal
}

// PriceBook holds USD prices of reference and quote assets for one run.
// Stablecoins are 1 USD by assumption.
type PriceBook struct {
	chain  model.ChainContext
	usd    map[common.Address]decimal.Decimal
	native *Anchor
}

// NewPriceBook prices the wrapped native asset from the deepest
// native/stablecoin pool in pools, then each extra quote asset from its
// deepest pool against an already priced asset.
func NewPriceBook(chain model.ChainContext, pools []model.Pool) *PriceBook {
	b := &PriceBook{chain: chain, usd: make(map[common.Address]decimal.Decimal)}
	for _, s := range chain.Stablecoins {
		b.usd[s] = one
	}

	if a, ok := b.bestQuote(pools, chain.WrappedNative, chain.IsStablecoin); ok {
		b.usd[chain.WrappedNative] = a.Price
		b.native = &a
	}
	for _, q := range chain.ExtraQuotes {
		if _, ok := b.usd[q]; ok {
			continue
		}
		if a, ok := b.bestQuote(pools, q, chain.IsReference); ok {
			b.usd[q] = a.Price
		}
	}
	return b
}

// USD returns the USD price of a reference or quote asset.
func (b *PriceBook) USD(addr common.Address) (decimal.Decimal, bool) {
	p, ok := b.usd[addr]
	return p, ok
}

// NativeUSD returns the wrapped native price when an anchor was found.
func (b *PriceBook) NativeUSD() (decimal.Decimal, bool) {
	if b.native == nil {
		return decimal.Decimal{}, false
	}
	return b.native.Price, true
}

// NativeAnchor returns the pool the native price came from.
func (b *PriceBook) NativeAnchor() (Anchor, bool) {
	if b.native == nil {
		return Anchor{}, false
	}
	return *b.native, true
}

func (b *PriceBook) bestQuote(pools []model.Pool, asset common.Address, accept func(common.Address) bool) (Anchor, bool) {
	var best Anchor
	found := false
	for _, p := range pools {
		// stable-swap prices assume a peg, useless for pricing a volatile asset
		if p.Kind == model.PoolStableSwap || hasZeroReserve(p) {
			continue
		}
		ai := p.Side(asset)
		if ai < 0 {
			continue
		}
		for qi, t := range p.Tokens {
			if qi == ai || !accept(t.Address) {
				continue
			}
			quoteUSD, ok := b.usd[t.Address]
			if !ok {
				continue
			}
			price, ok := spotPrice(p, ai, qi)
			if !ok {
				continue
			}
			liq, ok := liquidityFromSide(p, qi, quoteUSD)
			if !ok {
				continue
			}
			cand := Anchor{DEX: p.DEX, Pool: p.Address, Price: price.Mul(quoteUSD), LiquidityUSD: liq}
			if !found || deeper(cand, best) {
				best, found = cand, true
			}
		}
	}
	return best, found
}

func deeper(a, b Anchor) bool {
	if c := a.LiquidityUSD.Cmp(b.LiquidityUSD); c != 0 {
		return c > 0
	}
	if a.DEX != b.DEX {
		return a.DEX < b.DEX
	}
	return strings.ToLower(a.Pool.Hex()) < strings.ToLower(b.Pool.Hex())
}
