package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// PoolKind names the pricing invariant of a pool.
type PoolKind string

const (
	PoolConstantProduct       PoolKind = "constant_product"
	PoolConcentratedLiquidity PoolKind = "concentrated_liquidity"
	PoolStableSwap            PoolKind = "stable_swap"
	PoolWeighted              PoolKind = "weighted"
)

// PoolToken is one side of a pool at the pinned block.
type PoolToken struct {
	Address  common.Address   `json:"address"`
	Symbol   string           `json:"symbol,omitempty"`
	Decimals *uint8           `json:"decimals,omitempty"`
	Reserve  *big.Int         `json:"reserve"`
	Weight   *decimal.Decimal `json:"weight,omitempty"`
}

// Pool is an immutable snapshot of a discovered pool.
type Pool struct {
	DEX          string         `json:"dex"`
	Address      common.Address `json:"address"`
	Kind         PoolKind       `json:"kind"`
	Tokens       []PoolToken    `json:"tokens"`
	FeeTierBps   *uint32        `json:"fee_tier_bps,omitempty"`
	SqrtPriceX96 *big.Int       `json:"sqrt_price_x96,omitempty"`
	PoolID       *common.Hash   `json:"pool_id,omitempty"`
}

// Side returns the index of addr within the pool tokens, or -1.
func (p Pool) Side(addr common.Address) int {
	for i, t := range p.Tokens {
		if t.Address == addr {
			return i
		}
	}
	return -1
}

// Contains reports whether addr is one of the pool tokens.
func (p Pool) Contains(addr common.Address) bool {
	return p.Side(addr) >= 0
}

// ValuedPool is a pool priced against a reference asset.
type ValuedPool struct {
	Pool
	Reference        *common.Address  `json:"reference,omitempty"`
	PriceInReference *decimal.Decimal `json:"price_in_reference,omitempty"`
	PriceInNative    *decimal.Decimal `json:"price_in_native,omitempty"`
	PriceUSD         *decimal.Decimal `json:"price_usd,omitempty"`
	LiquidityUSD     *decimal.Decimal `json:"liquidity_usd"`
}

// Priced reports whether the USD liquidity is known.
func (v ValuedPool) Priced() bool {
	return v.LiquidityUSD != nil
}
