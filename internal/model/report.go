package model

import "github.com/shopspring/decimal"

// LiquidityStatus separates "nothing found" from "discovery failed".
type LiquidityStatus string

const (
	LiquidityOK      LiquidityStatus = "ok"
	LiquidityNoPools LiquidityStatus = "no_pools"
	LiquidityPartial LiquidityStatus = "partial"
	LiquidityFailed  LiquidityStatus = "failed"
)

// AggregatedLiquidity is the ranked, deduplicated liquidity section.
type AggregatedLiquidity struct {
	Status         LiquidityStatus  `json:"status"`
	TopPools       []ValuedPool     `json:"top_pools"`
	TotalUSD       *decimal.Decimal `json:"total_usd"`
	PoolCount      int              `json:"pool_count"`
	UnpricedCount  int              `json:"unpriced_count"`
	FailedAdapters []string         `json:"failed_adapters,omitempty"`
	NativePriceUSD *decimal.Decimal `json:"native_price_usd,omitempty"`
}

// Report is the immutable payload handed to the renderer.
type Report struct {
	Chain       string              `json:"chain"`
	ChainID     uint64              `json:"chain_id"`
	Block       uint64              `json:"block"`
	Token       TokenFacts          `json:"token"`
	Proxy       ProxyInfo           `json:"proxy"`
	Liquidity   AggregatedLiquidity `json:"liquidity"`
	Diagnostics []Diagnostic        `json:"diagnostics"`
	Partial     bool                `json:"partial"`
}
