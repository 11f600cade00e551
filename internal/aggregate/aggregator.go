// Package aggregate merges per-adapter pools into one ranked liquidity view.
package aggregate

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"tokenScope/internal/model"
)

// MaxTopPools caps the ranked list.
const MaxTopPools = 5

// Input is the joined result of one discovery fan-out. Pools holds only
// pools from adapters that completed.
type Input struct {
	Pools          []model.ValuedPool
	Attempted      int
	FailedAdapters []string
	NativePriceUSD *decimal.Decimal
}

// Config controls aggregation behavior.
type Config struct {
	TopN int
}

func (c Config) topN() int {
	if c.TopN <= 0 || c.TopN > MaxTopPools {
		return MaxTopPools
	}
	return c.TopN
}

// Aggregate deduplicates by pool address, ranks by USD liquidity with unknown
// values last, and totals the full deduplicated set.
func Aggregate(cfg Config, in Input) model.AggregatedLiquidity {
	pools := dedupe(in.Pools)
	sort.SliceStable(pools, func(i, j int) bool { return ranksBefore(pools[i], pools[j]) })

	top := pools
	if n := cfg.topN(); len(top) > n {
		top = top[:n]
	}

	out := model.AggregatedLiquidity{
		TopPools:       append([]model.ValuedPool{}, top...),
		PoolCount:      len(pools),
		NativePriceUSD: in.NativePriceUSD,
	}
	if len(in.FailedAdapters) > 0 {
		out.FailedAdapters = append([]string(nil), in.FailedAdapters...)
		sort.Strings(out.FailedAdapters)
	}

	total := decimal.Zero
	priced := 0
	for _, p := range pools {
		if p.LiquidityUSD == nil {
			out.UnpricedCount++
			continue
		}
		total = total.Add(*p.LiquidityUSD)
		priced++
	}

	out.Status = status(len(pools), in.Attempted, len(out.FailedAdapters))
	switch {
	case priced > 0:
		out.TotalUSD = &total
	case len(pools) == 0 && out.Status == model.LiquidityNoPools:
		out.TotalUSD = &total
	}
	return out
}

// Note flags a total that leaves out unpriced pools. It returns nil when the
// total covers every pool or is itself unknown.
func Note(liq model.AggregatedLiquidity) *model.Diagnostic {
	if liq.TotalUSD == nil || liq.UnpricedCount == 0 {
		return nil
	}
	d := model.NewDiagnostic("aggregate", model.DiagPricingUnresolved,
		"total_usd covers %d of %d pools; %d unpriced pools excluded",
		liq.PoolCount-liq.UnpricedCount, liq.PoolCount, liq.UnpricedCount)
	return &d
}

func status(pools, attempted, failed int) model.LiquidityStatus {
	switch {
	case attempted > 0 && failed >= attempted:
		return model.LiquidityFailed
	case failed > 0:
		return model.LiquidityPartial
	case pools == 0:
		return model.LiquidityNoPools
	default:
		return model.LiquidityOK
	}
}

// dedupe keeps one entry per pool address, choosing the higher-ranked one so
// the result does not depend on adapter completion order.
func dedupe(pools []model.ValuedPool) []model.ValuedPool {
	index := make(map[common.Address]int, len(pools))
	out := make([]model.ValuedPool, 0, len(pools))
	for _, p := range pools {
		if i, ok := index[p.Address]; ok {
			if ranksBefore(p, out[i]) {
				out[i] = p
			}
			continue
		}
		index[p.Address] = len(out)
		out = append(out, p)
	}
	return out
}

// ranksBefore orders by liquidity descending, unknown last, then by
// (dex, address) ascending.
func ranksBefore(a, b model.ValuedPool) bool {
	switch {
	case a.LiquidityUSD != nil && b.LiquidityUSD == nil:
		return true
	case a.LiquidityUSD == nil && b.LiquidityUSD != nil:
		return false
	case a.LiquidityUSD != nil:
		if c := a.LiquidityUSD.Cmp(*b.LiquidityUSD); c != 0 {
			return c > 0
		}
	}
	if a.DEX != b.DEX {
		return a.DEX < b.DEX
	}
	return strings.ToLower(a.Address.Hex()) < strings.ToLower(b.Address.Hex())
}
