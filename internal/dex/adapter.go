// Package dex discovers pools per exchange family.
package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenScope/internal/model"
	"tokenScope/internal/probe"
	"tokenScope/internal/token"
)

// Env is the read-only context an adapter discovers pools in.
type Env struct {
	Chain  model.ChainContext
	Prober *probe.Prober
	Tokens *token.MetaCache
	Logger *zap.Logger
}

func (e Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Adapter discovers pools of one exchange on the chains it is configured for.
// Finding no pools is a normal outcome; an error means discovery failed.
type Adapter interface {
	Name() string
	Kind() model.PoolKind
	Chains() []uint64
	DiscoverPools(ctx context.Context, env Env, token common.Address) ([]model.Pool, error)
}

// quotesFor lists the assets token is paired against.
func quotesFor(chain model.ChainContext, target common.Address) []common.Address {
	quotes := chain.QuoteAssets()
	out := make([]common.Address, 0, len(quotes))
	for _, q := range quotes {
		if q != target && q != (common.Address{}) {
			out = append(out, q)
		}
	}
	return out
}

// poolToken reads metadata for one side of a pool.
func poolToken(ctx context.Context, env Env, addr common.Address, reserve *big.Int) (model.PoolToken, error) {
	meta, err := env.Tokens.Lookup(ctx, env.Prober, addr, env.logger())
	if err != nil {
		return model.PoolToken{}, fmt.Errorf("token %s metadata: %w", addr.Hex(), err)
	}
	if reserve == nil {
		reserve = new(big.Int)
	}
	return model.PoolToken{
		Address:  addr,
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Reserve:  reserve,
	}, nil
}

func supports(a Adapter, chainID uint64) bool {
	for _, id := range a.Chains() {
		if id == chainID {
			return true
		}
	}
	return false
}
