package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenScope/internal/model"
	"tokenScope/internal/probe"
)

// DefaultFeeTiers are the v3 fee tiers in hundredths of a basis point.
var DefaultFeeTiers = []uint32{100, 500, 2500, 3000, 10000}

// Concentrated serves Uniswap v3 shaped factories. Reserves are the pool's
// token balances; the spot price comes from slot0.
type Concentrated struct {
	name     string
	chainID  uint64
	factory  common.Address
	feeTiers []uint32
}

func NewConcentrated(spec Spec) (*Concentrated, error) {
	factory, err := parseAddress(spec.Name, "factory", spec.Factory)
	if err != nil {
		return nil, err
	}
	tiers := spec.FeeTiers
	if len(tiers) == 0 {
		tiers = DefaultFeeTiers
	}
	return &Concentrated{name: spec.Name, chainID: spec.ChainID, factory: factory, feeTiers: tiers}, nil
}

func (a *Concentrated) Name() string         { return a.name }
func (a *Concentrated) Kind() model.PoolKind { return model.PoolConcentratedLiquidity }
func (a *Concentrated) Chains() []uint64     { return []uint64{a.chainID} }

func (a *Concentrated) DiscoverPools(ctx context.Context, env Env, target common.Address) ([]model.Pool, error) {
	var pools []model.Pool
	for _, quote := range quotesFor(env.Chain, target) {
		for _, fee := range a.feeTiers {
			addr, err := callAddress(ctx, env.Prober, a.factory, v3FactoryABI, "getPool", target, quote, new(big.Int).SetUint64(uint64(fee)))
			if err != nil {
				if probe.IsUnsupported(err) {
					env.logger().Debug("getPool unsupported", zap.String("dex", a.name), zap.Uint32("fee", fee), zap.Error(err))
					continue
				}
				return nil, err
			}
			if addr == (common.Address{}) {
				continue
			}

			pool, err := a.readPool(ctx, env, addr, fee)
			if err != nil {
				if probe.IsUnsupported(err) {
					env.logger().Debug("pool unreadable", zap.String("dex", a.name), zap.String("pool", addr.Hex()), zap.Error(err))
					continue
				}
				return nil, err
			}
			pools = append(pools, pool)
		}
	}
	return pools, nil
}

func (a *Concentrated) readPool(ctx context.Context, env Env, addr common.Address, fee uint32) (model.Pool, error) {
	token0, err := callAddress(ctx, env.Prober, addr, v3PoolABI, "token0")
	if err != nil {
		return model.Pool{}, err
	}
	token1, err := callAddress(ctx, env.Prober, addr, v3PoolABI, "token1")
	if err != nil {
		return model.Pool{}, err
	}
	values, err := callMethod(ctx, env.Prober, addr, v3PoolABI, "slot0")
	if err != nil {
		return model.Pool{}, err
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return model.Pool{}, fmt.Errorf("slot0 on %s: %w", addr.Hex(), err)
	}

	balance0, err := balanceOf(ctx, env.Prober, token0, addr)
	if err != nil {
		return model.Pool{}, err
	}
	balance1, err := balanceOf(ctx, env.Prober, token1, addr)
	if err != nil {
		return model.Pool{}, err
	}

	side0, err := poolToken(ctx, env, token0, balance0)
	if err != nil {
		return model.Pool{}, err
	}
	side1, err := poolToken(ctx, env, token1, balance1)
	if err != nil {
		return model.Pool{}, err
	}

	feeBps := fee / 100
	return model.Pool{
		DEX:          a.name,
		Address:      addr,
		Kind:         model.PoolConcentratedLiquidity,
		Tokens:       []model.PoolToken{side0, side1},
		FeeTierBps:   &feeBps,
		SqrtPriceX96: sqrtPrice,
	}, nil
}
