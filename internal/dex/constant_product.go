package dex

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenScope/internal/model"
	"tokenScope/internal/probe"
)

// ConstantProduct serves every Uniswap v2 shaped fork; forks differ only by
// factory address and swap fee.
type ConstantProduct struct {
	name    string
	chainID uint64
	factory common.Address
	feeBps  uint32
}

func NewConstantProduct(spec Spec) (*ConstantProduct, error) {
	factory, err := parseAddress(spec.Name, "factory", spec.Factory)
	if err != nil {
		return nil, err
	}
	return &ConstantProduct{name: spec.Name, chainID: spec.ChainID, factory: factory, feeBps: spec.FeeBps}, nil
}

func (a *ConstantProduct) Name() string         { return a.name }
func (a *ConstantProduct) Kind() model.PoolKind { return model.PoolConstantProduct }
func (a *ConstantProduct) Chains() []uint64     { return []uint64{a.chainID} }

func (a *ConstantProduct) DiscoverPools(ctx context.Context, env Env, target common.Address) ([]model.Pool, error) {
	var pools []model.Pool
	for _, quote := range quotesFor(env.Chain, target) {
		pair, err := callAddress(ctx, env.Prober, a.factory, v2FactoryABI, "getPair", target, quote)
		if err != nil {
			if probe.IsUnsupported(err) {
				env.logger().Debug("getPair unsupported", zap.String("dex", a.name), zap.Error(err))
				continue
			}
			return nil, err
		}
		if pair == (common.Address{}) {
			continue
		}

		pool, err := a.readPair(ctx, env, pair)
		if err != nil {
			if probe.IsUnsupported(err) {
				env.logger().Debug("pair unreadable", zap.String("dex", a.name), zap.String("pool", pair.Hex()), zap.Error(err))
				continue
			}
			return nil, err
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

func (a *ConstantProduct) readPair(ctx context.Context, env Env, pair common.Address) (model.Pool, error) {
	token0, err := callAddress(ctx, env.Prober, pair, v2PairABI, "token0")
	if err != nil {
		return model.Pool{}, err
	}
	token1, err := callAddress(ctx, env.Prober, pair, v2PairABI, "token1")
	if err != nil {
		return model.Pool{}, err
	}
	values, err := callMethod(ctx, env.Prober, pair, v2PairABI, "getReserves")
	if err != nil {
		return model.Pool{}, err
	}
	if len(values) < 2 {
		return model.Pool{}, fmt.Errorf("getReserves on %s: %w: %d outputs", pair.Hex(), probe.ErrUnsupported, len(values))
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return model.Pool{}, err
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return model.Pool{}, err
	}

	side0, err := poolToken(ctx, env, token0, reserve0)
	if err != nil {
		return model.Pool{}, err
	}
	side1, err := poolToken(ctx, env, token1, reserve1)
	if err != nil {
		return model.Pool{}, err
	}

	pool := model.Pool{
		DEX:     a.name,
		Address: pair,
		Kind:    model.PoolConstantProduct,
		Tokens:  []model.PoolToken{side0, side1},
	}
	if a.feeBps > 0 {
		fee := a.feeBps
		pool.FeeTierBps = &fee
	}
	return pool, nil
}

func parseAddress(adapter, field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("adapter %s: invalid %s address %q", adapter, field, value)
	}
	return common.HexToAddress(value), nil
}
