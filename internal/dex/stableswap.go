package dex

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenScope/internal/model"
	"tokenScope/internal/probe"
)

// nativePlaceholder stands for the chain's native coin in Curve pools.
var nativePlaceholder = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// StableSwap discovers Curve pools through the main registry.
type StableSwap struct {
	name     string
	chainID  uint64
	registry common.Address
}

func NewStableSwap(spec Spec) (*StableSwap, error) {
	registry, err := parseAddress(spec.Name, "registry", spec.Registry)
	if err != nil {
		return nil, err
	}
	return &StableSwap{name: spec.Name, chainID: spec.ChainID, registry: registry}, nil
}

func (a *StableSwap) Name() string         { return a.name }
func (a *StableSwap) Kind() model.PoolKind { return model.PoolStableSwap }
func (a *StableSwap) Chains() []uint64     { return []uint64{a.chainID} }

func (a *StableSwap) DiscoverPools(ctx context.Context, env Env, target common.Address) ([]model.Pool, error) {
	seen := make(map[common.Address]struct{})
	var pools []model.Pool
	for _, quote := range quotesFor(env.Chain, target) {
		addr, err := callAddress(ctx, env.Prober, a.registry, curveRegistryABI, "find_pool_for_coins", target, quote)
		if err != nil {
			if probe.IsUnsupported(err) {
				env.logger().Debug("find_pool_for_coins unsupported", zap.String("dex", a.name), zap.Error(err))
				continue
			}
			return nil, err
		}
		if addr == (common.Address{}) {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}

		pool, ok, err := a.readPool(ctx, env, addr, target)
		if err != nil {
			if probe.IsUnsupported(err) {
				env.logger().Debug("pool unreadable", zap.String("dex", a.name), zap.String("pool", addr.Hex()), zap.Error(err))
				continue
			}
			return nil, err
		}
		if ok {
			pools = append(pools, pool)
		}
	}
	return pools, nil
}

// readPool returns every non-empty coin slot of the pool.
func (a *StableSwap) readPool(ctx context.Context, env Env, addr, target common.Address) (model.Pool, bool, error) {
	values, err := callMethod(ctx, env.Prober, a.registry, curveRegistryABI, "get_coins", addr)
	if err != nil {
		return model.Pool{}, false, err
	}
	coins, err := asAddresses(values[0])
	if err != nil {
		return model.Pool{}, false, err
	}
	values, err = callMethod(ctx, env.Prober, a.registry, curveRegistryABI, "get_balances", addr)
	if err != nil {
		return model.Pool{}, false, err
	}
	balances, err := asBigInts(values[0])
	if err != nil {
		return model.Pool{}, false, err
	}

	pool := model.Pool{DEX: a.name, Address: addr, Kind: model.PoolStableSwap}
	for i, coin := range coins {
		if coin == (common.Address{}) {
			continue
		}
		reserve := new(big.Int)
		if i < len(balances) && balances[i] != nil {
			reserve = balances[i]
		}
		if coin == nativePlaceholder {
			pool.Tokens = append(pool.Tokens, nativeToken(env.Chain, reserve))
			continue
		}
		side, err := poolToken(ctx, env, coin, reserve)
		if err != nil {
			return model.Pool{}, false, err
		}
		pool.Tokens = append(pool.Tokens, side)
	}
	if len(pool.Tokens) < 2 || !pool.Contains(target) {
		return model.Pool{}, false, nil
	}
	return pool, true, nil
}

// nativeToken books a native coin balance as the wrapped native asset.
func nativeToken(chain model.ChainContext, reserve *big.Int) model.PoolToken {
	decimals := chain.NativeDecimals
	if decimals == 0 {
		decimals = 18
	}
	return model.PoolToken{
		Address:  chain.WrappedNative,
		Symbol:   chain.NativeSymbol,
		Decimals: &decimals,
		Reserve:  reserve,
	}
}
