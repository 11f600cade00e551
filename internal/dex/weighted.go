package dex

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tokenScope/internal/model"
	"tokenScope/internal/probe"
)

const weightDecimals = 18

// Weighted reads Balancer v2 pools from the vault. The vault has no
// token-to-pool index, so candidate pool ids are configured.
type Weighted struct {
	name    string
	chainID uint64
	vault   common.Address
	poolIDs []common.Hash
}

func NewWeighted(spec Spec) (*Weighted, error) {
	vault, err := parseAddress(spec.Name, "vault", spec.Vault)
	if err != nil {
		return nil, err
	}
	ids := make([]common.Hash, 0, len(spec.PoolIDs))
	for _, raw := range spec.PoolIDs {
		hexID := strings.TrimPrefix(raw, "0x")
		if len(hexID) != 2*common.HashLength {
			return nil, fmt.Errorf("adapter %s: invalid pool id %q", spec.Name, raw)
		}
		ids = append(ids, common.HexToHash(raw))
	}
	return &Weighted{name: spec.Name, chainID: spec.ChainID, vault: vault, poolIDs: ids}, nil
}

func (a *Weighted) Name() string         { return a.name }
func (a *Weighted) Kind() model.PoolKind { return model.PoolWeighted }
func (a *Weighted) Chains() []uint64     { return []uint64{a.chainID} }

func (a *Weighted) DiscoverPools(ctx context.Context, env Env, target common.Address) ([]model.Pool, error) {
	var pools []model.Pool
	for _, id := range a.poolIDs {
		pool, ok, err := a.readPool(ctx, env, id, target)
		if err != nil {
			if probe.IsUnsupported(err) {
				env.logger().Debug("pool unreadable", zap.String("dex", a.name), zap.String("pool_id", id.Hex()), zap.Error(err))
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

// poolAddress is the leading 20 bytes of a Balancer pool id.
func poolAddress(id common.Hash) common.Address {
	return common.BytesToAddress(id[:common.AddressLength])
}

func (a *Weighted) readPool(ctx context.Context, env Env, id common.Hash, target common.Address) (model.Pool, bool, error) {
	values, err := callMethod(ctx, env.Prober, a.vault, balancerVaultABI, "getPoolTokens", [32]byte(id))
	if err != nil {
		return model.Pool{}, false, err
	}
	if len(values) < 2 {
		return model.Pool{}, false, fmt.Errorf("getPoolTokens: %w: %d outputs", probe.ErrUnsupported, len(values))
	}
	tokens, err := asAddresses(values[0])
	if err != nil {
		return model.Pool{}, false, err
	}
	balances, err := asBigInts(values[1])
	if err != nil {
		return model.Pool{}, false, err
	}
	if len(tokens) != len(balances) {
		return model.Pool{}, false, fmt.Errorf("getPoolTokens: %w: %d tokens, %d balances", probe.ErrUnsupported, len(tokens), len(balances))
	}

	addr := poolAddress(id)
	found := false
	for _, t := range tokens {
		if t == target {
			found = true
		}
	}
	if !found {
		return model.Pool{}, false, nil
	}

	weights, err := a.weights(ctx, env, addr, len(tokens))
	if err != nil {
		return model.Pool{}, false, err
	}

	poolID := id
	pool := model.Pool{DEX: a.name, Address: addr, Kind: model.PoolWeighted, PoolID: &poolID}
	for i, t := range tokens {
		if t == addr {
			// composable pools list their own BPT
			continue
		}
		side, err := poolToken(ctx, env, t, balances[i])
		if err != nil {
			return model.Pool{}, false, err
		}
		if weights != nil {
			w := weights[i]
			side.Weight = &w
		}
		pool.Tokens = append(pool.Tokens, side)
	}
	return pool, len(pool.Tokens) >= 2, nil
}

// weights returns normalized weights, or nil when the pool does not expose
// them.
func (a *Weighted) weights(ctx context.Context, env Env, addr common.Address, n int) ([]decimal.Decimal, error) {
	values, err := callMethod(ctx, env.Prober, addr, weightedPoolABI, "getNormalizedWeights")
	if err != nil {
		if probe.IsUnsupported(err) {
			return nil, nil
		}
		return nil, err
	}
	raw, err := asBigInts(values[0])
	if err != nil || len(raw) != n {
		return nil, nil
	}
	out := make([]decimal.Decimal, n)
	for i, w := range raw {
		out[i] = decimal.NewFromBigInt(w, -weightDecimals)
	}
	return out, nil
}
