package token

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenScope/internal/model"
	"tokenScope/internal/probe"
)

// MetaCache caches token metadata by address for one analysis run.
type MetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewMetaCache() *MetaCache {
	return &MetaCache{data: make(map[common.Address]model.TokenMeta)}
}

func (c *MetaCache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *MetaCache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// Lookup returns cached metadata or fetches it. Transport failures are not
// cached so a later lookup can retry.
func (c *MetaCache) Lookup(ctx context.Context, prober *probe.Prober, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	if meta, ok := c.Get(token); ok {
		return meta, nil
	}
	meta, err := FetchMeta(ctx, prober, token, logger)
	if err != nil {
		return meta, err
	}
	c.Set(token, meta)
	return meta, nil
}

// FetchMeta loads ERC20 metadata. Absent functions leave fields empty and
// decimals nil; only transport and fatal errors are returned.
func FetchMeta(ctx context.Context, prober *probe.Prober, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	meta := model.TokenMeta{Address: token}

	decimals, err := prober.CallUint(ctx, token, probe.Decimals)
	switch {
	case err == nil && decimals.IsUint64() && decimals.Uint64() <= 255:
		d := uint8(decimals.Uint64())
		meta.Decimals = &d
	case err == nil:
		logger.Debug("decimals out of range", zap.String("token", token.Hex()), zap.String("decimals", decimals.String()))
	case !probe.IsUnsupported(err):
		return meta, err
	}

	if symbol, err := prober.CallString(ctx, token, probe.Symbol); err == nil {
		meta.Symbol = symbol
	} else if !probe.IsUnsupported(err) {
		return meta, err
	} else {
		logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if name, err := prober.CallString(ctx, token, probe.Name); err == nil {
		meta.Name = name
	} else if !probe.IsUnsupported(err) {
		return meta, err
	} else {
		logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return meta, nil
}
