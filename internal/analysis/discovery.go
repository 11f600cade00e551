package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tokenScope/internal/chain"
	"tokenScope/internal/dex"
	"tokenScope/internal/model"
)

// adapterRun is the outcome of one adapter over the target and the anchors.
type adapterRun struct {
	name    string
	target  []model.Pool
	anchors []model.Pool
	err     error
	diags   []model.Diagnostic
	partial bool
}

// discovery is the joined fan-out. Pools from failed adapters are dropped.
type discovery struct {
	target      []model.Pool
	anchors     []model.Pool
	attempted   int
	failed      []string
	diagnostics []model.Diagnostic
	incomplete  bool
}

func (d discovery) allPools() []model.Pool {
	out := make([]model.Pool, 0, len(d.target)+len(d.anchors))
	out = append(out, d.target...)
	return append(out, d.anchors...)
}

// discover runs every adapter for the chain concurrently. Adapters never
// cancel each other; only a fatal error or the caller's context aborts.
func (a *Analyzer) discover(ctx context.Context, target common.Address) (discovery, error) {
	adapters := a.cfg.Registry.For(a.cfg.Chain.ChainID)
	if len(adapters) == 0 {
		return discovery{diagnostics: []model.Diagnostic{
			model.NewDiagnostic("dex", model.DiagUnsupported, "no adapters configured for chain %d", a.cfg.Chain.ChainID),
		}}, nil
	}

	dctx := ctx
	if a.cfg.DiscoveryTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, a.cfg.DiscoveryTimeout)
		defer cancel()
	}

	env := dex.Env{
		Chain:  a.cfg.Chain,
		Prober: a.prober,
		Tokens: a.tokens,
		Logger: a.logger,
	}
	anchors := a.anchorAssets(target)

	runs := make([]adapterRun, len(adapters))
	var g errgroup.Group
	for i, adapter := range adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			runs[i] = a.runAdapter(dctx, env, adapter, target, anchors)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return discovery{}, fmt.Errorf("liquidity discovery: %w", err)
	}

	out := discovery{attempted: len(adapters)}
	for _, run := range runs {
		if run.err != nil && errors.Is(run.err, chain.ErrNotFound) {
			return discovery{}, fmt.Errorf("adapter %s: %w", run.name, run.err)
		}
		out.diagnostics = append(out.diagnostics, run.diags...)
		if run.partial {
			out.incomplete = true
		}
		if run.err != nil {
			out.failed = append(out.failed, run.name)
			continue
		}
		out.target = append(out.target, run.target...)
		out.anchors = append(out.anchors, run.anchors...)
	}
	return out, nil
}

func (a *Analyzer) runAdapter(ctx context.Context, env dex.Env, adapter dex.Adapter, target common.Address, anchors []common.Address) adapterRun {
	name := adapter.Name()
	component := "dex:" + name
	logger := a.logger.With(zap.String("dex", name))
	run := adapterRun{name: name}
	start := time.Now()

	pools, err := adapter.DiscoverPools(ctx, env, target)
	if err != nil {
		run.err = err
		outcome := "error"
		if isCancellation(err) || ctx.Err() != nil {
			outcome = "cancelled"
			run.partial = true
			run.diags = append(run.diags, model.NewDiagnostic(component, model.DiagCancelled, "discovery abandoned: %v", err))
		} else {
			run.diags = append(run.diags, model.NewDiagnostic(component, model.DiagAdapterFailed, "discovery failed: %v", err))
		}
		a.cfg.Metrics.ObserveAdapter(name, outcome, 0)
		logger.Warn("adapter failed", zap.String("outcome", outcome), zap.Error(err))
		return run
	}
	run.target = pools

	for _, asset := range anchors {
		found, err := adapter.DiscoverPools(ctx, env, asset)
		if err != nil {
			if errors.Is(err, chain.ErrNotFound) {
				run.err = err
				return run
			}
			kind := model.DiagRPCError
			if isCancellation(err) || ctx.Err() != nil {
				kind = model.DiagCancelled
				run.partial = true
			}
			run.diags = append(run.diags, model.NewDiagnostic(component, kind, "anchor discovery for %s: %v", asset.Hex(), err))
			logger.Warn("anchor discovery failed", zap.String("token", asset.Hex()), zap.Error(err))
			continue
		}
		run.anchors = append(run.anchors, found...)
	}

	a.cfg.Metrics.ObserveAdapter(name, "ok", len(run.target))
	logger.Debug("adapter done",
		zap.Int("pools", len(run.target)),
		zap.Int("anchor_pools", len(run.anchors)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return run
}

// anchorAssets lists the assets whose own pools price the quote side of the
// target's pools: the wrapped native asset and every extra quote token.
func (a *Analyzer) anchorAssets(target common.Address) []common.Address {
	c := a.cfg.Chain
	var out []common.Address
	add := func(addr common.Address) {
		if addr == (common.Address{}) || addr == target {
			return
		}
		for _, seen := range out {
			if seen == addr {
				return
			}
		}
		out = append(out, addr)
	}
	add(c.WrappedNative)
	for _, q := range c.ExtraQuotes {
		if !c.IsReference(q) {
			add(q)
		}
	}
	return out
}
