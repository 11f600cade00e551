// Package analysis runs one token analysis against a block-pinned chain view.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tokenScope/internal/aggregate"
	"tokenScope/internal/chain"
	"tokenScope/internal/dex"
	"tokenScope/internal/metrics"
	"tokenScope/internal/model"
	"tokenScope/internal/probe"
	"tokenScope/internal/proxy"
	"tokenScope/internal/state"
	"tokenScope/internal/token"
	"tokenScope/internal/valuation"
)

// Config wires an Analyzer. Chain.Block must already be resolved.
type Config struct {
	Chain            model.ChainContext
	Registry         *dex.Registry
	Reader           chain.Reader
	Retry            chain.RetryPolicy
	DiscoveryTimeout time.Duration
	TopN             int
	Metrics          *metrics.Metrics
	Logger           *zap.Logger
}

// Analyzer produces one Report per Run.
type Analyzer struct {
	cfg       Config
	prober    *probe.Prober
	slots     *state.Reader
	resolver  *proxy.Resolver
	inspector *token.Inspector
	tokens    *token.MetaCache
	logger    *zap.Logger
}

// New builds an Analyzer.
func New(cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = dex.NewRegistry()
	}
	block := cfg.Chain.BlockNumber()
	prober := probe.New(probe.Config{
		Reader:  cfg.Reader,
		Block:   block,
		Retry:   cfg.Retry,
		Metrics: cfg.Metrics,
		Logger:  logger,
	})
	slots := state.NewReader(cfg.Reader, block, cfg.Retry)
	tokens := token.NewMetaCache()
	return &Analyzer{
		cfg:       cfg,
		prober:    prober,
		slots:     slots,
		resolver:  proxy.NewResolver(slots, prober, logger),
		inspector: token.NewInspector(prober, slots, tokens, logger),
		tokens:    tokens,
		logger:    logger,
	}
}

// Run analyzes target. A returned error is fatal and no report is produced;
// every other failure becomes a diagnostic on the report.
func (a *Analyzer) Run(ctx context.Context, target common.Address) (model.Report, error) {
	start := time.Now()
	defer func() { a.cfg.Metrics.ObserveAnalysis(time.Since(start)) }()

	code, err := a.slots.Code(ctx, target)
	if err != nil {
		return model.Report{}, fmt.Errorf("code at %s: %w", target.Hex(), err)
	}
	if len(code) == 0 {
		return model.Report{}, fmt.Errorf("token %s at block %d: no contract code: %w", target.Hex(), a.cfg.Chain.Block, chain.ErrNotFound)
	}

	var (
		px        model.ProxyInfo
		facts     model.TokenFacts
		factDiags []model.Diagnostic
		disc      discovery
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, diags, err := a.resolver.Resolve(gctx, target, code)
		if err != nil {
			return fmt.Errorf("resolve proxy: %w", err)
		}
		px = info
		factDiags = append(factDiags, diags...)

		tf, diags, err := a.inspector.Inspect(gctx, target, code, px)
		if err != nil {
			return fmt.Errorf("inspect token: %w", err)
		}
		facts = tf
		factDiags = append(factDiags, diags...)
		return nil
	})
	g.Go(func() error {
		d, err := a.discover(gctx, target)
		if err != nil {
			return err
		}
		disc = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Report{}, err
	}

	book := valuation.NewPriceBook(a.cfg.Chain, disc.allPools())
	valuator := valuation.NewValuator(a.cfg.Chain, book)

	diags := append(factDiags, disc.diagnostics...)
	valued := make([]model.ValuedPool, 0, len(disc.target))
	for _, pool := range disc.target {
		vp, diag := valuator.Value(pool, target)
		if diag != nil {
			diags = append(diags, *diag)
		}
		valued = append(valued, vp)
	}

	in := aggregate.Input{
		Pools:          valued,
		Attempted:      disc.attempted,
		FailedAdapters: disc.failed,
	}
	if native, ok := book.NativeUSD(); ok {
		in.NativePriceUSD = &native
	}
	liquidity := aggregate.Aggregate(aggregate.Config{TopN: a.cfg.TopN}, in)
	if note := aggregate.Note(liquidity); note != nil {
		diags = append(diags, *note)
	}

	report := model.Report{
		Chain:       a.cfg.Chain.Name,
		ChainID:     a.cfg.Chain.ChainID,
		Block:       a.cfg.Chain.Block,
		Token:       facts,
		Proxy:       px,
		Liquidity:   liquidity,
		Diagnostics: diags,
		Partial:     disc.incomplete || isPartial(diags),
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []model.Diagnostic{}
	}

	a.logger.Info("analysis complete",
		zap.String("token", target.Hex()),
		zap.Uint64("block", report.Block),
		zap.String("proxy", string(px.Kind)),
		zap.Int("pools", liquidity.PoolCount),
		zap.String("liquidity_status", string(liquidity.Status)),
		zap.Int("diagnostics", len(diags)),
		zap.Bool("partial", report.Partial),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// isPartial reports whether a diagnostic means some fact could not be read.
// Pricing gaps show up in the liquidity section instead.
func isPartial(diags []model.Diagnostic) bool {
	for _, d := range diags {
		switch d.Kind {
		case model.DiagRPCError, model.DiagAdapterFailed, model.DiagCancelled:
			return true
		}
	}
	return false
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
