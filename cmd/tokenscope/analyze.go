package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenScope/internal/analysis"
	"tokenScope/internal/chain"
	"tokenScope/internal/config"
	"tokenScope/internal/metrics"
	"tokenScope/internal/storage"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Token = args[0]
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.Token == "" {
		return fmt.Errorf("token address is required")
	}
	token, err := config.ParseAddress(cfg.Token)
	if err != nil {
		return err
	}
	chainCfg, err := cfg.ChainConfig()
	if err != nil {
		return err
	}
	registry, err := chainCfg.Registry()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.MetricsFile != "" {
		defer func() {
			if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
				logger.Warn("write metrics failed", zap.String("path", cfg.MetricsFile), zap.Error(err))
			}
		}()
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, m)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != chainCfg.ChainID {
		return fmt.Errorf("rpc serves chain %s, %s expects %d", chainID, cfg.Chain, chainCfg.ChainID)
	}

	block, err := resolveBlock(ctx, chainClient, cfg.Block)
	if err != nil {
		return err
	}
	chainCtx, err := chainCfg.Context(block)
	if err != nil {
		return err
	}

	analyzer := analysis.New(analysis.Config{
		Chain:            chainCtx,
		Registry:         registry,
		Reader:           chain.Limit(chainClient, cfg.MaxInFlight),
		Retry:            cfg.RetryPolicy(),
		DiscoveryTimeout: cfg.Timeout,
		TopN:             cfg.TopN,
		Metrics:          m,
		Logger:           logger,
	})

	logger.Info("analyze start",
		zap.String("chain", cfg.Chain),
		zap.Uint64("chain_id", chainCtx.ChainID),
		zap.Uint64("block", block),
		zap.String("token", token.Hex()),
		zap.Int("adapters", len(registry.For(chainCtx.ChainID))),
		zap.Int64("max_inflight", cfg.MaxInFlight),
		zap.Duration("timeout", cfg.Timeout),
	)

	report, err := analyzer.Run(ctx, token)
	if err != nil {
		return err
	}

	var sink storage.Storage = storage.NewJSONWriter(cmd.OutOrStdout())
	if cfg.Out != "" {
		sink = storage.NewJSONFile(cfg.Out)
	}
	return sink.PutReport(report)
}

// resolveBlock pins "latest" to a concrete height, or checks that a requested
// height exists.
func resolveBlock(ctx context.Context, c *chain.Client, requested uint64) (uint64, error) {
	if requested == 0 {
		latest, err := c.LatestBlockNumber(ctx)
		if err != nil {
			return 0, fmt.Errorf("latest block: %w", err)
		}
		return latest, nil
	}
	if _, err := c.HeaderByNumber(ctx, new(big.Int).SetUint64(requested)); err != nil {
		return 0, fmt.Errorf("block %d: %w", requested, err)
	}
	return requested, nil
}
