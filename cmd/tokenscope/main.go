package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "tokenscope",
		Short:        "EVM token and liquidity inspector",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [token]",
		Short: "Analyze a token contract and its DEX liquidity at one block",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}

	analyzeCmd.Flags().String("rpc", "", "RPC URL (http, ws or ipc)")
	analyzeCmd.Flags().String("chain", "ethereum", "chain name from the chain table")
	analyzeCmd.Flags().String("token", "", "token address")
	analyzeCmd.Flags().Uint64("block", 0, "block height to pin reads to, 0 means latest")
	analyzeCmd.Flags().String("out", "", "output JSON path, empty means stdout")
	analyzeCmd.Flags().Int("max-retries", 3, "maximum retry attempts for transport errors")
	analyzeCmd.Flags().Duration("retry-backoff", 200*time.Millisecond, "initial retry backoff")
	analyzeCmd.Flags().Int64("max-inflight", 8, "maximum concurrent RPC requests")
	analyzeCmd.Flags().Duration("timeout", 60*time.Second, "liquidity discovery budget")
	analyzeCmd.Flags().Int("top-n", 5, "number of ranked pools to report (max 5)")
	analyzeCmd.Flags().String("metrics-file", "", "write prometheus metrics to this textfile")
	analyzeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(analyzeCmd)

	chainsCmd := &cobra.Command{
		Use:   "chains",
		Short: "List the configured chains and DEX adapters",
		RunE:  runChains,
	}

	root.AddCommand(chainsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
