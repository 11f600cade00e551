package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tokenScope/internal/chain"
)

// MaxTopN caps the number of ranked pools in a report.
const MaxTopN = 5

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL       string
	Chain        string
	Token        string
	Block        uint64
	Out          string
	LogLevel     string
	MaxRetries   int
	RetryBackoff time.Duration
	MaxInFlight  int64
	Timeout      time.Duration
	TopN         int
	MetricsFile  string
	Chains       map[string]ChainConfig
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TOKENSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("chain", "ethereum")
	v.SetDefault("log-level", "info")
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 200*time.Millisecond)
	v.SetDefault("max-inflight", int64(8))
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("top-n", MaxTopN)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	chains, err := loadChains(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:       v.GetString("rpc"),
		Chain:        strings.ToLower(strings.TrimSpace(v.GetString("chain"))),
		Token:        strings.TrimSpace(v.GetString("token")),
		Block:        v.GetUint64("block"),
		Out:          v.GetString("out"),
		LogLevel:     v.GetString("log-level"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		MaxInFlight:  v.GetInt64("max-inflight"),
		Timeout:      v.GetDuration("timeout"),
		TopN:         clampTopN(v.GetInt("top-n")),
		MetricsFile:  v.GetString("metrics-file"),
		Chains:       chains,
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}

	return cfg, nil
}

// RetryPolicy converts the retry settings for the chain layer.
func (c Config) RetryPolicy() chain.RetryPolicy {
	base := c.RetryBackoff
	if base <= 0 {
		base = chain.DefaultRetryPolicy.BaseDelay
	}
	return chain.RetryPolicy{
		MaxRetries: c.MaxRetries,
		BaseDelay:  base,
		MaxDelay:   10 * base,
	}
}

// ChainConfig returns the table entry for the selected chain.
func (c Config) ChainConfig() (ChainConfig, error) {
	cc, ok := c.Chains[c.Chain]
	if !ok {
		return ChainConfig{}, fmt.Errorf("unknown chain %q (known: %s)", c.Chain, strings.Join(ChainNames(c.Chains), ", "))
	}
	return cc, nil
}

func clampTopN(n int) int {
	if n <= 0 || n > MaxTopN {
		return MaxTopN
	}
	return n
}
