package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"tokenScope/internal/dex"
	"tokenScope/internal/model"
)

// ChainConfig is one entry of the static chain/DEX table.
type ChainConfig struct {
	Name           string      `mapstructure:"name"`
	ChainID        uint64      `mapstructure:"chain_id"`
	NativeSymbol   string      `mapstructure:"native_symbol"`
	NativeDecimals uint8       `mapstructure:"native_decimals"`
	WrappedNative  string      `mapstructure:"wrapped_native"`
	Stablecoins    []string    `mapstructure:"stablecoins"`
	ExtraQuotes    []string    `mapstructure:"extra_quotes"`
	DEXes          []DEXConfig `mapstructure:"dexes"`
}

// DEXConfig configures one adapter instance.
type DEXConfig struct {
	Name     string   `mapstructure:"name"`
	Family   string   `mapstructure:"family"`
	Factory  string   `mapstructure:"factory"`
	FeeBps   uint32   `mapstructure:"fee_bps"`
	FeeTiers []uint32 `mapstructure:"fee_tiers"`
	Registry string   `mapstructure:"registry"`
	Vault    string   `mapstructure:"vault"`
	PoolIDs  []string `mapstructure:"pool_ids"`
}

// DefaultChains returns the built-in table. Callers may mutate the result.
func DefaultChains() map[string]ChainConfig {
	return map[string]ChainConfig{
		"ethereum": {
			Name:           "Ethereum Mainnet",
			ChainID:        1,
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
			WrappedNative:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
			Stablecoins: []string{
				"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", // USDC
				"0xdAC17F958D2ee523a2206206994597C13D831ec7", // USDT
				"0x6B175474E89094C44Da98b954EedeAC495271d0F", // DAI
			},
			ExtraQuotes: []string{
				"0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", // WBTC
			},
			DEXes: []DEXConfig{
				{Name: "uniswap-v2", Family: string(dex.FamilyConstantProduct), Factory: "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f", FeeBps: 30},
				{Name: "sushiswap", Family: string(dex.FamilyConstantProduct), Factory: "0xC0AEe478e3658e2610c5F7A4A2E1777cE9e4f2Ac", FeeBps: 30},
				{Name: "uniswap-v3", Family: string(dex.FamilyConcentrated), Factory: "0x1F98431c8aD98523631AE4a59f267346ea31F984", FeeTiers: []uint32{100, 500, 3000, 10000}},
				{Name: "curve", Family: string(dex.FamilyStableSwap), Registry: "0x90E00ACe148ca3b23Ac1bC8C240C2a7Dd9c2d7f5"},
				{
					Name:   "balancer",
					Family: string(dex.FamilyWeighted),
					Vault:  "0xBA12222222228d8Ba445958a75a0704d566BF2C8",
					PoolIDs: []string{
						"0x5c6ee304399dbdb9c8ef030ab642b10820db8f56000200000000000000000014", // 80BAL-20WETH
					},
				},
			},
		},
		"bsc": {
			Name:           "BNB Smart Chain",
			ChainID:        56,
			NativeSymbol:   "BNB",
			NativeDecimals: 18,
			WrappedNative:  "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
			Stablecoins: []string{
				"0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", // USDC
				"0x55d398326f99059fF775485246999027B3197955", // USDT
				"0x1AF3F329e8BE154074D8769D1FFa4eE058B1DBc3", // DAI
			},
			ExtraQuotes: []string{
				"0x7130d2A12B9BCbFAe4f2634d864A1Ee1Ce3Ead9c", // BTCB
				"0x2170Ed0880ac9A755fd29B2688956BD959F933F8", // ETH
			},
			DEXes: []DEXConfig{
				{Name: "pancakeswap-v2", Family: string(dex.FamilyConstantProduct), Factory: "0xcA143Ce32Fe78f1f7019d7d551a6402fC5350c73", FeeBps: 25},
				{Name: "pancakeswap-v3", Family: string(dex.FamilyConcentrated), Factory: "0x0BFbCF9fa4f9C56B0F40a671Ad40E0805A091865", FeeTiers: []uint32{100, 500, 2500, 10000}},
				{Name: "biswap", Family: string(dex.FamilyConstantProduct), Factory: "0x858E3312ed3A876947EA49d572A7C42DE08af7EE", FeeBps: 10},
				{Name: "mdex", Family: string(dex.FamilyConstantProduct), Factory: "0x3CD1C46068dAEa5Ebb0d3f55F6915B10648062B8", FeeBps: 30},
				{Name: "apeswap", Family: string(dex.FamilyConstantProduct), Factory: "0x0841BD0B734E4F5853f0dD8d7Ea041c241fb0Da6", FeeBps: 20},
			},
		},
	}
}

// loadChains starts from the defaults and replaces whole entries named under
// the "chains" key.
func loadChains(v *viper.Viper) (map[string]ChainConfig, error) {
	chains := DefaultChains()
	if !v.IsSet("chains") {
		return chains, nil
	}

	var overrides map[string]ChainConfig
	if err := v.UnmarshalKey("chains", &overrides); err != nil {
		return nil, fmt.Errorf("decode chains: %w", err)
	}
	for key, cc := range overrides {
		key = strings.ToLower(strings.TrimSpace(key))
		if cc.ChainID == 0 {
			return nil, fmt.Errorf("chain %s: chain_id is required", key)
		}
		if cc.Name == "" {
			cc.Name = key
		}
		if cc.NativeDecimals == 0 {
			cc.NativeDecimals = 18
		}
		chains[key] = cc
	}
	return chains, nil
}

// ChainNames lists the table keys in order.
func ChainNames(chains map[string]ChainConfig) []string {
	names := make([]string, 0, len(chains))
	for name := range chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Context resolves the addresses of the entry and pins it to block.
func (c ChainConfig) Context(block uint64) (model.ChainContext, error) {
	wrapped, err := ParseAddress(c.WrappedNative)
	if err != nil {
		return model.ChainContext{}, fmt.Errorf("chain %s wrapped native: %w", c.Name, err)
	}
	stables, err := ParseAddresses(cleanStrings(c.Stablecoins))
	if err != nil {
		return model.ChainContext{}, fmt.Errorf("chain %s stablecoins: %w", c.Name, err)
	}
	extras, err := ParseAddresses(cleanStrings(c.ExtraQuotes))
	if err != nil {
		return model.ChainContext{}, fmt.Errorf("chain %s extra quotes: %w", c.Name, err)
	}
	return model.ChainContext{
		Name:           c.Name,
		ChainID:        c.ChainID,
		NativeSymbol:   c.NativeSymbol,
		NativeDecimals: c.NativeDecimals,
		WrappedNative:  wrapped,
		Stablecoins:    stables,
		ExtraQuotes:    extras,
		Block:          block,
	}, nil
}

// Specs converts the DEX entries into adapter specs for this chain.
func (c ChainConfig) Specs() []dex.Spec {
	specs := make([]dex.Spec, 0, len(c.DEXes))
	for _, d := range c.DEXes {
		specs = append(specs, dex.Spec{
			Name:     d.Name,
			Family:   dex.Family(d.Family),
			ChainID:  c.ChainID,
			Factory:  d.Factory,
			FeeBps:   d.FeeBps,
			FeeTiers: d.FeeTiers,
			Registry: d.Registry,
			Vault:    d.Vault,
			PoolIDs:  cleanStrings(d.PoolIDs),
		})
	}
	return specs
}

// Registry builds the adapters for this chain.
func (c ChainConfig) Registry() (*dex.Registry, error) {
	return dex.BuildRegistry(c.Specs())
}
