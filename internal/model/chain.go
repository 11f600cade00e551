package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ChainContext pins an analysis run to one chain and one block height.
type ChainContext struct {
	Name           string           `json:"name"`
	ChainID        uint64           `json:"chain_id"`
	NativeSymbol   string           `json:"native_symbol"`
	NativeDecimals uint8            `json:"native_decimals"`
	WrappedNative  common.Address   `json:"wrapped_native"`
	Stablecoins    []common.Address `json:"stablecoins"`
	ExtraQuotes    []common.Address `json:"extra_quotes,omitempty"`
	Block          uint64           `json:"block"`
}

// BlockNumber returns the pinned block as a call argument.
func (c ChainContext) BlockNumber() *big.Int {
	return new(big.Int).SetUint64(c.Block)
}

func (c ChainContext) IsWrappedNative(addr common.Address) bool {
	return addr == c.WrappedNative
}

func (c ChainContext) IsStablecoin(addr common.Address) bool {
	for _, s := range c.Stablecoins {
		if s == addr {
			return true
		}
	}
	return false
}

// IsReference reports whether addr is the wrapped native asset or a stablecoin.
func (c ChainContext) IsReference(addr common.Address) bool {
	return c.IsWrappedNative(addr) || c.IsStablecoin(addr)
}

// ReferenceAssets lists the wrapped native asset followed by the stablecoins.
func (c ChainContext) ReferenceAssets() []common.Address {
	out := make([]common.Address, 0, 1+len(c.Stablecoins))
	out = append(out, c.WrappedNative)
	return append(out, c.Stablecoins...)
}

// QuoteAssets lists reference assets followed by the extra pair tokens.
func (c ChainContext) QuoteAssets() []common.Address {
	out := c.ReferenceAssets()
	for _, q := range c.ExtraQuotes {
		if !c.IsReference(q) {
			out = append(out, q)
		}
	}
	return out
}
