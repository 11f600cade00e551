package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const v2FactoryABIJSON = `[
  {"inputs": [{"name": "tokenA", "type": "address"}, {"name": "tokenB", "type": "address"}], "name": "getPair", "outputs": [{"name": "pair", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const v2PairABIJSON = `[
  {"inputs": [], "name": "token0", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getReserves", "outputs": [{"name": "reserve0", "type": "uint112"}, {"name": "reserve1", "type": "uint112"}, {"name": "blockTimestampLast", "type": "uint32"}], "stateMutability": "view", "type": "function"}
]`

const v3FactoryABIJSON = `[
  {"inputs": [{"name": "tokenA", "type": "address"}, {"name": "tokenB", "type": "address"}, {"name": "fee", "type": "uint24"}], "name": "getPool", "outputs": [{"name": "pool", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

// slot0 lists only the leading outputs shared by Uniswap and PancakeSwap v3.
const v3PoolABIJSON = `[
  {"inputs": [], "name": "token0", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "fee", "outputs": [{"type": "uint24"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "slot0", "outputs": [{"name": "sqrtPriceX96", "type": "uint160"}, {"name": "tick", "type": "int24"}], "stateMutability": "view", "type": "function"}
]`

const curveRegistryABIJSON = `[
  {"inputs": [{"name": "_from", "type": "address"}, {"name": "_to", "type": "address"}], "name": "find_pool_for_coins", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "_pool", "type": "address"}], "name": "get_coins", "outputs": [{"type": "address[8]"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "_pool", "type": "address"}], "name": "get_balances", "outputs": [{"type": "uint256[8]"}], "stateMutability": "view", "type": "function"}
]`

const balancerVaultABIJSON = `[
  {"inputs": [{"name": "poolId", "type": "bytes32"}], "name": "getPoolTokens", "outputs": [{"name": "tokens", "type": "address[]"}, {"name": "balances", "type": "uint256[]"}, {"name": "lastChangeBlock", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const weightedPoolABIJSON = `[
  {"inputs": [], "name": "getNormalizedWeights", "outputs": [{"type": "uint256[]"}], "stateMutability": "view", "type": "function"}
]`

type lazyABI struct {
	json   string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.json))
	})
	return l.parsed, l.err
}

var (
	v2FactoryABI     = &lazyABI{json: v2FactoryABIJSON}
	v2PairABI        = &lazyABI{json: v2PairABIJSON}
	v3FactoryABI     = &lazyABI{json: v3FactoryABIJSON}
	v3PoolABI        = &lazyABI{json: v3PoolABIJSON}
	curveRegistryABI = &lazyABI{json: curveRegistryABIJSON}
	balancerVaultABI = &lazyABI{json: balancerVaultABIJSON}
	weightedPoolABI  = &lazyABI{json: weightedPoolABIJSON}
)
