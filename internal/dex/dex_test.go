package dex

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/chain"
	"tokenScope/internal/chain/chaintest"
	"tokenScope/internal/model"
	"tokenScope/internal/probe"
	"tokenScope/internal/token"
)

var (
	target  = common.HexToAddress("0x1100000000000000000000000000000000000011")
	weth    = common.HexToAddress("0x2200000000000000000000000000000000000022")
	usdc    = common.HexToAddress("0x3300000000000000000000000000000000000033")
	factory = common.HexToAddress("0x4400000000000000000000000000000000000044")
	poolA   = common.HexToAddress("0x5500000000000000000000000000000000000055")
)

func testEnv(fake *chaintest.Reader) Env {
	block := big.NewInt(42)
	return Env{
		Chain: model.ChainContext{
			Name:          "testnet",
			ChainID:       1,
			WrappedNative: weth,
			Stablecoins:   []common.Address{usdc},
			Block:         42,
		},
		Prober: probe.New(probe.Config{Reader: fake, Block: block, Retry: chain.RetryPolicy{MaxRetries: 0, BaseDelay: 1, MaxDelay: 1}}),
		Tokens: token.NewMetaCache(),
	}
}

func setCall(t *testing.T, fake *chaintest.Reader, to common.Address, lazy *lazyABI, method string, args []interface{}, outs ...interface{}) {
	t.Helper()
	parsed, err := lazy.get()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		t.Fatalf("pack %s: %v", method, err)
	}
	ret, err := parsed.Methods[method].Outputs.Pack(outs...)
	if err != nil {
		t.Fatalf("pack %s outputs: %v", method, err)
	}
	fake.SetCall(to, data, ret)
}

func setDecimals(fake *chaintest.Reader, addr common.Address, d int64) {
	fake.SetCall(addr, probe.Decimals.MustCalldata(), common.LeftPadBytes(big.NewInt(d).Bytes(), 32))
}

func TestConstantProductDiscovery(t *testing.T) {
	fake := chaintest.NewReader()
	setCall(t, fake, factory, v2FactoryABI, "getPair", []interface{}{target, weth}, poolA)
	setCall(t, fake, factory, v2FactoryABI, "getPair", []interface{}{target, usdc}, common.Address{})
	setCall(t, fake, poolA, v2PairABI, "token0", nil, target)
	setCall(t, fake, poolA, v2PairABI, "token1", nil, weth)
	setCall(t, fake, poolA, v2PairABI, "getReserves", nil, big.NewInt(1000), big.NewInt(2), uint32(0))
	setDecimals(fake, weth, 18)

	a, err := NewConstantProduct(Spec{Name: "uniswap-v2", ChainID: 1, Factory: factory.Hex(), FeeBps: 30})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	pools, err := a.DiscoverPools(context.Background(), testEnv(fake), target)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(pools) != 1 {
		t.Fatalf("expected 1 pool, got %d", len(pools))
	}
	p := pools[0]
	if p.Address != poolA || p.DEX != "uniswap-v2" || p.Kind != model.PoolConstantProduct || *p.FeeTierBps != 30 {
		t.Fatalf("unexpected pool %+v", p)
	}
	if p.Tokens[0].Reserve.Int64() != 1000 || p.Tokens[1].Reserve.Int64() != 2 {
		t.Fatalf("unexpected reserves %+v", p.Tokens)
	}
	if p.Tokens[0].Decimals != nil || p.Tokens[1].Decimals == nil || *p.Tokens[1].Decimals != 18 {
		t.Fatalf("unexpected decimals %+v", p.Tokens)
	}
}

func TestConstantProductNoPoolsIsNotAnError(t *testing.T) {
	fake := chaintest.NewReader()
	a, _ := NewConstantProduct(Spec{Name: "sushiswap", ChainID: 1, Factory: factory.Hex()})
	pools, err := a.DiscoverPools(context.Background(), testEnv(fake), target)
	if err != nil || len(pools) != 0 {
		t.Fatalf("expected no pools and no error, got %d %v", len(pools), err)
	}
}

func TestConstantProductTransportFailure(t *testing.T) {
	fake := chaintest.NewReader()
	fake.FailAddress(factory, &chain.RPCError{Method: "eth_call", Err: errors.New("429")})
	a, _ := NewConstantProduct(Spec{Name: "sushiswap", ChainID: 1, Factory: factory.Hex()})
	if _, err := a.DiscoverPools(context.Background(), testEnv(fake), target); !chain.IsRetryable(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestConcentratedDiscovery(t *testing.T) {
	fake := chaintest.NewReader()
	setCall(t, fake, factory, v3FactoryABI, "getPool", []interface{}{target, usdc, big.NewInt(3000)}, poolA)
	setCall(t, fake, poolA, v3PoolABI, "token0", nil, target)
	setCall(t, fake, poolA, v3PoolABI, "token1", nil, usdc)
	sqrtPrice := new(big.Int).Lsh(big.NewInt(1), 96)
	setCall(t, fake, poolA, v3PoolABI, "slot0", nil, sqrtPrice, big.NewInt(0))
	fake.SetCall(target, probe.BalanceOf.MustCalldata(poolA), common.LeftPadBytes(big.NewInt(500).Bytes(), 32))
	fake.SetCall(usdc, probe.BalanceOf.MustCalldata(poolA), common.LeftPadBytes(big.NewInt(700).Bytes(), 32))

	a, err := NewConcentrated(Spec{Name: "uniswap-v3", ChainID: 1, Factory: factory.Hex()})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	pools, err := a.DiscoverPools(context.Background(), testEnv(fake), target)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(pools) != 1 {
		t.Fatalf("expected 1 pool, got %d", len(pools))
	}
	p := pools[0]
	if *p.FeeTierBps != 30 || p.SqrtPriceX96.Cmp(sqrtPrice) != 0 {
		t.Fatalf("unexpected pool %+v", p)
	}
	if p.Tokens[0].Reserve.Int64() != 500 || p.Tokens[1].Reserve.Int64() != 700 {
		t.Fatalf("unexpected balances %+v", p.Tokens)
	}
}

func TestStableSwapDiscovery(t *testing.T) {
	fake := chaintest.NewReader()
	var coins [8]common.Address
	coins[0], coins[1], coins[2] = target, usdc, weth
	var balances [8]*big.Int
	for i := range balances {
		balances[i] = new(big.Int)
	}
	balances[0], balances[1], balances[2] = big.NewInt(10), big.NewInt(20), big.NewInt(30)

	setCall(t, fake, factory, curveRegistryABI, "find_pool_for_coins", []interface{}{target, weth}, poolA)
	setCall(t, fake, factory, curveRegistryABI, "find_pool_for_coins", []interface{}{target, usdc}, poolA)
	setCall(t, fake, factory, curveRegistryABI, "get_coins", []interface{}{poolA}, coins)
	setCall(t, fake, factory, curveRegistryABI, "get_balances", []interface{}{poolA}, balances)

	a, err := NewStableSwap(Spec{Name: "curve", ChainID: 1, Registry: factory.Hex()})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	pools, err := a.DiscoverPools(context.Background(), testEnv(fake), target)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(pools) != 1 || len(pools[0].Tokens) != 3 {
		t.Fatalf("expected one 3-coin pool, got %+v", pools)
	}
	if pools[0].Tokens[2].Reserve.Int64() != 30 {
		t.Fatalf("unexpected reserves %+v", pools[0].Tokens)
	}
}

func TestStableSwapNativePlaceholderIsWrappedNative(t *testing.T) {
	fake := chaintest.NewReader()
	var coins [8]common.Address
	coins[0], coins[1] = nativePlaceholder, target
	var balances [8]*big.Int
	for i := range balances {
		balances[i] = new(big.Int)
	}
	balances[0], balances[1] = big.NewInt(40), big.NewInt(50)

	setCall(t, fake, factory, curveRegistryABI, "find_pool_for_coins", []interface{}{target, weth}, poolA)
	setCall(t, fake, factory, curveRegistryABI, "get_coins", []interface{}{poolA}, coins)
	setCall(t, fake, factory, curveRegistryABI, "get_balances", []interface{}{poolA}, balances)

	a, _ := NewStableSwap(Spec{Name: "curve", ChainID: 1, Registry: factory.Hex()})
	env := testEnv(fake)
	env.Chain.NativeSymbol = "ETH"
	env.Chain.NativeDecimals = 18
	pools, err := a.DiscoverPools(context.Background(), env, target)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(pools) != 1 || len(pools[0].Tokens) != 2 {
		t.Fatalf("expected one 2-coin pool, got %+v", pools)
	}
	native := pools[0].Tokens[0]
	if native.Address != weth || native.Symbol != "ETH" || native.Decimals == nil || *native.Decimals != 18 || native.Reserve.Int64() != 40 {
		t.Fatalf("expected native coin booked as weth, got %+v", native)
	}
	if fake.CallCount(nativePlaceholder) != 0 {
		t.Fatalf("placeholder must not be called")
	}
}

func TestWeightedDiscovery(t *testing.T) {
	fake := chaintest.NewReader()
	id := common.BytesToHash(append(poolA.Bytes(), make([]byte, 12)...))
	setCall(t, fake, factory, balancerVaultABI, "getPoolTokens", []interface{}{[32]byte(id)},
		[]common.Address{target, weth}, []*big.Int{big.NewInt(800), big.NewInt(200)}, big.NewInt(1))
	eighty, _ := new(big.Int).SetString("800000000000000000", 10)
	twenty, _ := new(big.Int).SetString("200000000000000000", 10)
	setCall(t, fake, poolA, weightedPoolABI, "getNormalizedWeights", nil, []*big.Int{eighty, twenty})

	a, err := NewWeighted(Spec{Name: "balancer-v2", ChainID: 1, Vault: factory.Hex(), PoolIDs: []string{id.Hex()}})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	pools, err := a.DiscoverPools(context.Background(), testEnv(fake), target)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(pools) != 1 || pools[0].Address != poolA {
		t.Fatalf("expected pool %s, got %+v", poolA.Hex(), pools)
	}
	if w := pools[0].Tokens[1].Weight; w == nil || w.String() != "0.2" {
		t.Fatalf("expected weth weight 0.2, got %v", w)
	}
}

func TestRegistry(t *testing.T) {
	specs := []Spec{
		{Name: "uniswap-v2", Family: FamilyConstantProduct, ChainID: 1, Factory: factory.Hex()},
		{Name: "curve", Family: FamilyStableSwap, ChainID: 1, Registry: factory.Hex()},
		{Name: "pancakeswap-v2", Family: FamilyConstantProduct, ChainID: 56, Factory: factory.Hex()},
	}
	r, err := BuildRegistry(specs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	eth := r.For(1)
	if len(eth) != 2 || eth[0].Name() != "uniswap-v2" || eth[1].Name() != "curve" {
		t.Fatalf("unexpected ethereum adapters %v", eth)
	}
	if len(r.For(137)) != 0 {
		t.Fatalf("unconfigured chain must have no adapters")
	}
	if got := r.Chains(); len(got) != 2 || got[0] != 1 || got[1] != 56 {
		t.Fatalf("unexpected chains %v", got)
	}

	if _, err := BuildRegistry([]Spec{{Name: "x", Family: "orderbook"}}); err == nil {
		t.Fatalf("unknown family must fail")
	}
	if _, err := New(Spec{Name: "x", Family: FamilyConstantProduct, Factory: "nope"}); err == nil {
		t.Fatalf("invalid factory must fail")
	}
}
