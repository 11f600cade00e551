package proxy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/chain"
	"tokenScope/internal/chain/chaintest"
	"tokenScope/internal/model"
	"tokenScope/internal/probe"
	"tokenScope/internal/state"
)

var (
	token  = common.HexToAddress("0xa000000000000000000000000000000000000001")
	impl   = common.HexToAddress("0xb000000000000000000000000000000000000002")
	admin  = common.HexToAddress("0xc000000000000000000000000000000000000003")
	beacon = common.HexToAddress("0xd000000000000000000000000000000000000004")
)

func newResolver(fake *chaintest.Reader) *Resolver {
	block := big.NewInt(1)
	policy := chain.RetryPolicy{MaxRetries: 1, BaseDelay: 1, MaxDelay: 1}
	return NewResolver(
		state.NewReader(fake, block, policy),
		probe.New(probe.Config{Reader: fake, Block: block, Retry: policy}),
		nil,
	)
}

func word(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func TestImplementationSlotPrecedesBeacon(t *testing.T) {
	fake := chaintest.NewReader()
	fake.SetStorage(token, state.ImplementationSlot, word(impl))
	fake.SetStorage(token, state.AdminSlot, word(admin))
	fake.SetStorage(token, state.BeaconSlot, word(beacon))

	info, diags, err := newResolver(fake).Resolve(context.Background(), token, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if info.Kind != model.ProxyEIP1967 {
		t.Fatalf("expected eip1967, got %s", info.Kind)
	}
	if *info.Implementation != impl || *info.Admin != admin || info.Beacon != nil {
		t.Fatalf("unexpected info %+v", info)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}

func TestBeaconResolvesImplementation(t *testing.T) {
	fake := chaintest.NewReader()
	fake.SetStorage(token, state.BeaconSlot, word(beacon))
	fake.SetCall(beacon, probe.Implementation.MustCalldata(), common.LeftPadBytes(impl.Bytes(), 32))

	info, _, err := newResolver(fake).Resolve(context.Background(), token, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if info.Kind != model.ProxyBeacon || *info.Beacon != beacon || *info.Implementation != impl {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestBeaconWithoutImplementationStaysBeacon(t *testing.T) {
	fake := chaintest.NewReader()
	fake.SetStorage(token, state.BeaconSlot, word(beacon))

	info, diags, err := newResolver(fake).Resolve(context.Background(), token, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if info.Kind != model.ProxyBeacon || info.Implementation != nil {
		t.Fatalf("unexpected info %+v", info)
	}
	if len(diags) != 1 || diags[0].Kind != model.DiagUnsupported {
		t.Fatalf("expected one unsupported diagnostic, got %v", diags)
	}
}

func TestTransparentViaGetter(t *testing.T) {
	fake := chaintest.NewReader()
	fake.SetCall(token, probe.Implementation.MustCalldata(), common.LeftPadBytes(impl.Bytes(), 32))

	info, _, err := newResolver(fake).Resolve(context.Background(), token, nil)
	if err != nil || info.Kind != model.ProxyTransparent || *info.Implementation != impl {
		t.Fatalf("expected transparent, got %+v err=%v", info, err)
	}
}

func TestMinimalClone(t *testing.T) {
	fake := chaintest.NewReader()
	code := common.FromHex(fmt.Sprintf("0x363d3d373d3d3d363d73%x5af43d82803e903d91602b57fd5bf3", impl.Bytes()))

	info, _, err := newResolver(fake).Resolve(context.Background(), token, code)
	if err != nil || info.Kind != model.ProxyMinimal || *info.Implementation != impl {
		t.Fatalf("expected minimal, got %+v err=%v", info, err)
	}
}

func TestPlainContract(t *testing.T) {
	info, diags, err := newResolver(chaintest.NewReader()).Resolve(context.Background(), token, []byte{0x60, 0x00})
	if err != nil || info.Kind != model.ProxyNone || info.IsProxy() || len(diags) != 0 {
		t.Fatalf("expected none, got %+v diags=%v err=%v", info, diags, err)
	}
}

func TestRPCFailureDegradesToNone(t *testing.T) {
	fake := chaintest.NewReader()
	fake.SetStorage(token, state.BeaconSlot, word(beacon))
	fake.SetStorageError(token, state.ImplementationSlot, &chain.RPCError{Method: "eth_getStorageAt", Err: errors.New("503")})

	info, diags, err := newResolver(fake).Resolve(context.Background(), token, nil)
	if err != nil {
		t.Fatalf("rpc failure must not be fatal: %v", err)
	}
	if info.Kind != model.ProxyNone {
		t.Fatalf("expected none, got %s", info.Kind)
	}
	if len(diags) != 1 || diags[0].Kind != model.DiagRPCError || diags[0].Component != "proxy" {
		t.Fatalf("expected rpc diagnostic, got %v", diags)
	}
}

func TestNotFoundIsFatal(t *testing.T) {
	fake := chaintest.NewReader()
	fake.FailAddress(token, fmt.Errorf("eth_getStorageAt: %w", chain.ErrNotFound))

	if _, _, err := newResolver(fake).Resolve(context.Background(), token, nil); !errors.Is(err, chain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
