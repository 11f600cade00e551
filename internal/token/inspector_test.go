package token

import (
	"context"
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
	tokenAddr = common.HexToAddress("0x5000000000000000000000000000000000000005")
	implAddr  = common.HexToAddress("0x6000000000000000000000000000000000000006")
	ownerAddr = common.HexToAddress("0x7000000000000000000000000000000000000007")
	minter    = common.HexToAddress("0x8000000000000000000000000000000000000008")
)

func uintWord(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

func addrWord(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), 32)
}

func stringWord(t *testing.T, s string) []byte {
	t.Helper()
	word := make([]byte, 32)
	copy(word, s)
	return append(append(uintWord(32), uintWord(int64(len(s)))...), word...)
}

func newInspector(fake *chaintest.Reader) *Inspector {
	block := big.NewInt(7)
	policy := chain.RetryPolicy{MaxRetries: 0, BaseDelay: 1, MaxDelay: 1}
	prober := probe.New(probe.Config{Reader: fake, Block: block, Retry: policy})
	return NewInspector(prober, state.NewReader(fake, block, policy), nil, nil)
}

func TestZeroOwnerIsRenounced(t *testing.T) {
	fake := chaintest.NewReader()
	fake.SetCall(tokenAddr, probe.Owner.MustCalldata(), make([]byte, 32))

	facts, diags, err := newInspector(fake).Inspect(context.Background(), tokenAddr, []byte{0x60, 0x00}, model.ProxyInfo{Kind: model.ProxyNone})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if facts.Owner == nil || !facts.Renounced {
		t.Fatalf("expected renounced owner, got %+v", facts)
	}
	if facts.OwnerIsContract != nil {
		t.Fatalf("zero owner must not be checked for code")
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}

func TestMetadataFallsBackToImplementation(t *testing.T) {
	fake := chaintest.NewReader()
	fake.SetCall(tokenAddr, probe.TotalSupply.MustCalldata(), uintWord(2_500_000_000))
	fake.SetCall(implAddr, probe.Decimals.MustCalldata(), uintWord(3))
	fake.SetCall(implAddr, probe.Symbol.MustCalldata(), stringWord(t, "IMP"))
	fake.SetCall(tokenAddr, probe.GetOwner.MustCalldata(), addrWord(ownerAddr))
	fake.SetCode(ownerAddr, []byte{0x60, 0x00})

	px := model.ProxyInfo{Kind: model.ProxyEIP1967, Implementation: &implAddr}
	facts, _, err := newInspector(fake).Inspect(context.Background(), tokenAddr, nil, px)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if facts.Symbol != "IMP" || facts.Decimals == nil || *facts.Decimals != 3 {
		t.Fatalf("expected implementation metadata, got %+v", facts.TokenMeta)
	}
	if facts.TotalSupplyFormatted != "2.50M" {
		t.Fatalf("expected 2.50M, got %q", facts.TotalSupplyFormatted)
	}
	if facts.Renounced || facts.OwnerIsContract == nil || !*facts.OwnerIsContract {
		t.Fatalf("expected contract owner, got %+v", facts)
	}
}

func TestMissingDecimalsStayUnknown(t *testing.T) {
	fake := chaintest.NewReader()
	fake.SetCall(tokenAddr, probe.TotalSupply.MustCalldata(), uintWord(1))

	facts, _, err := newInspector(fake).Inspect(context.Background(), tokenAddr, nil, model.ProxyInfo{Kind: model.ProxyNone})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if facts.Decimals != nil || facts.TotalSupplyFormatted != "" || facts.TotalSupply.Int64() != 1 {
		t.Fatalf("decimals must stay unknown, got %+v", facts)
	}
}

func TestFeesAndLimits(t *testing.T) {
	fake := chaintest.NewReader()
	fake.SetCall(tokenAddr, probe.BuyFeeGetters[0].MustCalldata(), uintWord(5))
	fake.SetCall(tokenAddr, probe.SellFeeGetters[0].MustCalldata(), uintWord(80))
	fake.SetCall(tokenAddr, probe.MaxTxGetters[2].MustCalldata(), uintWord(1000))

	facts, _, err := newInspector(fake).Inspect(context.Background(), tokenAddr, nil, model.ProxyInfo{Kind: model.ProxyNone})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	sec := facts.Security
	if sec.BuyFeePercent == nil || sec.BuyFeePercent.String() != "5" {
		t.Fatalf("expected buy fee 5, got %v", sec.BuyFeePercent)
	}
	if sec.SellFeePercent == nil || sec.SellFeePercent.String() != "8" {
		t.Fatalf("expected per-mille sell fee 8, got %v", sec.SellFeePercent)
	}
	if sec.MaxTxAmount == nil || sec.MaxTxAmount.Int64() != 1000 || sec.MaxWalletAmount != nil {
		t.Fatalf("unexpected limits %+v", sec)
	}
	if sec.Honeypot {
		t.Fatalf("not a honeypot")
	}
}

func TestFeeComponentsAreSummed(t *testing.T) {
	fake := chaintest.NewReader()
	fake.SetCall(tokenAddr, probe.FeeComponentGetters[1].MustCalldata(), uintWord(2))
	fake.SetCall(tokenAddr, probe.FeeComponentGetters[2].MustCalldata(), uintWord(3))
	fake.SetCall(tokenAddr, probe.FeeComponentGetters[3].MustCalldata(), uintWord(70))

	facts, _, err := newInspector(fake).Inspect(context.Background(), tokenAddr, nil, model.ProxyInfo{Kind: model.ProxyNone})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if facts.Security.BuyFeePercent == nil || facts.Security.BuyFeePercent.String() != "5" {
		t.Fatalf("expected summed fee 5, got %v", facts.Security.BuyFeePercent)
	}
}

func TestBytecodeFlagsAndRoles(t *testing.T) {
	fake := chaintest.NewReader()
	mint := probe.Mint.Selector()
	hasRole := probe.HasRole.Selector()
	code := append([]byte{0x63}, mint[:]...)
	code = append(code, 0x63)
	code = append(code, hasRole[:]...)
	code = append(code, []byte("nosell")...)

	minterRole := [32]byte(Roles[1].ID)
	fake.SetCall(tokenAddr, probe.Owner.MustCalldata(), addrWord(ownerAddr))
	fake.SetCall(tokenAddr, probe.GetRoleMemberCount.MustCalldata(minterRole), uintWord(1))
	fake.SetCall(tokenAddr, probe.GetRoleMember.MustCalldata(minterRole, big.NewInt(0)), addrWord(minter))
	fake.SetCall(tokenAddr, probe.HasRole.MustCalldata([32]byte{}, ownerAddr), uintWord(1))

	facts, _, err := newInspector(fake).Inspect(context.Background(), tokenAddr, code, model.ProxyInfo{Kind: model.ProxyNone})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	sec := facts.Security
	if !sec.Mintable || sec.Burnable || !sec.AccessControl || !sec.SellBlocked || !sec.Honeypot {
		t.Fatalf("unexpected flags %+v", sec)
	}
	if got := facts.Roles["MINTER_ROLE"]; len(got) != 1 || got[0] != minter {
		t.Fatalf("expected minter holder, got %v", got)
	}
	if got := facts.Roles["DEFAULT_ADMIN_ROLE"]; len(got) != 1 || got[0] != ownerAddr {
		t.Fatalf("expected owner as admin, got %v", got)
	}
	if _, ok := facts.Roles["PAUSER_ROLE"]; ok {
		t.Fatalf("pauser role has no holders")
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatAmount(big.NewInt(1234), 2); got != "12.34" {
		t.Fatalf("expected 12.34, got %s", got)
	}
	if got := FormatAmount(big.NewInt(1), 0); got != "1" {
		t.Fatalf("expected 1, got %s", got)
	}
	if got := HumanAmount(big.NewInt(999), 0); got != "999.00" {
		t.Fatalf("expected 999.00, got %s", got)
	}
	supply, _ := new(big.Int).SetString("1000000000000000000000000000000", 10)
	if got := HumanAmount(supply, 18); got != "1.00T" {
		t.Fatalf("expected 1.00T, got %s", got)
	}
}
