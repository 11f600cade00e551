package probe

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// Shape is the expected return layout of a probed function.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeAddress
	ShapeUint
	ShapeBool
	ShapeString
	ShapeBytes32
)

func (s Shape) String() string {
	switch s {
	case ShapeAddress:
		return "address"
	case ShapeUint:
		return "uint256"
	case ShapeBool:
		return "bool"
	case ShapeString:
		return "string"
	case ShapeBytes32:
		return "bytes32"
	default:
		return "none"
	}
}

// Function is one entry of the closed selector catalogue.
type Function struct {
	Signature string
	Returns   Shape
	inputs    abi.Arguments
	outputs   abi.Arguments
	selector  [4]byte
}

// Name returns the function name without its argument list.
func (f Function) Name() string {
	if i := strings.IndexByte(f.Signature, '('); i >= 0 {
		return f.Signature[:i]
	}
	return f.Signature
}

// Selector returns the 4-byte function id.
func (f Function) Selector() [4]byte {
	return f.selector
}

// Calldata packs the selector and arguments.
func (f Function) Calldata(args ...interface{}) ([]byte, error) {
	packed, err := f.inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", f.Signature, err)
	}
	return append(f.selector[:], packed...), nil
}

// MustCalldata is Calldata for fixed, known-good arguments.
func (f Function) MustCalldata(args ...interface{}) []byte {
	data, err := f.Calldata(args...)
	if err != nil {
		panic(err)
	}
	return data
}

func newFunction(signature string, returns Shape) Function {
	open := strings.IndexByte(signature, '(')
	if open < 0 || !strings.HasSuffix(signature, ")") {
		panic("probe: malformed signature " + signature)
	}
	f := Function{Signature: signature, Returns: returns}
	copy(f.selector[:], crypto.Keccak256([]byte(signature))[:4])

	if params := signature[open+1 : len(signature)-1]; params != "" {
		for _, p := range strings.Split(params, ",") {
			f.inputs = append(f.inputs, abi.Argument{Type: mustType(p)})
		}
	}
	if returns != ShapeNone {
		f.outputs = abi.Arguments{{Type: mustType(returns.String())}}
	}
	return f
}

func mustType(name string) abi.Type {
	typ, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

func getters(returns Shape, names ...string) []Function {
	out := make([]Function, 0, len(names))
	for _, name := range names {
		out = append(out, newFunction(name+"()", returns))
	}
	return out
}

// ERC20 metadata.
var (
	Name        = newFunction("name()", ShapeString)
	Symbol      = newFunction("symbol()", ShapeString)
	Decimals    = newFunction("decimals()", ShapeUint)
	TotalSupply = newFunction("totalSupply()", ShapeUint)
	BalanceOf   = newFunction("balanceOf(address)", ShapeUint)
)

// Ownership, pause and proxy introspection.
var (
	Owner          = newFunction("owner()", ShapeAddress)
	GetOwner       = newFunction("getOwner()", ShapeAddress)
	Admin          = newFunction("admin()", ShapeAddress)
	Implementation = newFunction("implementation()", ShapeAddress)
	Paused         = newFunction("paused()", ShapeBool)
	IsPaused       = newFunction("isPaused()", ShapeBool)

	OwnerGetters = []Function{Owner, GetOwner, Admin}
	PauseGetters = []Function{Paused, IsPaused}
)

// AccessControl.
var (
	HasRole            = newFunction("hasRole(bytes32,address)", ShapeBool)
	GetRoleAdmin       = newFunction("getRoleAdmin(bytes32)", ShapeBytes32)
	GetRoleMemberCount = newFunction("getRoleMemberCount(bytes32)", ShapeUint)
	GetRoleMember      = newFunction("getRoleMember(bytes32,uint256)", ShapeAddress)
)

// Selectors only looked up in bytecode, never called.
var (
	Mint          = newFunction("mint(address,uint256)", ShapeNone)
	Burn          = newFunction("burn(uint256)", ShapeNone)
	IsBlacklisted = newFunction("isBlacklisted(address)", ShapeBool)
	IsBlackListed = newFunction("isBlackListed(address)", ShapeBool)
	IsExcluded    = newFunction("isExcluded(address)", ShapeBool)
	IsExcludedFee = newFunction("_isExcludedFromFee(address)", ShapeBool)
	Blacklist     = newFunction("blacklist(address)", ShapeNone)

	CooldownEnabled = newFunction("cooldownEnabled()", ShapeBool)
	TradingCooldown = newFunction("tradingCooldown()", ShapeUint)

	BlacklistSelectors = []Function{IsBlacklisted, IsBlackListed, Blacklist, IsExcluded, IsExcludedFee}
	CooldownSelectors  = []Function{CooldownEnabled, TradingCooldown}
)

// Fee and limit getters, most specific first.
var (
	BuyFeeGetters = getters(ShapeUint,
		"buyTotalFees", "_buyTotalFees", "buyFee", "_buyFee", "buyTaxFee",
		"totalBuyFee", "_totalBuyFee", "buyMarketingFee", "buyLiquidityFee",
		"_taxFee", "taxFee", "_buyTax", "buyTax", "_buyFees", "getBuyTax",
	)
	SellFeeGetters = getters(ShapeUint,
		"sellTotalFees", "_sellTotalFees", "sellFee", "_sellFee", "sellTaxFee",
		"totalSellFee", "_totalSellFee", "sellMarketingFee", "sellLiquidityFee",
		"_sellTax", "sellTax", "_sellFees", "getSellTax",
	)
	GenericFeeGetters = getters(ShapeUint,
		"totalFee", "totalFees", "_totalFees", "_totalFee", "fee", "_fee",
		"_taxFee", "_liquidityFee", "reflectionFee",
	)
	FeeComponentGetters = getters(ShapeUint,
		"_liquidityFee", "_reflectionFee", "_marketingFee", "_burnFee",
		"liquidityFee", "reflectionFee", "marketingFee",
	)
	MaxTxGetters     = getters(ShapeUint, "maxTxAmount", "_maxTxAmount", "maxTransactionAmount")
	MaxWalletGetters = getters(ShapeUint, "maxWalletAmount", "_maxWalletAmount", "maxWallet")
)
