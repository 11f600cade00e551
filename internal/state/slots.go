// Package state reads raw storage words at a pinned block.
package state

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/chain"
)

// EIP-1967 storage slots: keccak256("eip1967.proxy.<name>") - 1.
var (
	ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
	AdminSlot          = common.HexToHash("0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103")
	BeaconSlot         = common.HexToHash("0xa3f0ad74e5423aebfd80d3ef4346578335a9a72aeaee59ff6cb3582b35133d50")
)

// Reader reads storage words through a chain.Reader, retrying transport errors.
type Reader struct {
	chain  chain.Reader
	block  *big.Int
	policy chain.RetryPolicy
}

// NewReader pins all reads to block.
func NewReader(r chain.Reader, block *big.Int, policy chain.RetryPolicy) *Reader {
	return &Reader{chain: r, block: block, policy: policy}
}

// ReadSlot returns the 32-byte word at slot. Errors are chain.ErrNotFound or
// *chain.RPCError once retries are exhausted.
func (r *Reader) ReadSlot(ctx context.Context, contract common.Address, slot common.Hash) (common.Hash, error) {
	var raw []byte
	err := chain.Retry(ctx, r.policy, func(ctx context.Context) error {
		var err error
		raw, err = r.chain.StorageAt(ctx, contract, slot, r.block)
		return err
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("read slot %s of %s: %w", slot.Hex(), contract.Hex(), err)
	}
	if len(raw) > common.HashLength {
		return common.Hash{}, fmt.Errorf("read slot %s of %s: word is %d bytes", slot.Hex(), contract.Hex(), len(raw))
	}
	return common.BytesToHash(raw), nil
}

// ReadAddressSlot reads slot and decodes it as an address.
func (r *Reader) ReadAddressSlot(ctx context.Context, contract common.Address, slot common.Hash) (common.Address, bool, error) {
	word, err := r.ReadSlot(ctx, contract, slot)
	if err != nil {
		return common.Address{}, false, err
	}
	addr, ok := DecodeAddress(word)
	return addr, ok, nil
}

// DecodeAddress extracts the low 20 bytes. A zero address means absent.
func DecodeAddress(word common.Hash) (common.Address, bool) {
	addr := common.BytesToAddress(word[common.HashLength-common.AddressLength:])
	return addr, addr != (common.Address{})
}

// Code returns the runtime bytecode of account at the pinned block.
func (r *Reader) Code(ctx context.Context, account common.Address) ([]byte, error) {
	var code []byte
	err := chain.Retry(ctx, r.policy, func(ctx context.Context) error {
		var err error
		code, err = r.chain.CodeAt(ctx, account, r.block)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("code of %s: %w", account.Hex(), err)
	}
	return code, nil
}
