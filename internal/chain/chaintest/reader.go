// Package chaintest provides an in-memory chain.Reader for tests.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"tokenScope/internal/chain"
)

type callKey struct {
	to   common.Address
	data string
}

type slotKey struct {
	account common.Address
	slot    common.Hash
}

type response struct {
	out []byte
	err error
}

// Reader answers calls from canned responses. Unknown calls revert, unknown
// slots read as zero and unknown accounts have no code.
type Reader struct {
	mu        sync.Mutex
	calls     map[callKey]response
	storage   map[slotKey]response
	code      map[common.Address][]byte
	failing   map[common.Address]error
	callCount map[common.Address]int
	blocks    []*big.Int
}

// NewReader returns an empty fake.
func NewReader() *Reader {
	return &Reader{
		calls:     make(map[callKey]response),
		storage:   make(map[slotKey]response),
		code:      make(map[common.Address][]byte),
		failing:   make(map[common.Address]error),
		callCount: make(map[common.Address]int),
	}
}

// SetCall registers the return data for an exact calldata.
func (r *Reader) SetCall(to common.Address, data, out []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[callKey{to: to, data: hexutil.Encode(data)}] = response{out: out}
}

// SetCallError registers an error for an exact calldata.
func (r *Reader) SetCallError(to common.Address, data []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[callKey{to: to, data: hexutil.Encode(data)}] = response{err: err}
}

// SetStorage sets a storage word.
func (r *Reader) SetStorage(account common.Address, slot, value common.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[slotKey{account: account, slot: slot}] = response{out: value.Bytes()}
}

// SetStorageError makes a storage read fail.
func (r *Reader) SetStorageError(account common.Address, slot common.Hash, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[slotKey{account: account, slot: slot}] = response{err: err}
}

// SetCode sets the runtime bytecode of account.
func (r *Reader) SetCode(account common.Address, code []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code[account] = code
}

// FailAddress makes every request touching account return err.
func (r *Reader) FailAddress(account common.Address, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing[account] = err
}

// CallCount returns how many eth_call requests targeted account.
func (r *Reader) CallCount(account common.Address) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.callCount[account]
}

// Blocks returns the block numbers every request was pinned to.
func (r *Reader) Blocks() []*big.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*big.Int(nil), r.blocks...)
}

func (r *Reader) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil {
		return nil, fmt.Errorf("eth_call: %w: no target", chain.ErrReverted)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, blockNumber)
	r.callCount[*msg.To]++
	if err, ok := r.failing[*msg.To]; ok {
		return nil, err
	}
	resp, ok := r.calls[callKey{to: *msg.To, data: hexutil.Encode(msg.Data)}]
	if !ok {
		return nil, fmt.Errorf("eth_call: %w", chain.ErrReverted)
	}
	return resp.out, resp.err
}

func (r *Reader) StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, blockNumber)
	if err, ok := r.failing[account]; ok {
		return nil, err
	}
	resp, ok := r.storage[slotKey{account: account, slot: key}]
	if !ok {
		return make([]byte, common.HashLength), nil
	}
	return resp.out, resp.err
}

func (r *Reader) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, blockNumber)
	if err, ok := r.failing[account]; ok {
		return nil, err
	}
	return r.code[account], nil
}

var _ chain.Reader = (*Reader)(nil)
