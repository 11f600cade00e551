// Package probe performs best-effort read-only calls where a missing
// function is a routine outcome.
package probe

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenScope/internal/chain"
	"tokenScope/internal/metrics"
)

// ErrUnsupported means the function reverted, is absent, or returned data
// that does not fit its declared shape.
var ErrUnsupported = errors.New("unsupported")

// IsUnsupported reports whether err is the routine absence outcome.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// Config wires a Prober.
type Config struct {
	Reader  chain.Reader
	Block   *big.Int
	Retry   chain.RetryPolicy
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Prober issues eth_call requests pinned to one block.
type Prober struct {
	reader  chain.Reader
	block   *big.Int
	retry   chain.RetryPolicy
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates a Prober.
func New(cfg Config) *Prober {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{
		reader:  cfg.Reader,
		block:   cfg.Block,
		retry:   cfg.Retry,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// Reader returns the underlying chain reader.
func (p *Prober) Reader() chain.Reader {
	return p.reader
}

// Block returns the pinned block.
func (p *Prober) Block() *big.Int {
	return p.block
}

// Call issues a raw eth_call with retry. Reverts become ErrUnsupported.
func (p *Prober) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{To: &to, Data: data}
	var out []byte
	err := chain.Retry(ctx, p.retry, func(ctx context.Context) error {
		var err error
		out, err = p.reader.CallContract(ctx, msg, p.block)
		return err
	})
	if err != nil {
		if errors.Is(err, chain.ErrReverted) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		return nil, err
	}
	return out, nil
}

// TryCall invokes fn on contract and returns the raw return data.
func (p *Prober) TryCall(ctx context.Context, contract common.Address, fn Function, args ...interface{}) ([]byte, error) {
	data, err := fn.Calldata(args...)
	if err != nil {
		return nil, err
	}
	out, err := p.Call(ctx, contract, data)
	if err == nil && len(out) == 0 && fn.Returns != ShapeNone {
		err = fmt.Errorf("%w: empty return", ErrUnsupported)
	}
	p.observe(contract, fn, err)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", fn.Signature, contract.Hex(), err)
	}
	return out, nil
}

func (p *Prober) observe(contract common.Address, fn Function, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case IsUnsupported(err):
		outcome = "unsupported"
	case chain.IsRetryable(err):
		outcome = "rpc_error"
		p.logger.Warn("probe rpc failure",
			zap.String("contract", contract.Hex()),
			zap.String("selector", fn.Signature),
			zap.Error(err),
		)
	default:
		outcome = chain.Outcome(err)
	}
	p.metrics.ObserveProbe(fn.Signature, outcome)
}

func (p *Prober) unpack(ctx context.Context, contract common.Address, fn Function, args []interface{}) (interface{}, error) {
	out, err := p.TryCall(ctx, contract, fn, args...)
	if err != nil {
		return nil, err
	}
	values, err := fn.outputs.Unpack(out)
	if err != nil || len(values) == 0 {
		return nil, fmt.Errorf("%s on %s: %w: bad return data", fn.Signature, contract.Hex(), ErrUnsupported)
	}
	return values[0], nil
}

// CallAddress calls an address-returning function.
func (p *Prober) CallAddress(ctx context.Context, contract common.Address, fn Function, args ...interface{}) (common.Address, error) {
	v, err := p.unpack(ctx, contract, fn, args)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: %w: not an address", fn.Signature, ErrUnsupported)
	}
	return addr, nil
}

// CallUint calls a uint256-returning function.
func (p *Prober) CallUint(ctx context.Context, contract common.Address, fn Function, args ...interface{}) (*big.Int, error) {
	v, err := p.unpack(ctx, contract, fn, args)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: %w: not a uint", fn.Signature, ErrUnsupported)
	}
	return n, nil
}

// CallBool calls a bool-returning function.
func (p *Prober) CallBool(ctx context.Context, contract common.Address, fn Function, args ...interface{}) (bool, error) {
	v, err := p.unpack(ctx, contract, fn, args)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: %w: not a bool", fn.Signature, ErrUnsupported)
	}
	return b, nil
}

// CallString calls a string-returning function, accepting bytes32 returns
// from older tokens.
func (p *Prober) CallString(ctx context.Context, contract common.Address, fn Function) (string, error) {
	out, err := p.TryCall(ctx, contract, fn)
	if err != nil {
		return "", err
	}
	return decodeString(out)
}

// FirstAddress returns the first non-failing result of fns, in order.
func (p *Prober) FirstAddress(ctx context.Context, contract common.Address, fns []Function) (common.Address, Function, error) {
	var lastErr error = ErrUnsupported
	for _, fn := range fns {
		addr, err := p.CallAddress(ctx, contract, fn)
		if err == nil {
			return addr, fn, nil
		}
		if ctx.Err() != nil {
			return common.Address{}, Function{}, ctx.Err()
		}
		lastErr = preferTransport(lastErr, err)
	}
	return common.Address{}, Function{}, lastErr
}

// FirstBool returns the first non-failing result of fns, in order.
func (p *Prober) FirstBool(ctx context.Context, contract common.Address, fns []Function) (bool, Function, error) {
	var lastErr error = ErrUnsupported
	for _, fn := range fns {
		b, err := p.CallBool(ctx, contract, fn)
		if err == nil {
			return b, fn, nil
		}
		if ctx.Err() != nil {
			return false, Function{}, ctx.Err()
		}
		lastErr = preferTransport(lastErr, err)
	}
	return false, Function{}, lastErr
}

// preferTransport keeps a transport failure over a plain absence so callers
// can surface it.
func preferTransport(prev, next error) error {
	if chain.IsRetryable(prev) && !chain.IsRetryable(next) {
		return prev
	}
	return next
}
