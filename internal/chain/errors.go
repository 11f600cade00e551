package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrNotFound means the block, state or contract does not exist. Fatal.
	ErrNotFound = errors.New("not found")
	// ErrReverted means the call executed and reverted, or hit no code.
	ErrReverted = errors.New("execution reverted")
)

// revertErrorCode is the JSON-RPC code geth uses for reverted eth_call.
const revertErrorCode = 3

// RPCError is a transport or provider failure. It is the only retryable class.
type RPCError struct {
	Method string
	Err    error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Method, e.Err)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

var revertMarkers = []string{
	"execution reverted",
	"revert",
	"invalid opcode",
	"invalid jump destination",
}

var missingStateMarkers = []string{
	"header not found",
	"unknown block",
	"block not found",
	"missing trie node",
}

// Classify maps a raw go-ethereum error onto the taxonomy.
func Classify(method string, err error) error {
	if err == nil {
		return nil
	}
	var rpcErr *RPCError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrReverted) || errors.As(err, &rpcErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ethereum.NotFound) {
		return fmt.Errorf("%s: %w", method, ErrNotFound)
	}

	var coded rpc.Error
	if errors.As(err, &coded) && coded.ErrorCode() == revertErrorCode {
		return fmt.Errorf("%s: %w: %v", method, ErrReverted, err)
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, missingStateMarkers) {
		return fmt.Errorf("%s: %w: %v", method, ErrNotFound, err)
	}
	if containsAny(msg, revertMarkers) {
		return fmt.Errorf("%s: %w: %v", method, ErrReverted, err)
	}
	return &RPCError{Method: method, Err: err}
}

// IsRetryable reports whether err is a transport failure worth retrying.
func IsRetryable(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr)
}

// Outcome labels err for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrReverted):
		return "reverted"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
