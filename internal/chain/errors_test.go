package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
)

type codedError struct {
	code int
	msg  string
}

func (e codedError) Error() string  { return e.msg }
func (e codedError) ErrorCode() int { return e.code }

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want func(error) bool
	}{
		{"not found", ethereum.NotFound, func(e error) bool { return errors.Is(e, ErrNotFound) }},
		{"missing trie", errors.New("missing trie node abc"), func(e error) bool { return errors.Is(e, ErrNotFound) }},
		{"revert code", codedError{code: 3, msg: "boom"}, func(e error) bool { return errors.Is(e, ErrReverted) }},
		{"revert msg", errors.New("execution reverted: nope"), func(e error) bool { return errors.Is(e, ErrReverted) }},
		{"transport", errors.New("connection refused"), IsRetryable},
		{"cancelled", context.Canceled, func(e error) bool { return errors.Is(e, context.Canceled) && !IsRetryable(e) }},
	}
	for _, tc := range cases {
		got := Classify("eth_call", tc.err)
		if !tc.want(got) {
			t.Fatalf("%s: unexpected classification %v", tc.name, got)
		}
	}
	if Classify("eth_call", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestOutcome(t *testing.T) {
	if Outcome(nil) != "ok" {
		t.Fatalf("expected ok")
	}
	if Outcome(Classify("eth_call", errors.New("execution reverted"))) != "reverted" {
		t.Fatalf("expected reverted")
	}
	if Outcome(&RPCError{Method: "eth_call", Err: errors.New("x")}) != "error" {
		t.Fatalf("expected error")
	}
}

func TestRetryOnlyRetriesTransportErrors(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	attempts := 0
	err := Retry(context.Background(), policy, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return &RPCError{Method: "eth_call", Err: errors.New("timeout")}
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Fatalf("expected success after 3 attempts, got %v after %d", err, attempts)
	}

	attempts = 0
	err = Retry(context.Background(), policy, func(context.Context) error {
		attempts++
		return ErrReverted
	})
	if !errors.Is(err, ErrReverted) || attempts != 1 {
		t.Fatalf("revert must not be retried, got %v after %d", err, attempts)
	}

	attempts = 0
	err = Retry(context.Background(), policy, func(context.Context) error {
		attempts++
		return &RPCError{Method: "eth_call", Err: errors.New("timeout")}
	})
	if !IsRetryable(err) || attempts != 4 {
		t.Fatalf("expected exhausted retries, got %v after %d", err, attempts)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	err := Retry(ctx, policy, func(context.Context) error {
		cancel()
		return &RPCError{Method: "eth_call", Err: errors.New("timeout")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
