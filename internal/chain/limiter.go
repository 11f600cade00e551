package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/semaphore"
)

// limitedReader caps the number of in-flight requests against one endpoint.
type limitedReader struct {
	next Reader
	sem  *semaphore.Weighted
}

// Limit wraps r so that at most n requests are in flight at once.
func Limit(r Reader, n int64) Reader {
	if n <= 0 {
		return r
	}
	return &limitedReader{next: r, sem: semaphore.NewWeighted(n)}
}

func (l *limitedReader) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.next.CallContract(ctx, msg, blockNumber)
}

func (l *limitedReader) StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.next.StorageAt(ctx, account, key, blockNumber)
}

func (l *limitedReader) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.next.CodeAt(ctx, account, blockNumber)
}
