package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"tokenScope/internal/metrics"
)

// Reader is the read-only state surface every analysis component consumes.
type Reader interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// Client wraps go-ethereum RPC and classifies its errors.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	metrics   *metrics.Metrics
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, m *metrics.Metrics) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		metrics:   m,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	start := time.Now()
	id, err := c.ethClient.ChainID(ctx)
	return id, c.observe("eth_chainId", start, err)
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	start := time.Now()
	n, err := c.ethClient.BlockNumber(ctx)
	return n, c.observe("eth_blockNumber", start, err)
}

// HeaderByNumber returns the block header by number.
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	start := time.Now()
	header, err := c.ethClient.HeaderByNumber(ctx, number)
	return header, c.observe("eth_getBlockByNumber", start, err)
}

// CallContract performs an eth_call pinned to blockNumber.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	start := time.Now()
	out, err := c.ethClient.CallContract(ctx, msg, blockNumber)
	return out, c.observe("eth_call", start, err)
}

// StorageAt reads one storage word pinned to blockNumber.
func (c *Client) StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error) {
	start := time.Now()
	out, err := c.ethClient.StorageAt(ctx, account, key, blockNumber)
	return out, c.observe("eth_getStorageAt", start, err)
}

// CodeAt returns the runtime bytecode pinned to blockNumber.
func (c *Client) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	start := time.Now()
	out, err := c.ethClient.CodeAt(ctx, account, blockNumber)
	return out, c.observe("eth_getCode", start, err)
}

func (c *Client) observe(method string, start time.Time, err error) error {
	err = Classify(method, err)
	c.metrics.ObserveRPC(method, Outcome(err), time.Since(start))
	return err
}
