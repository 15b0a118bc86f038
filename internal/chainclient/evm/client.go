package evm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/trustlens/transfergraph/internal/chainclient"
	"github.com/trustlens/transfergraph/internal/types"
	"github.com/trustlens/transfergraph/pkg/metrics"
	"github.com/trustlens/transfergraph/pkg/utils"
)

// Client adapts a go-ethereum client to the pipeline's chain capabilities.
type Client struct {
	eth        *ethclient.Client
	metrics    *metrics.Metrics // nil if metrics disabled
	rpcTimeout time.Duration    // zero means unbounded calls
}

var (
	_ chainclient.LogReader     = (*Client)(nil)
	_ chainclient.ReceiptReader = (*Client)(nil)
)

// Option configures the Client.
type Option func(*Client)

// WithMetrics enables metrics collection for the client.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRPCTimeout bounds every chain round trip with the given timeout.
func WithRPCTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.rpcTimeout = d
	}
}

// Dial connects to an EVM JSON-RPC endpoint.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial evm rpc: %w", err)
	}

	client := &Client{eth: eth}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// New wraps an already-dialed eth client. Used by tests and by callers that
// manage the connection themselves.
func New(eth *ethclient.Client, opts ...Option) *Client {
	client := &Client{eth: eth}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FilterTransfers queries the contract's Transfer log, optionally narrowed to
// an indexed sender or receiver, and decodes each entry. The chain's own
// ascending block/log ordering is preserved.
func (c *Client) FilterTransfers(ctx context.Context, contract string, filter chainclient.TransferFilter) ([]types.TransferEvent, error) {
	const method = "eth_getLogs"

	normalized, err := utils.NormalizeAddress(contract)
	if err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}

	query, err := buildFilterQuery(normalized, filter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	start := time.Now()
	if c.metrics != nil {
		c.metrics.IncRPCInFlight()
		defer c.metrics.DecRPCInFlight()
	}

	logs, err := c.eth.FilterLogs(ctx, query)

	if c.metrics != nil {
		c.metrics.RecordRPCCall(method, err, time.Since(start).Seconds())
	}

	if err != nil {
		return nil, fmt.Errorf("filter logs for %s: %w", normalized, err)
	}

	events := make([]types.TransferEvent, 0, len(logs))
	for _, l := range logs {
		ev, err := mapTransferLog(l)
		if err != nil {
			return nil, fmt.Errorf("decode log %s[%d]: %w", l.TxHash.Hex(), l.Index, err)
		}
		events = append(events, ev)
	}

	if c.metrics != nil {
		c.metrics.AddEventsFetched(len(events))
	}
	return events, nil
}

// TransactionReceipt resolves the receipt for txHash. A transaction unknown
// to the chain maps to chainclient.ErrReceiptNotFound.
func (c *Client) TransactionReceipt(ctx context.Context, txHash string) (*chainclient.Receipt, error) {
	normalized, err := utils.NormalizeTxHash(txHash)
	if err != nil {
		return nil, fmt.Errorf("tx hash: %w", err)
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	start := time.Now()
	if c.metrics != nil {
		c.metrics.IncRPCInFlight()
		defer c.metrics.DecRPCInFlight()
	}

	receipt, err := c.eth.TransactionReceipt(ctx, common.HexToHash(normalized))

	if c.metrics != nil {
		c.metrics.RecordReceiptFetch(err, time.Since(start).Seconds())
	}

	if errors.Is(err, ethereum.NotFound) {
		return nil, fmt.Errorf("receipt %s: %w", normalized, chainclient.ErrReceiptNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch receipt %s: %w", normalized, err)
	}

	return mapReceipt(normalized, receipt), nil
}

// Close closes the underlying eth client.
func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.rpcTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.rpcTimeout)
}

func buildFilterQuery(contract string, filter chainclient.TransferFilter) (ethereum.FilterQuery, error) {
	topics := [][]common.Hash{{transferEventTopic}}

	if filter.From != nil {
		from, err := utils.NormalizeAddress(*filter.From)
		if err != nil {
			return ethereum.FilterQuery{}, fmt.Errorf("from filter: %w", err)
		}
		topics = append(topics, []common.Hash{addressTopic(from)})
	}
	if filter.To != nil {
		to, err := utils.NormalizeAddress(*filter.To)
		if err != nil {
			return ethereum.FilterQuery{}, fmt.Errorf("to filter: %w", err)
		}
		// Pad the topic list so the receiver lands in indexed position 2.
		for len(topics) < 2 {
			topics = append(topics, nil)
		}
		topics = append(topics, []common.Hash{addressTopic(to)})
	}

	return ethereum.FilterQuery{
		Addresses: []common.Address{common.HexToAddress(contract)},
		Topics:    topics,
	}, nil
}
