package gas

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trustlens/transfergraph/internal/chainclient"
	"github.com/trustlens/transfergraph/internal/types"
	"github.com/trustlens/transfergraph/pkg/metrics"
	"github.com/trustlens/transfergraph/pkg/utils"
)

const defaultConcurrency = 8

// Correlator resolves the transaction receipt behind each event and extracts
// its gas cost. The output is positionally aligned with the input: slot i
// always describes event i, with the unavailable sentinel filling slots whose
// receipt could not be resolved.
type Correlator struct {
	reader      chainclient.ReceiptReader // nil means no receipt source configured
	concurrency int
	log         *zap.SugaredLogger
	metrics     *metrics.Metrics
}

// Option configures the Correlator.
type Option func(*Correlator)

// WithConcurrency bounds the number of receipt lookups in flight.
func WithConcurrency(n int) Option {
	return func(c *Correlator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithMetrics enables metrics collection.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Correlator) {
		c.metrics = m
	}
}

// New creates a Correlator. A nil reader is allowed and puts the correlator
// in degraded mode: every batch correlates to empty gas data.
func New(reader chainclient.ReceiptReader, log *zap.SugaredLogger, opts ...Option) *Correlator {
	c := &Correlator{
		reader:      reader,
		concurrency: defaultConcurrency,
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Correlate fetches gas data for every event. Lookups run concurrently but
// each result is written to its input index, so ordering never depends on
// completion order. Individual receipt failures fill their slot with the
// unavailable sentinel instead of shortening the result; only context
// cancellation aborts the batch.
func (c *Correlator) Correlate(ctx context.Context, events []types.TransferEvent) ([]types.GasInfo, error) {
	if c.reader == nil {
		c.log.Debugw("no receipt source configured, returning empty gas data", "events", len(events))
		return []types.GasInfo{}, nil
	}
	if len(events) == 0 {
		return []types.GasInfo{}, nil
	}

	out := make([]types.GasInfo, len(events))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ev := range events {
		g.Go(func() error {
			receipt, err := c.reader.TransactionReceipt(gctx, ev.TxHash)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.log.Warnw("receipt unavailable", "txHash", ev.TxHash, "error", err)
				if c.metrics != nil {
					c.metrics.IncReceiptsMissing()
				}
				out[i] = types.GasUnavailable()
				return nil
			}
			out[i] = types.GasInfo{
				Price: utils.WeiToGwei(receipt.GasPrice),
				Used:  utils.Uint64ToGwei(receipt.GasUsed),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("correlate gas for %d events: %w", len(events), err)
	}
	return out, nil
}
