package graphrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trustlens/transfergraph/internal/types"
	"github.com/trustlens/transfergraph/pkg/metrics"
	"github.com/trustlens/transfergraph/pkg/neo4j"
)

// ErrDanglingReference is returned when an edge write targets an endpoint
// node that does not exist. Node passes always run before the edge pass, so
// seeing this indicates an ordering bug, not missing input.
var ErrDanglingReference = errors.New("transfer edge references a missing address node")

// Writer persists one enriched event batch as graph mutations.
type Writer interface {
	// Persist saves address nodes (deduplicated) and transfer edges (one per
	// event) for the batch, emitting a status update at every state-machine
	// transition. The write session is released on every exit path; node
	// creations committed before a failure are not rolled back.
	Persist(ctx context.Context, direction, contract string, batch types.EnrichedBatch, onStatus StatusFunc) error
}

type repository struct {
	client  neo4j.Client
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
}

// Option configures the repository.
type Option func(*repository)

// WithMetrics enables metrics collection for graph writes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *repository) {
		r.metrics = m
	}
}

// NewRepository creates a graph writer on top of the given client.
func NewRepository(client neo4j.Client, log *zap.SugaredLogger, opts ...Option) Writer {
	r := &repository{client: client, log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *repository) Persist(ctx context.Context, direction, contract string, batch types.EnrichedBatch, onStatus StatusFunc) error {
	emit := func(s Status) {
		if onStatus != nil {
			onStatus(s)
		}
	}

	start := time.Now()
	session := r.client.Session(ctx)
	defer session.Close(ctx) //nolint:errcheck // session release is best-effort on the error path

	emit(newStatus(StateStart, direction, nil))

	if err := r.saveAddresses(ctx, session, batch.Events, senderAddress, NodeTypeFrom); err != nil {
		return r.fail(direction, emit, fmt.Errorf("save sender nodes: %w", err))
	}
	emit(newStatus(StateAddressesFromSaved, direction, nil))

	if err := r.saveAddresses(ctx, session, batch.Events, receiverAddress, NodeTypeTo); err != nil {
		return r.fail(direction, emit, fmt.Errorf("save receiver nodes: %w", err))
	}
	emit(newStatus(StateAddressesToSaved, direction, nil))

	if err := r.saveRelations(ctx, session, contract, batch); err != nil {
		return r.fail(direction, emit, fmt.Errorf("save transfer edges: %w", err))
	}
	emit(newStatus(StateRelationsSaved, direction, nil))

	if r.metrics != nil {
		r.metrics.ObservePersistDuration(time.Since(start).Seconds())
	}
	r.log.Infow("persisted transfer batch",
		"direction", direction,
		"contract", contract,
		"events", len(batch.Events),
	)
	emit(newStatus(StateDone, direction, nil))
	return nil
}

func (r *repository) fail(direction string, emit func(Status), err error) error {
	if r.metrics != nil {
		r.metrics.IncGraphWriteFailures()
	}
	r.log.Errorw("graph write failed", "direction", direction, "error", err)
	emit(newStatus(StateFailed, direction, err))
	return err
}

func senderAddress(ev types.TransferEvent) string   { return ev.From }
func receiverAddress(ev types.TransferEvent) string { return ev.To }

// saveAddresses creates one node per distinct address, skipping addresses the
// graph already holds. Each address runs in its own write transaction:
// duplicate avoidance is evaluated per address, so an interrupted pass leaves
// only individually committed, idempotent creations behind.
func (r *repository) saveAddresses(ctx context.Context, session neo4j.Session, events []types.TransferEvent, pick func(types.TransferEvent) string, nodeType string) error {
	for _, ev := range events {
		address := pick(ev)
		created, err := session.ExecuteWrite(ctx, func(tx neo4j.Transaction) (any, error) {
			res, err := tx.Run(ctx, matchUserCypher, map[string]any{"address": address})
			if err != nil {
				return false, err
			}
			if res.Next(ctx) {
				// First writer wins: the node keeps whichever type it was
				// created with, even when the address later shows up on the
				// other side of a transfer.
				return false, nil
			}
			if err := res.Err(); err != nil {
				return false, err
			}

			if _, err := tx.Run(ctx, createUserCypher, map[string]any{
				"address": address,
				"type":    nodeType,
			}); err != nil {
				return false, err
			}
			return true, nil
		})
		if err != nil {
			return fmt.Errorf("address %s: %w", address, err)
		}
		if r.metrics != nil {
			if wasCreated, _ := created.(bool); wasCreated {
				r.metrics.IncNodesCreated()
			} else {
				r.metrics.IncNodesDeduplicated()
			}
		}
	}
	return nil
}

// saveRelations writes every edge of the batch inside a single write
// transaction, so an interruption mid-batch never leaves a partial edge set.
func (r *repository) saveRelations(ctx context.Context, session neo4j.Session, contract string, batch types.EnrichedBatch) error {
	if len(batch.Events) == 0 {
		return nil
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.Transaction) (any, error) {
		for i, ev := range batch.Events {
			res, err := tx.Run(ctx, createTransferCypher, map[string]any{
				"from":            ev.From,
				"to":              ev.To,
				"tokenId":         tokenIDString(ev),
				"contractAddress": contract,
				"gasPrice":        gasParam(batch.GasAt(i).Price),
				"gasUsed":         gasParam(batch.GasAt(i).Used),
			})
			if err != nil {
				return nil, err
			}
			if !res.Next(ctx) {
				if err := res.Err(); err != nil {
					return nil, err
				}
				return nil, fmt.Errorf("edge %s -> %s (tx %s): %w", ev.From, ev.To, ev.TxHash, ErrDanglingReference)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.AddEdgesCreated(len(batch.Events))
	}
	return nil
}

func tokenIDString(ev types.TransferEvent) string {
	if ev.TokenID == nil {
		return "0"
	}
	return ev.TokenID.String()
}

// gasParam maps the unavailable sentinel to a Cypher null so the graph never
// stores NaN properties.
func gasParam(v float64) any {
	if v != v { // NaN
		return nil
	}
	return v
}
