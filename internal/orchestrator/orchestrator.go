package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/trustlens/transfergraph/internal/fetcher"
	"github.com/trustlens/transfergraph/internal/types"
	"github.com/trustlens/transfergraph/pkg/data/neo4j/graphrepo"
)

// Direction labels for the two persistence passes.
const (
	DirectionSend    = "send"
	DirectionReceive = "receive"
)

// EventFetcher queries the contract's transfer log.
type EventFetcher interface {
	Fetch(ctx context.Context, contract, participant string) (fetcher.Log, error)
}

// GasCorrelator enriches an event sequence with positionally aligned gas data.
type GasCorrelator interface {
	Correlate(ctx context.Context, events []types.TransferEvent) ([]types.GasInfo, error)
}

// Orchestrator sequences fetch → correlate → persist for each directional
// event set. One pipeline run per invocation, no state carried across runs.
type Orchestrator struct {
	fetcher    EventFetcher
	correlator GasCorrelator
	writer     graphrepo.Writer
	log        *zap.SugaredLogger
}

func New(f EventFetcher, c GasCorrelator, w graphrepo.Writer, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{fetcher: f, correlator: c, writer: w, log: log}
}

// Run executes the full pipeline. When participant is empty the fetch is
// unfiltered and both directions hold the same events, so only the send pass
// persists; writing both would double-create every edge.
func (o *Orchestrator) Run(ctx context.Context, contract, participant string, onStatus graphrepo.StatusFunc) error {
	log, err := o.fetcher.Fetch(ctx, contract, participant)
	if err != nil {
		return fmt.Errorf("fetch event log: %w", err)
	}

	if err := o.runDirection(ctx, DirectionSend, contract, log.Sent, onStatus); err != nil {
		return err
	}

	if log.Unfiltered {
		o.log.Infow("unfiltered run, skipping receive pass", "contract", contract)
		return nil
	}

	return o.runDirection(ctx, DirectionReceive, contract, log.Received, onStatus)
}

func (o *Orchestrator) runDirection(ctx context.Context, direction, contract string, events []types.TransferEvent, onStatus graphrepo.StatusFunc) error {
	gas, err := o.correlator.Correlate(ctx, events)
	if err != nil {
		return fmt.Errorf("%s: correlate gas: %w", direction, err)
	}

	batch := types.EnrichedBatch{Events: events, Gas: gas}
	if err := o.writer.Persist(ctx, direction, contract, batch, onStatus); err != nil {
		return fmt.Errorf("%s: persist: %w", direction, err)
	}
	return nil
}
