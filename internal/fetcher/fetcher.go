package fetcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/trustlens/transfergraph/internal/chainclient"
	"github.com/trustlens/transfergraph/internal/types"
)

// QueryError wraps a failed or malformed chain log query. The event log is
// fetched in one call per direction; on error no partial list is returned.
type QueryError struct {
	Contract string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query transfer log for %s: %v", e.Contract, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Log holds the two directional views of a contract's transfer history.
// When Unfiltered is set, Sent and Received are the same event set and the
// caller must not treat them as a true directional split.
type Log struct {
	Sent       []types.TransferEvent
	Received   []types.TransferEvent
	Unfiltered bool
}

// Fetcher queries a contract's transfer event log, optionally filtered to a
// participant address. Stateless between calls.
type Fetcher struct {
	reader chainclient.LogReader
	log    *zap.SugaredLogger
}

func New(reader chainclient.LogReader, log *zap.SugaredLogger) *Fetcher {
	return &Fetcher{reader: reader, log: log}
}

// Fetch returns the contract's transfer events. With an empty participant it
// issues a single unfiltered query and returns the identical set as both
// directions; otherwise one filtered query per direction.
func (f *Fetcher) Fetch(ctx context.Context, contract, participant string) (Log, error) {
	if participant == "" {
		events, err := f.reader.FilterTransfers(ctx, contract, chainclient.TransferFilter{})
		if err != nil {
			return Log{}, &QueryError{Contract: contract, Err: err}
		}
		f.log.Debugw("fetched transfer log", "contract", contract, "events", len(events), "filtered", false)
		return Log{Sent: events, Received: events, Unfiltered: true}, nil
	}

	sent, err := f.reader.FilterTransfers(ctx, contract, chainclient.TransferFilter{From: &participant})
	if err != nil {
		return Log{}, &QueryError{Contract: contract, Err: err}
	}

	received, err := f.reader.FilterTransfers(ctx, contract, chainclient.TransferFilter{To: &participant})
	if err != nil {
		return Log{}, &QueryError{Contract: contract, Err: err}
	}

	f.log.Debugw("fetched transfer log",
		"contract", contract,
		"participant", participant,
		"sent", len(sent),
		"received", len(received),
	)
	return Log{Sent: sent, Received: received}, nil
}
