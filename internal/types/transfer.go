package types

import (
	"math"
	"math/big"
)

// TransferEvent is one decoded Transfer(from, to, tokenId) log entry.
// Immutable once produced by the fetcher; TxHash is unique per transaction,
// not per event (one transaction may emit several transfers).
type TransferEvent struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	TokenID     *big.Int `json:"tokenId"`
	TxHash      string   `json:"txHash"`
	BlockNumber uint64   `json:"blockNumber"`
	LogIndex    uint     `json:"logIndex"`
}

// GasInfo carries the gas cost of the transaction that emitted an event,
// gwei-denominated. Index i of a GasInfo slice corresponds to index i of the
// event slice it was correlated against; that alignment must survive partial
// failure, so unavailable values are NaN rather than omitted entries.
type GasInfo struct {
	Price float64 `json:"gasPrice"`
	Used  float64 `json:"gasUsed"`
}

// GasUnavailable returns the sentinel GasInfo recorded when a receipt could
// not be resolved for an individual transaction.
func GasUnavailable() GasInfo {
	return GasInfo{Price: math.NaN(), Used: math.NaN()}
}

// Unavailable reports whether this slot holds the missing-receipt sentinel.
func (g GasInfo) Unavailable() bool {
	return math.IsNaN(g.Price) || math.IsNaN(g.Used)
}

// EnrichedBatch pairs an event sequence with its positionally correlated gas
// data. Gas may be empty (degraded mode, no receipt source configured);
// otherwise len(Gas) == len(Events) holds.
type EnrichedBatch struct {
	Events []TransferEvent
	Gas    []GasInfo
}

// GasAt returns the gas slot for event i, or the unavailable sentinel when
// the batch was produced in degraded mode.
func (b EnrichedBatch) GasAt(i int) GasInfo {
	if i < 0 || i >= len(b.Gas) {
		return GasUnavailable()
	}
	return b.Gas[i]
}
