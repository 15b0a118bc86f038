package chainclient

import (
	"context"
	"errors"
	"math/big"

	"github.com/trustlens/transfergraph/internal/types"
)

// ErrReceiptNotFound is returned by ReceiptReader when the chain has no
// receipt for the requested transaction hash.
var ErrReceiptNotFound = errors.New("transaction receipt not found")

// TransferFilter restricts a transfer-log query to events where the given
// address appears in the corresponding indexed position. Nil fields match
// any address.
type TransferFilter struct {
	From *string
	To   *string
}

// LogReader queries a contract's historical Transfer event log.
type LogReader interface {
	// FilterTransfers returns every Transfer event emitted by the contract
	// that matches the filter, in the order the chain yields them
	// (ascending block/log order).
	FilterTransfers(ctx context.Context, contract string, filter TransferFilter) ([]types.TransferEvent, error)
}

// Receipt is the post-execution record of a transaction, reduced to the
// fields the pipeline consumes.
type Receipt struct {
	TxHash   string
	GasPrice *big.Int // wei, effective price actually paid
	GasUsed  uint64
}

// ReceiptReader resolves transaction receipts by hash.
type ReceiptReader interface {
	// TransactionReceipt returns the receipt for txHash, or
	// ErrReceiptNotFound when the chain does not know the transaction.
	TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error)
}
