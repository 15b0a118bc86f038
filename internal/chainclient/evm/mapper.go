package evm

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/trustlens/transfergraph/internal/chainclient"
	internaltypes "github.com/trustlens/transfergraph/internal/types"
)

// transferEventTopic is keccak256("Transfer(address,address,uint256)"), the
// shared signature of ERC-20 value transfers and ERC-721 token transfers.
var transferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

const wordLen = 32

// mapTransferLog decodes one raw Transfer log into the pipeline's canonical
// event shape. Two layouts exist on chain for the same signature:
//   - ERC-721: from, to and tokenId all indexed (4 topics, empty data)
//   - ERC-20:  from and to indexed, value in the data word (3 topics)
//
// Both are normalized here so downstream stages see a single shape.
func mapTransferLog(l types.Log) (internaltypes.TransferEvent, error) {
	if len(l.Topics) == 0 || l.Topics[0] != transferEventTopic {
		return internaltypes.TransferEvent{}, fmt.Errorf("unexpected event signature %s", topicHex(l))
	}

	var tokenID *big.Int
	switch len(l.Topics) {
	case 4:
		tokenID = new(big.Int).SetBytes(l.Topics[3].Bytes())
	case 3:
		if len(l.Data) != wordLen {
			return internaltypes.TransferEvent{}, fmt.Errorf("transfer data is %d bytes, want %d", len(l.Data), wordLen)
		}
		tokenID = new(big.Int).SetBytes(l.Data)
	default:
		return internaltypes.TransferEvent{}, fmt.Errorf("transfer log has %d topics, want 3 or 4", len(l.Topics))
	}

	return internaltypes.TransferEvent{
		From:        topicAddress(l.Topics[1]),
		To:          topicAddress(l.Topics[2]),
		TokenID:     tokenID,
		TxHash:      strings.ToLower(l.TxHash.Hex()),
		BlockNumber: l.BlockNumber,
		LogIndex:    l.Index,
	}, nil
}

func mapReceipt(txHash string, r *types.Receipt) *chainclient.Receipt {
	return &chainclient.Receipt{
		TxHash:   txHash,
		GasPrice: r.EffectiveGasPrice,
		GasUsed:  r.GasUsed,
	}
}

// topicAddress extracts the 20-byte address right-aligned in an indexed topic.
func topicAddress(t common.Hash) string {
	return strings.ToLower(common.BytesToAddress(t.Bytes()).Hex())
}

// addressTopic left-pads an address into the 32-byte topic form used by
// indexed-argument filters.
func addressTopic(addr string) common.Hash {
	return common.BytesToHash(common.HexToAddress(addr).Bytes())
}

func topicHex(l types.Log) string {
	if len(l.Topics) == 0 {
		return "<none>"
	}
	return l.Topics[0].Hex()
}
