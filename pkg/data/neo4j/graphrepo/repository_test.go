package graphrepo

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/transfergraph/internal/types"
	"github.com/trustlens/transfergraph/pkg/neo4j/mocks"
	"github.com/trustlens/transfergraph/pkg/utils"
)

const (
	addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	addrC = "0xcccccccccccccccccccccccccccccccccccccccc"

	contract = "0xb613051ab06ffcbc5ba8683698e4a14c7c803ede"
)

// scenarioBatch is the three-transfer fixture (A→B #1, B→C #2, A→C #3):
// persisting it once must create exactly three nodes and three edges.
func scenarioBatch() types.EnrichedBatch {
	return types.EnrichedBatch{
		Events: []types.TransferEvent{
			{From: addrA, To: addrB, TokenID: big.NewInt(1), TxHash: "0x01"},
			{From: addrB, To: addrC, TokenID: big.NewInt(2), TxHash: "0x02"},
			{From: addrA, To: addrC, TokenID: big.NewInt(3), TxHash: "0x03"},
		},
		Gas: []types.GasInfo{
			{Price: 25, Used: 0.000021},
			{Price: 30, Used: 0.000052},
			{Price: 25, Used: 0.000021},
		},
	}
}

func expectMatch(tx *mocks.MockTransaction, address string, records int) {
	tx.
		On("Run", mock.Anything, matchUserCypher, map[string]any{"address": address}).
		Return(&mocks.StaticResult{Records: records}, nil).
		Once()
}

func expectCreate(tx *mocks.MockTransaction, address, nodeType string) {
	tx.
		On("Run", mock.Anything, createUserCypher, map[string]any{"address": address, "type": nodeType}).
		Return(&mocks.StaticResult{Records: 1}, nil).
		Once()
}

func expectEdge(tx *mocks.MockTransaction, ev types.TransferEvent, g types.GasInfo, records int) {
	tx.
		On("Run", mock.Anything, createTransferCypher, map[string]any{
			"from":            ev.From,
			"to":              ev.To,
			"tokenId":         ev.TokenID.String(),
			"contractAddress": contract,
			"gasPrice":        gasParam(g.Price),
			"gasUsed":         gasParam(g.Used),
		}).
		Return(&mocks.StaticResult{Records: records}, nil).
		Once()
}

func newTestRepo(tx *mocks.MockTransaction) (Writer, *mocks.MockClient, *mocks.MockSession) {
	session := (&mocks.MockSession{}).WithTx(tx)
	session.On("ExecuteWrite", mock.Anything, mock.Anything).Return(nil, nil)
	session.On("Close", mock.Anything).Return(nil).Once()

	client := &mocks.MockClient{}
	client.On("Session", mock.Anything).Return(session).Once()

	return NewRepository(client, utils.NopLogger()), client, session
}

func TestPersist_ScenarioCreatesThreeNodesAndThreeEdges(t *testing.T) {
	t.Parallel()
	tx := &mocks.MockTransaction{}
	batch := scenarioBatch()

	// Sender pass: A and B created, second A deduplicated.
	expectMatch(tx, addrA, 0)
	expectCreate(tx, addrA, NodeTypeFrom)
	expectMatch(tx, addrB, 0)
	expectCreate(tx, addrB, NodeTypeFrom)
	expectMatch(tx, addrA, 1)

	// Receiver pass: only C is new; B and the second C are deduplicated.
	expectMatch(tx, addrB, 1)
	expectMatch(tx, addrC, 0)
	expectCreate(tx, addrC, NodeTypeTo)
	expectMatch(tx, addrC, 1)

	// Edge pass: one edge per event, never deduplicated.
	for i, ev := range batch.Events {
		expectEdge(tx, ev, batch.Gas[i], 1)
	}

	repo, client, session := newTestRepo(tx)

	var states []State
	err := repo.Persist(t.Context(), "send", contract, batch, func(s Status) {
		states = append(states, s.State)
	})
	require.NoError(t, err)

	assert.Equal(t, []State{
		StateStart,
		StateAddressesFromSaved,
		StateAddressesToSaved,
		StateRelationsSaved,
		StateDone,
	}, states)

	tx.AssertExpectations(t)
	session.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestPersist_RepeatedRunCreatesNoDuplicateNodes(t *testing.T) {
	t.Parallel()
	tx := &mocks.MockTransaction{}
	batch := scenarioBatch()

	// Every address already exists; no create statement may run.
	expectMatch(tx, addrA, 1)
	expectMatch(tx, addrB, 1)
	expectMatch(tx, addrA, 1)
	expectMatch(tx, addrB, 1)
	expectMatch(tx, addrC, 1)
	expectMatch(tx, addrC, 1)
	for i, ev := range batch.Events {
		expectEdge(tx, ev, batch.Gas[i], 1)
	}

	repo, _, _ := newTestRepo(tx)

	err := repo.Persist(t.Context(), "send", contract, batch, nil)
	require.NoError(t, err)

	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "Run", mock.Anything, createUserCypher, mock.Anything)
}

func TestPersist_DanglingEdgeFailsTheBatch(t *testing.T) {
	t.Parallel()
	tx := &mocks.MockTransaction{}
	batch := types.EnrichedBatch{
		Events: []types.TransferEvent{
			{From: addrA, To: addrB, TokenID: big.NewInt(1), TxHash: "0x01"},
		},
		Gas: []types.GasInfo{{Price: 25, Used: 0.000021}},
	}

	expectMatch(tx, addrA, 1)
	expectMatch(tx, addrB, 1)
	// Zero rows back from the edge create: an endpoint is missing.
	expectEdge(tx, batch.Events[0], batch.Gas[0], 0)

	repo, _, session := newTestRepo(tx)

	var last Status
	err := repo.Persist(t.Context(), "send", contract, batch, func(s Status) {
		last = s
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDanglingReference)
	assert.Equal(t, StateFailed, last.State)
	assert.ErrorIs(t, last.Err, ErrDanglingReference)
	session.AssertCalled(t, "Close", mock.Anything)
}

func TestPersist_NodeWriteFailureSurfacesFailedStatus(t *testing.T) {
	t.Parallel()
	writeErr := errors.New("connection reset")

	session := &mocks.MockSession{}
	session.On("ExecuteWrite", mock.Anything, mock.Anything).Return(nil, writeErr)
	session.On("Close", mock.Anything).Return(nil).Once()

	client := &mocks.MockClient{}
	client.On("Session", mock.Anything).Return(session).Once()

	repo := NewRepository(client, utils.NopLogger())

	batch := scenarioBatch()
	var states []State
	err := repo.Persist(t.Context(), "receive", contract, batch, func(s Status) {
		states = append(states, s.State)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)
	assert.Contains(t, err.Error(), "save sender nodes")
	assert.Equal(t, []State{StateStart, StateFailed}, states)
	session.AssertExpectations(t)
}

func TestPersist_UnavailableGasStoredAsNull(t *testing.T) {
	t.Parallel()
	tx := &mocks.MockTransaction{}
	batch := types.EnrichedBatch{
		Events: []types.TransferEvent{
			{From: addrA, To: addrB, TokenID: big.NewInt(9), TxHash: "0x09"},
		},
		Gas: []types.GasInfo{types.GasUnavailable()},
	}

	expectMatch(tx, addrA, 1)
	expectMatch(tx, addrB, 1)
	tx.
		On("Run", mock.Anything, createTransferCypher, map[string]any{
			"from":            addrA,
			"to":              addrB,
			"tokenId":         "9",
			"contractAddress": contract,
			"gasPrice":        nil,
			"gasUsed":         nil,
		}).
		Return(&mocks.StaticResult{Records: 1}, nil).
		Once()

	repo, _, _ := newTestRepo(tx)
	err := repo.Persist(t.Context(), "send", contract, batch, nil)
	require.NoError(t, err)
	tx.AssertExpectations(t)
}

func TestPersist_DegradedBatchWithoutGas(t *testing.T) {
	t.Parallel()
	tx := &mocks.MockTransaction{}
	ev := types.TransferEvent{From: addrA, To: addrB, TokenID: big.NewInt(4), TxHash: "0x04"}
	batch := types.EnrichedBatch{Events: []types.TransferEvent{ev}}

	expectMatch(tx, addrA, 1)
	expectMatch(tx, addrB, 1)
	expectEdge(tx, ev, types.GasUnavailable(), 1)

	repo, _, _ := newTestRepo(tx)
	err := repo.Persist(t.Context(), "send", contract, batch, nil)
	require.NoError(t, err)
	tx.AssertExpectations(t)
}

func TestPersist_EmptyBatchStillWalksTheStateMachine(t *testing.T) {
	t.Parallel()
	session := &mocks.MockSession{}
	session.On("Close", mock.Anything).Return(nil).Once()

	client := &mocks.MockClient{}
	client.On("Session", mock.Anything).Return(session).Once()

	repo := NewRepository(client, utils.NopLogger())

	var states []State
	err := repo.Persist(t.Context(), "send", contract, types.EnrichedBatch{}, func(s Status) {
		states = append(states, s.State)
	})
	require.NoError(t, err)
	assert.Equal(t, []State{
		StateStart,
		StateAddressesFromSaved,
		StateAddressesToSaved,
		StateRelationsSaved,
		StateDone,
	}, states)
	session.AssertNotCalled(t, "ExecuteWrite", mock.Anything, mock.Anything)
}

func TestStatusMessagesCarryDirectionPrefix(t *testing.T) {
	t.Parallel()
	s := newStatus(StateStart, "receive", nil)
	assert.Equal(t, "[receive] Start post logs", s.Message)

	s = newStatus(StateDone, "send", nil)
	assert.Equal(t, "[send] Finish post logs", s.Message)
}
