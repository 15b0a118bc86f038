package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAllMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	require.NotNil(t, m)

	// Registering a second instance on the same registry must collide.
	_, err = New(reg)
	require.Error(t, err)
}

func TestNewWithLabels(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewWithLabels(reg, Labels{
		Contract:    "0xb613051ab06ffcbc5ba8683698e4a14c7c803ede",
		Environment: "staging",
	})
	require.NoError(t, err)

	m.IncNodesCreated()
	m.IncNodesCreated()
	m.IncNodesDeduplicated()

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.nodesCreated), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.nodesDeduplicated), 1e-9)
}

func TestCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.AddEventsFetched(5)
	m.AddEventsFetched(0)
	m.AddEventsFetched(-3)
	assert.InDelta(t, 5.0, testutil.ToFloat64(m.eventsFetched), 1e-9)

	m.AddEdgesCreated(3)
	assert.InDelta(t, 3.0, testutil.ToFloat64(m.edgesCreated), 1e-9)

	m.IncReceiptsMissing()
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.receiptsMissing), 1e-9)

	m.IncGraphWriteFailures()
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.graphWriteErrors), 1e-9)

	m.RecordRPCCall("eth_getLogs", nil, 0.05)
	m.RecordRPCCall("eth_getLogs", errors.New("boom"), 0.01)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.rpcCalls.WithLabelValues("eth_getLogs", StatusSuccess)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.rpcCalls.WithLabelValues("eth_getLogs", StatusError)), 1e-9)

	m.IncRPCInFlight()
	m.IncRPCInFlight()
	m.DecRPCInFlight()
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.rpcInFlight), 1e-9)
}

func TestNilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.IncRPCInFlight()
	m.DecRPCInFlight()
	m.RecordRPCCall("eth_getLogs", nil, 0.1)
	m.AddEventsFetched(10)
	m.RecordReceiptFetch(nil, 0.1)
	m.IncReceiptsMissing()
	m.IncNodesCreated()
	m.IncNodesDeduplicated()
	m.AddEdgesCreated(2)
	m.IncGraphWriteFailures()
	m.ObservePersistDuration(1.2)
}
