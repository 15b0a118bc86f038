package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "transfergraph"

	// Status label values for success/error metrics
	StatusSuccess = "success"
	StatusError   = "error"

	Receipts = "receipts"
	Events   = "events"
	Graph    = "graph"
)

// Labels holds constant labels applied to all metrics.
// These distinguish metrics from multiple ingester instances.
type Labels struct {
	Contract    string // contract address being ingested
	Environment string // deployment environment (e.g., "production", "staging")
}

// toPrometheusLabels converts Labels to prometheus.Labels map.
// Only non-empty labels are included to avoid empty label values.
func (l Labels) toPrometheusLabels() prometheus.Labels {
	labels := prometheus.Labels{}
	if l.Contract != "" {
		labels["contract"] = l.Contract
	}
	if l.Environment != "" {
		labels["environment"] = l.Environment
	}
	return labels
}

type Metrics struct {
	// RPC metrics
	rpcCalls    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	rpcInFlight prometheus.Gauge

	// Event metrics
	eventsFetched prometheus.Counter

	// Receipt metrics
	receiptsFetched      *prometheus.CounterVec
	receiptsMissing      prometheus.Counter
	receiptFetchDuration prometheus.Histogram

	// Graph write metrics
	nodesCreated      prometheus.Counter
	nodesDeduplicated prometheus.Counter
	edgesCreated      prometheus.Counter
	graphWriteErrors  prometheus.Counter
	persistDuration   prometheus.Histogram
}

// New creates a new Metrics instance and registers all metrics with the provided registerer.
// Returns an error if any metric registration fails.
// For metrics with constant labels (e.g., contract), use NewWithLabels instead.
func New(reg prometheus.Registerer) (*Metrics, error) {
	return NewWithLabels(reg, Labels{})
}

// NewWithLabels creates a new Metrics instance with constant labels applied to all metrics.
func NewWithLabels(reg prometheus.Registerer, labels Labels) (*Metrics, error) {
	promLabels := labels.toPrometheusLabels()
	if len(promLabels) > 0 {
		reg = prometheus.WrapRegistererWith(promLabels, reg)
	}
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Total RPC calls by method and status",
		}, []string{"method", "status"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "rpc",
			Name:      "duration_seconds",
			Help:      "RPC call duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		rpcInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "rpc",
			Name:      "in_flight",
			Help:      "Number of RPC calls currently in progress",
		}),
		eventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Events,
			Name:      "fetched_total",
			Help:      "Total transfer events decoded from the chain log",
		}),
		receiptsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Receipts,
			Name:      "fetched_total",
			Help:      "Total transaction receipts fetched by status",
		}, []string{"status"}),
		receiptsMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Receipts,
			Name:      "missing_total",
			Help:      "Total events whose gas slot holds the unavailable sentinel",
		}),
		receiptFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Receipts,
			Name:      "fetch_duration_seconds",
			Help:      "Time to fetch a single transaction receipt",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		nodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Graph,
			Name:      "nodes_created_total",
			Help:      "Total address nodes created",
		}),
		nodesDeduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Graph,
			Name:      "nodes_deduplicated_total",
			Help:      "Total node writes skipped because the address already exists",
		}),
		edgesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Graph,
			Name:      "edges_created_total",
			Help:      "Total transfer edges created",
		}),
		graphWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Graph,
			Name:      "write_failures_total",
			Help:      "Total persistence passes that reached the FAILED state",
		}),
		persistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Graph,
			Name:      "persist_duration_seconds",
			Help:      "End-to-end duration of one persistence pass",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}

	err := errors.Join(
		reg.Register(m.rpcCalls),
		reg.Register(m.rpcDuration),
		reg.Register(m.rpcInFlight),
		reg.Register(m.eventsFetched),
		reg.Register(m.receiptsFetched),
		reg.Register(m.receiptsMissing),
		reg.Register(m.receiptFetchDuration),
		reg.Register(m.nodesCreated),
		reg.Register(m.nodesDeduplicated),
		reg.Register(m.edgesCreated),
		reg.Register(m.graphWriteErrors),
		reg.Register(m.persistDuration),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// IncRPCInFlight increments the in-flight RPC gauge.
func (m *Metrics) IncRPCInFlight() {
	if m == nil {
		return
	}
	m.rpcInFlight.Inc()
}

// DecRPCInFlight decrements the in-flight RPC gauge.
func (m *Metrics) DecRPCInFlight() {
	if m == nil {
		return
	}
	m.rpcInFlight.Dec()
}

// RecordRPCCall records an RPC call outcome.
func (m *Metrics) RecordRPCCall(method string, err error, durationSeconds float64) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.rpcCalls.WithLabelValues(method, status).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(durationSeconds)
}

// AddEventsFetched records transfer events decoded from one log query.
func (m *Metrics) AddEventsFetched(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.eventsFetched.Add(float64(count))
}

// RecordReceiptFetch records a receipt lookup outcome with duration.
func (m *Metrics) RecordReceiptFetch(err error, durationSeconds float64) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.receiptsFetched.WithLabelValues(status).Inc()
	m.receiptFetchDuration.Observe(durationSeconds)
}

// IncReceiptsMissing counts an event left with the unavailable gas sentinel.
func (m *Metrics) IncReceiptsMissing() {
	if m == nil {
		return
	}
	m.receiptsMissing.Inc()
}

// IncNodesCreated counts a newly created address node.
func (m *Metrics) IncNodesCreated() {
	if m == nil {
		return
	}
	m.nodesCreated.Inc()
}

// IncNodesDeduplicated counts a node write skipped by the existence check.
func (m *Metrics) IncNodesDeduplicated() {
	if m == nil {
		return
	}
	m.nodesDeduplicated.Inc()
}

// AddEdgesCreated records transfer edges committed in one batch.
func (m *Metrics) AddEdgesCreated(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.edgesCreated.Add(float64(count))
}

// IncGraphWriteFailures counts a persistence pass that reached FAILED.
func (m *Metrics) IncGraphWriteFailures() {
	if m == nil {
		return
	}
	m.graphWriteErrors.Inc()
}

// ObservePersistDuration records the duration of one persistence pass.
func (m *Metrics) ObservePersistDuration(seconds float64) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(seconds)
}
