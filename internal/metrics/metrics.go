// Package metrics holds the prometheus collectors of one analysis process.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is nil-safe: every Observe method on a nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests     *prometheus.CounterVec
	rpcLatency      *prometheus.HistogramVec
	probeOutcomes   *prometheus.CounterVec
	adapterRuns     *prometheus.CounterVec
	poolsDiscovered *prometheus.CounterVec
	analysisSeconds prometheus.Histogram
}

// New registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenscope",
			Name:      "rpc_requests_total",
			Help:      "RPC requests by method and outcome.",
		}, []string{"method", "outcome"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tokenscope",
			Name:      "rpc_request_duration_seconds",
			Help:      "RPC request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"method"}),
		probeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenscope",
			Name:      "probe_calls_total",
			Help:      "Selector probes by function and outcome.",
		}, []string{"function", "outcome"}),
		adapterRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenscope",
			Name:      "adapter_runs_total",
			Help:      "DEX adapter discovery runs by outcome.",
		}, []string{"dex", "outcome"}),
		poolsDiscovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenscope",
			Name:      "pools_discovered_total",
			Help:      "Pools returned by each adapter.",
		}, []string{"dex"}),
		analysisSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tokenscope",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of a full analysis.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}
	m.registry.MustRegister(
		m.rpcRequests,
		m.rpcLatency,
		m.probeOutcomes,
		m.adapterRuns,
		m.poolsDiscovered,
		m.analysisSeconds,
	)
	return m
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps all collectors in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) ObserveRPC(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method, outcome).Inc()
	m.rpcLatency.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) ObserveProbe(function, outcome string) {
	if m == nil {
		return
	}
	m.probeOutcomes.WithLabelValues(function, outcome).Inc()
}

func (m *Metrics) ObserveAdapter(dex, outcome string, pools int) {
	if m == nil {
		return
	}
	m.adapterRuns.WithLabelValues(dex, outcome).Inc()
	m.poolsDiscovered.WithLabelValues(dex).Add(float64(pools))
}

func (m *Metrics) ObserveAnalysis(d time.Duration) {
	if m == nil {
		return
	}
	m.analysisSeconds.Observe(d.Seconds())
}
