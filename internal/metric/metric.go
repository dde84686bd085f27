package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "kota"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

type OTAMetrics struct {
	registry *prometheus.Registry

	normalizeTotal *prometheus.CounterVec
	fetchTotal     *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	snapshotTotal  *prometheus.CounterVec
}

func New() *OTAMetrics {
	return &OTAMetrics{
		registry: prometheus.NewRegistry(),
		normalizeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_total",
			Help:      "Number of normalized documents by recognized variant.",
		}, []string{"variant"}),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Number of remote document fetches by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of remote document fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		snapshotTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_total",
			Help:      "Number of stored snapshots by result.",
		}, []string{"result"}),
	}
}

// RegisterAllMetrics registers every collector, including the Go runtime and
// process collectors, on the metrics registry.
func (m *OTAMetrics) RegisterAllMetrics() {
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.normalizeTotal,
		m.fetchTotal,
		m.fetchDuration,
		m.snapshotTotal,
	)
}

func (m *OTAMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *OTAMetrics) ObserveNormalize(variant string) {
	m.normalizeTotal.WithLabelValues(variant).Inc()
}

func (m *OTAMetrics) ObserveFetch(start time.Time, err error) {
	m.fetchDuration.Observe(time.Since(start).Seconds())
	m.fetchTotal.WithLabelValues(result(err)).Inc()
}

func (m *OTAMetrics) ObserveSnapshot(err error) {
	m.snapshotTotal.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
