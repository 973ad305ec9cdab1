package kvstore

import "github.com/prometheus/client_golang/prometheus"

// metricsSet holds the Prometheus collectors the adapter registers once
// per process. Registration failures (e.g. double-registration against
// the default registry in tests) are tolerated: the adapter falls back
// to an unregistered collector rather than failing Open.
type metricsSet struct {
	writes  *prometheus.CounterVec
	flushes *prometheus.HistogramVec
	scans   *prometheus.CounterVec
}

func newMetricsSet() *metricsSet {
	m := &metricsSet{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "presto_accumulo",
			Subsystem: "kvstore",
			Name:      "mutations_written_total",
			Help:      "Mutations written per table.",
		}, []string{"table"}),
		flushes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "presto_accumulo",
			Subsystem: "kvstore",
			Name:      "flush_seconds",
			Help:      "Writer flush latency per table.",
		}, []string{"table"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "presto_accumulo",
			Subsystem: "kvstore",
			Name:      "scans_total",
			Help:      "Range scans issued per table.",
		}, []string{"table"}),
	}
	_ = prometheus.Register(m.writes)
	_ = prometheus.Register(m.flushes)
	_ = prometheus.Register(m.scans)
	return m
}
