package bootstrap

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of a single bootstrap run. Each run owns its
// registry so the result can be written to a node_exporter textfile.
type Metrics struct {
	Registry *prometheus.Registry

	runsTotal          *prometheus.CounterVec
	probeAttemptsTotal *prometheus.CounterVec
	orphansEvicted     prometheus.Counter
	adminCallAttempts  *prometheus.CounterVec
	clusterMembers     prometheus.Gauge
	duration           prometheus.Histogram
}

// NewMetrics creates and registers the bootstrap metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "etcdseed",
				Subsystem: "bootstrap",
				Name:      "runs_total",
				Help:      "Bootstrap runs by result (new, existing, error)",
			},
			[]string{"result"},
		),

		probeAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "etcdseed",
				Subsystem: "probe",
				Name:      "attempts_total",
				Help:      "Candidate probes by result (answered, skipped)",
			},
			[]string{"result"},
		),

		orphansEvicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "etcdseed",
				Subsystem: "reconcile",
				Name:      "orphans_evicted_total",
				Help:      "Live members removed because they left the peer group",
			},
		),

		adminCallAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "etcdseed",
				Subsystem: "admin",
				Name:      "call_attempts_total",
				Help:      "Members API calls by operation and HTTP status (0 for transport errors)",
			},
			[]string{"operation", "status"},
		),

		clusterMembers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "etcdseed",
				Subsystem: "cluster",
				Name:      "members",
				Help:      "Number of members written to the initial cluster",
			},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "etcdseed",
				Subsystem: "bootstrap",
				Name:      "duration_seconds",
				Help:      "Wall time of bootstrap runs",
				// A run is bounded by the retry budget, roughly 10s per call.
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
		),
	}

	m.Registry.MustRegister(
		m.runsTotal,
		m.probeAttemptsTotal,
		m.orphansEvicted,
		m.adminCallAttempts,
		m.clusterMembers,
		m.duration,
	)
	return m
}

// ObserveRun records the outcome of a run.
func (m *Metrics) ObserveRun(result string, seconds float64, members int) {
	m.runsTotal.WithLabelValues(result).Inc()
	m.duration.Observe(seconds)
	if members > 0 {
		m.clusterMembers.Set(float64(members))
	}
}

func (m *Metrics) recordProbe(answered bool) {
	if answered {
		m.probeAttemptsTotal.WithLabelValues("answered").Inc()
		return
	}
	m.probeAttemptsTotal.WithLabelValues("skipped").Inc()
}

func (m *Metrics) recordAdminCall(operation string, status int) {
	m.adminCallAttempts.WithLabelValues(operation, strconv.Itoa(status)).Inc()
}

func (m *Metrics) recordEviction() {
	m.orphansEvicted.Inc()
}
