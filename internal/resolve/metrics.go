package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the resolution counters. A nil *Metrics records nothing.
type Metrics struct {
	passes          prometheus.Counter
	passErrors      prometheus.Counter
	requests        prometheus.Counter
	scanFailures    prometheus.Counter
	modulesInserted prometheus.Counter
	edgesAdded      prometheus.Counter
	captured        prometheus.Counter
	duration        prometheus.Histogram
}

// NewMetrics creates the resolution metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modresolve_passes_total",
			Help: "Number of resolution passes run.",
		}),
		passErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modresolve_pass_errors_total",
			Help: "Number of resolution passes that failed.",
		}),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modresolve_scan_requests_total",
			Help: "Number of rescan requests issued.",
		}),
		scanFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modresolve_scan_failures_total",
			Help: "Number of rescan requests that failed.",
		}),
		modulesInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modresolve_modules_inserted_total",
			Help: "Number of modules added to the graph by reconciliation.",
		}),
		edgesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modresolve_dependency_edges_added_total",
			Help: "Number of dependency edges added to existing modules by reconciliation.",
		}),
		captured: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modresolve_configurations_captured_total",
			Help: "Number of configurations recorded as captured.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "modresolve_pass_duration_seconds",
			Help:    "Time taken by a resolution pass.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.passes,
		m.passErrors,
		m.requests,
		m.scanFailures,
		m.modulesInserted,
		m.edgesAdded,
		m.captured,
		m.duration,
	)
	return m
}

func (m *Metrics) observePass(seconds float64, err error) {
	if m == nil {
		return
	}
	m.passes.Inc()
	m.duration.Observe(seconds)
	if err != nil {
		m.passErrors.Inc()
	}
}

func (m *Metrics) observeScan(requests, failures int) {
	if m == nil {
		return
	}
	m.requests.Add(float64(requests))
	m.scanFailures.Add(float64(failures))
}

func (m *Metrics) observeReconcile(r *ReconcileResult, captured int) {
	if m == nil {
		return
	}
	m.modulesInserted.Add(float64(len(r.Inserted)))
	m.edgesAdded.Add(float64(r.EdgesAdded))
	m.captured.Add(float64(captured))
}
