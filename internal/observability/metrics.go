package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ductsizer"

// Metrics holds the Prometheus collectors for the calculator API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Calculations        *prometheus.CounterVec   // labels: tool, outcome={ok,empty,not_found,invalid,error}
	SolverNotFound      *prometheus.CounterVec   // labels: stage={square,width}
	CandidatesPerTable  prometheus.Histogram
	CalculationDuration *prometheus.HistogramVec // labels: tool
	AuthEnabled         prometheus.Gauge
}

func newCollectors() *Metrics {
	return &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Calculations served, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		SolverNotFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solver_not_found_total",
			Help:      "Size scans that exhausted their range, by stage.",
		}, []string{"stage"}),
		CandidatesPerTable: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidates_per_table",
			Help:      "Rectangular candidates returned per generated table.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		}),
		CalculationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Wall time of one calculation request.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"tool"}),
		AuthEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "auth_enabled",
			Help:      "1 when API accounts are required, 0 otherwise.",
		}),
	}
}

// NewMetrics creates and registers all collectors with the default registry.
func NewMetrics() *Metrics {
	m := newCollectors()
	prometheus.MustRegister(
		m.Calculations,
		m.SolverNotFound,
		m.CandidatesPerTable,
		m.CalculationDuration,
		m.AuthEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build
// as many as they like.
func NewMetricsForTesting() *Metrics {
	return newCollectors()
}

func (m *Metrics) RecordCalculation(tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(tool, outcome).Inc()
	m.CalculationDuration.WithLabelValues(tool).Observe(d.Seconds())
}

func (m *Metrics) RecordNotFound(stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SolverNotFound.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) ObserveCandidates(n int) {
	if m == nil {
		return
	}
	m.CandidatesPerTable.Observe(float64(n))
}

func (m *Metrics) SetAuthEnabled(on bool) {
	if m == nil {
		return
	}
	if on {
		m.AuthEnabled.Set(1)
		return
	}
	m.AuthEnabled.Set(0)
}
