package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds a per-conversation set of Prometheus collectors. A nil
// *Metrics is valid and every method becomes a no-op, so callers that
// don't wire a registry (most tests) don't need a separate stub type.
type Metrics struct {
	registry      prometheus.Registerer
	stageDuration *prometheus.HistogramVec
	stageDegraded *prometheus.CounterVec
	matrixRows    prometheus.Gauge
	matrixCols    prometheus.Gauge
	rejectedVotes prometheus.Counter
}

// NewMetrics registers the engine's collectors against reg and returns a
// Metrics instance. Registration failures (e.g. duplicate registration
// against a shared registry) yield a nil Metrics rather than an error,
// since instrumentation must never break the pipeline.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registry: reg,
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "polismath_stage_duration_seconds",
			Help: "Wall-clock duration of each recompute pipeline stage.",
		}, []string{"stage"}),
		stageDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "polismath_stage_degraded_total",
			Help: "Count of pipeline stages that fell back to empty-state output.",
		}, []string{"stage"}),
		matrixRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "polismath_rating_matrix_rows",
			Help: "Participant count in the current rating matrix.",
		}),
		matrixCols: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "polismath_rating_matrix_cols",
			Help: "Statement count in the current rating matrix.",
		}),
		rejectedVotes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "polismath_rejected_votes_total",
			Help: "Count of vote delta records rejected as InputValidation failures.",
		}),
	}
	collectors := []prometheus.Collector{
		m.stageDuration, m.stageDegraded, m.matrixRows, m.matrixCols, m.rejectedVotes,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil
		}
	}
	return m
}

// ObserveStage records how long a named pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// IncDegraded records that a named stage fell back to its empty-state output.
func (m *Metrics) IncDegraded(stage string) {
	if m == nil {
		return
	}
	m.stageDegraded.WithLabelValues(stage).Inc()
}

// SetMatrixShape records the current rating matrix dimensions.
func (m *Metrics) SetMatrixShape(rows, cols int) {
	if m == nil {
		return
	}
	m.matrixRows.Set(float64(rows))
	m.matrixCols.Set(float64(cols))
}

// IncRejectedVotes increments the InputValidation rejection counter by n.
func (m *Metrics) IncRejectedVotes(n int) {
	if m == nil || n == 0 {
		return
	}
	m.rejectedVotes.Add(float64(n))
}
