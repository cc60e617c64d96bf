package extractor

import (
	"time"

	"github.com/osallek/osa-extractor/internal/progress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics of the extractor. A nil registerer keeps them unregistered.
type metrics struct {
	runs   *prometheus.CounterVec
	assets *prometheus.CounterVec
	stages *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		runs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "extractor_runs_total",
				Help: "Tracks the number of extractions by result.",
			}, []string{"result"},
		),
		assets: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "extractor_assets_total",
				Help: "Tracks the number of assets handled by category and result.",
			}, []string{"category", "result"},
		),
		stages: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "extractor_stage_duration_seconds",
				Help: "Tracks how long each stage of an extraction takes.",
				// Parsing large saves takes minutes. Max of 512.
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 12),
			}, []string{"stage"},
		),
	}
}

func (m *metrics) asset(category, result string) {
	m.assets.WithLabelValues(category, result).Inc()
}

// time starts timing stage. The returned function records the elapsed time.
func (m *metrics) time(stage progress.Step) func() {
	start := time.Now()
	return func() {
		m.stages.WithLabelValues(stage.String()).Observe(time.Since(start).Seconds())
	}
}
