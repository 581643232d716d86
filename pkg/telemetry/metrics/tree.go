package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"arsmedica/dendron/pkg/config"
)

// TreeMetrics tracks the state of the tree registry and reloads.
//
// Metrics:
//   - dendron_trees_loaded: number of trees in the active registry
//   - dendron_tree_reloads_total: reload attempts by status
//   - dendron_tree_reload_duration_seconds: reload duration
type TreeMetrics struct {
	treesLoaded    prometheus.Gauge
	reloadsTotal   *prometheus.CounterVec
	reloadDuration prometheus.Histogram
}

// NewTreeMetrics creates and registers tree registry metrics with the
// provided registry.
func NewTreeMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TreeMetrics {
	tm := &TreeMetrics{
		treesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "trees_loaded",
				Help:      "Number of decision trees in the active registry",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "tree_reloads_total",
				Help:      "Total number of tree reload attempts",
			},
			[]string{"status"},
		),

		reloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "tree_reload_duration_seconds",
				Help:      "Duration of tree reloads in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
	}

	registry.MustRegister(tm.treesLoaded, tm.reloadsTotal, tm.reloadDuration)

	return tm
}

// SetLoaded records the number of trees in the active registry.
func (tm *TreeMetrics) SetLoaded(count int) {
	tm.treesLoaded.Set(float64(count))
}

// RecordReload records a reload attempt. Status is "success" or
// "failure".
func (tm *TreeMetrics) RecordReload(status string, duration time.Duration) {
	tm.reloadsTotal.WithLabelValues(status).Inc()
	tm.reloadDuration.Observe(duration.Seconds())
}
