package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"arsmedica/dendron/pkg/config"
)

// Collector owns the Prometheus registry and all metric families for
// decision tree evaluation. It implements the tree manager's
// EvaluationObserver so recording happens on every Evaluate call.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	evaluation *EvaluationMetrics
	trees      *TreeMetrics
}

// NewCollector creates a metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "dendron"
	}
	if len(cfg.EvaluationDurationBuckets) == 0 {
		// Tree walks are in-memory and fast, 1µs to ~16ms
		cfg.EvaluationDurationBuckets = prometheus.ExponentialBuckets(0.000001, 2, 15)
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		evaluation: NewEvaluationMetrics(cfg, registry),
		trees:      NewTreeMetrics(cfg, registry),
	}
}

// Registry returns the Prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveEvaluation records one completed evaluation.
func (c *Collector) ObserveEvaluation(treeName, decision string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.evaluation.RecordEvaluation(treeName, decision, duration)
}

// ObserveEvaluationError records a failed evaluation.
func (c *Collector) ObserveEvaluationError(treeName string) {
	if !c.config.Enabled {
		return
	}
	c.evaluation.RecordError(treeName)
}

// ObserveBranchMatch records one branch match during a tree walk.
func (c *Collector) ObserveBranchMatch(treeName string) {
	if !c.config.Enabled {
		return
	}
	c.evaluation.RecordBranchMatch(treeName)
}

// SetTreesLoaded records the number of trees in the active registry.
func (c *Collector) SetTreesLoaded(count int) {
	if !c.config.Enabled {
		return
	}
	c.trees.SetLoaded(count)
}

// ObserveReload records a tree reload attempt.
func (c *Collector) ObserveReload(status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.trees.RecordReload(status, duration)
}
