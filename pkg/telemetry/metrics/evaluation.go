package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"arsmedica/dendron/pkg/config"
)

// EvaluationMetrics tracks decision tree evaluation outcomes.
//
// Metrics:
//   - dendron_evaluations_total: evaluations by tree and decision
//   - dendron_evaluation_duration_seconds: evaluation duration by tree
//   - dendron_evaluation_errors_total: failed evaluations by tree
//   - dendron_branch_matches_total: branch matches during tree walks
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
	branchMatchesTotal *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics with
// the provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluations_total",
				Help:      "Total number of decision tree evaluations",
			},
			[]string{"tree", "decision"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of decision tree evaluation in seconds",
				Buckets:   cfg.EvaluationDurationBuckets,
			},
			[]string{"tree"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluation_errors_total",
				Help:      "Total number of failed decision tree evaluations",
			},
			[]string{"tree"},
		),

		branchMatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "branch_matches_total",
				Help:      "Total number of branch matches during tree walks",
			},
			[]string{"tree"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.errorsTotal,
		em.branchMatchesTotal,
	)

	return em
}

// RecordEvaluation records a completed evaluation.
func (em *EvaluationMetrics) RecordEvaluation(tree, decision string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(tree, decision).Inc()
	em.evaluationDuration.WithLabelValues(tree).Observe(duration.Seconds())
}

// RecordError records a failed evaluation.
func (em *EvaluationMetrics) RecordError(tree string) {
	em.errorsTotal.WithLabelValues(tree).Inc()
}

// RecordBranchMatch records one branch match.
func (em *EvaluationMetrics) RecordBranchMatch(tree string) {
	em.branchMatchesTotal.WithLabelValues(tree).Inc()
}
