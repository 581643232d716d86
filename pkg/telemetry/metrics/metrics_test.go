package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"arsmedica/dendron/pkg/config"
)

func newTestCollector() *Collector {
	cfg := &config.MetricsConfig{Enabled: true, Namespace: "dendron"}
	return NewCollector(cfg, prometheus.NewRegistry())
}

func TestCollector_ObserveEvaluation(t *testing.T) {
	c := newTestCollector()

	c.ObserveEvaluation("triage", "Refer to GP", 2*time.Millisecond)
	c.ObserveEvaluation("triage", "Refer to GP", 3*time.Millisecond)
	c.ObserveEvaluation("triage", "All clear", time.Millisecond)

	refer := testutil.ToFloat64(c.evaluation.evaluationsTotal.WithLabelValues("triage", "Refer to GP"))
	if refer != 2 {
		t.Errorf("evaluations_total{Refer to GP} = %v, want 2", refer)
	}
	clear := testutil.ToFloat64(c.evaluation.evaluationsTotal.WithLabelValues("triage", "All clear"))
	if clear != 1 {
		t.Errorf("evaluations_total{All clear} = %v, want 1", clear)
	}
}

func TestCollector_ObserveEvaluationError(t *testing.T) {
	c := newTestCollector()

	c.ObserveEvaluationError("triage")
	c.ObserveEvaluationError("triage")

	errs := testutil.ToFloat64(c.evaluation.errorsTotal.WithLabelValues("triage"))
	if errs != 2 {
		t.Errorf("evaluation_errors_total = %v, want 2", errs)
	}
}

func TestCollector_BranchMatches(t *testing.T) {
	c := newTestCollector()

	for i := 0; i < 3; i++ {
		c.ObserveBranchMatch("loan")
	}

	matches := testutil.ToFloat64(c.evaluation.branchMatchesTotal.WithLabelValues("loan"))
	if matches != 3 {
		t.Errorf("branch_matches_total = %v, want 3", matches)
	}
}

func TestCollector_TreeMetrics(t *testing.T) {
	c := newTestCollector()

	c.SetTreesLoaded(4)
	if got := testutil.ToFloat64(c.trees.treesLoaded); got != 4 {
		t.Errorf("trees_loaded = %v, want 4", got)
	}

	c.ObserveReload("success", 10*time.Millisecond)
	c.ObserveReload("failure", 5*time.Millisecond)

	success := testutil.ToFloat64(c.trees.reloadsTotal.WithLabelValues("success"))
	if success != 1 {
		t.Errorf("tree_reloads_total{success} = %v, want 1", success)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: false, Namespace: "dendron"}
	c := NewCollector(cfg, prometheus.NewRegistry())

	c.ObserveEvaluation("triage", "Refer to GP", time.Millisecond)
	c.ObserveEvaluationError("triage")
	c.SetTreesLoaded(9)

	if got := testutil.ToFloat64(c.evaluation.evaluationsTotal.WithLabelValues("triage", "Refer to GP")); got != 0 {
		t.Errorf("evaluations_total = %v, want 0 when disabled", got)
	}
	if got := testutil.ToFloat64(c.trees.treesLoaded); got != 0 {
		t.Errorf("trees_loaded = %v, want 0 when disabled", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := newTestCollector()
	c.ObserveEvaluation("triage", "Refer to GP", time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "dendron_evaluations_total") {
		t.Errorf("exposition missing evaluations counter:\n%s", body)
	}
	if !strings.Contains(body, "dendron_evaluation_duration_seconds") {
		t.Errorf("exposition missing duration histogram:\n%s", body)
	}
}
