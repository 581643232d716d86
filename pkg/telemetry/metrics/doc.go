// Package metrics provides Prometheus metrics for decision tree
// evaluation.
//
// The Collector registers evaluation counters and histograms plus tree
// registry gauges on a prometheus.Registry and exposes them through a
// promhttp handler. It implements the tree manager's observer
// interface, so wiring it up is one SetObserver call:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mgr.SetObserver(collector)
//	http.Handle("/metrics", collector.Handler())
package metrics
