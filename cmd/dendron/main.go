// Dendron is a deterministic decision tree evaluator for clinical and
// operational triage flows.
//
// It loads decision trees from YAML or JSON files (or a Git
// repository), walks them against a set of answers, and produces an
// explainable outcome: the decision, the reason, and the exact path
// the walk took. Every evaluation can be recorded to an evidence store
// for audit.
//
// Usage:
//
//	# Evaluate a tree file against answers
//	dendron eval blood_pressure.yaml --answer diastolic_blood_pressure=95
//
//	# Validate tree files
//	dendron validate trees/
//
//	# Keep validating as files change
//	dendron validate trees/ --watch
//
//	# Query the evidence store
//	dendron evidence query --tree blood_pressure --status error
//
//	# Prune old evidence records
//	dendron evidence prune --archive
//
//	# Show version information
//	dendron version
package main

func main() {
	Execute()
}
