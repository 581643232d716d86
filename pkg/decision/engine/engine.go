package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"arsmedica/dendron/pkg/dtl/ast"
)

// Config contains configuration for the tree walker.
type Config struct {
	// MaxDepth is the maximum number of branches a single walk may
	// descend before failing with a *MaxDepthError. Trees are plain
	// nested structures, so the guard is what turns an accidental
	// cycle into a fast, diagnosable failure.
	// Default: 64.
	MaxDepth int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth: 64,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive, got %d", c.MaxDepth)
	}
	return nil
}

// Engine walks decision trees. It holds no per-evaluation state: given a
// stable operator registry, Lookup is a pure function of the tree and
// the answers, and a single Engine may serve concurrent evaluations.
type Engine struct {
	registry *Registry
	logger   *slog.Logger
	config   *Config
}

// New creates a tree-walking engine. A nil registry uses the
// process-wide default; nil logger and config fall back to defaults.
func New(registry *Registry, logger *slog.Logger, config *Config) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		registry: registry,
		logger:   logger,
		config:   config,
	}
}

// Lookup walks a decision tree from root to leaf, resolving each
// question against the first relevant answer and selecting the first
// matching branch.
//
// Recoverable failures (no branch matched the value, or no answer was
// relevant to a question) are not Go errors: they produce a Result with
// Decision == DecisionError and a reason string, preserving the path
// accumulated so far. A Go error is returned only for tree-authoring
// defects: an unregistered operator symbol or a walk exceeding the
// configured depth limit.
func (e *Engine) Lookup(ctx context.Context, root *ast.Node, answers Answers) (*Result, error) {
	if root == nil {
		return nil, ErrNilTree
	}

	start := time.Now()
	path := []string{}
	node := root

	for depth := 0; ; depth++ {
		if node == nil {
			return nil, fmt.Errorf("branch child is nil at depth %d", depth)
		}
		if depth > e.config.MaxDepth {
			return nil, &MaxDepthError{Depth: e.config.MaxDepth}
		}

		if node.IsLeaf() {
			decision, reason := splitLeaf(node.Decision)
			e.logger.Debug("walk reached leaf",
				"decision", decision,
				"depth", depth,
			)
			return &Result{
				Decision:       decision,
				Reason:         reason,
				PathTaken:      path,
				EvaluationTime: time.Since(start),
			}, nil
		}

		answered := false
		for _, answer := range answers {
			term := answer.Term()
			if !strings.Contains(node.Question, term) {
				continue
			}

			// First relevant answer wins; remaining answers for this
			// node are ignored.
			idx, desc, err := e.selectBranch(node.Branches, answer.Value)
			if err != nil {
				return nil, err
			}

			if idx == noMatch {
				return &Result{
					Decision:       DecisionError,
					Reason:         fmt.Sprintf("Invalid value for %s: %v", term, answer.Value),
					PathTaken:      path,
					EvaluationTime: time.Since(start),
				}, nil
			}

			e.logger.Debug("branch matched",
				"question", node.Question,
				"term", term,
				"match", desc,
			)

			path = append(path, desc)
			node = node.Branches[idx].Child
			answered = true
			break
		}

		if !answered {
			return &Result{
				Decision:       DecisionError,
				Reason:         fmt.Sprintf("Question '%s' could not be answered with supplied arguments.", node.Question),
				PathTaken:      path,
				EvaluationTime: time.Since(start),
			}, nil
		}
	}
}

// splitLeaf splits leaf text on the first " - " into decision and
// reason. Leaves without the separator get the default reason.
func splitLeaf(text string) (decision, reason string) {
	parts := strings.SplitN(text, leafSeparator, 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return text, defaultReason
}
