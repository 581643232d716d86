package logging

import "context"

type contextKey string

const (
	evaluationIDKey contextKey = "evaluation_id"
	treeNameKey     contextKey = "tree_name"
)

// WithEvaluationID stores an evaluation ID in the context.
func WithEvaluationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, evaluationIDKey, id)
}

// WithTreeName stores the tree name being evaluated in the context.
func WithTreeName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, treeNameKey, name)
}

// EvaluationIDFromContext returns the evaluation ID stored in ctx.
func EvaluationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(evaluationIDKey).(string)
	return id, ok
}

// TreeNameFromContext returns the tree name stored in ctx.
func TreeNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(treeNameKey).(string)
	return name, ok
}

// extractContextFields returns the evaluation fields stored in ctx as
// alternating key/value log arguments.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	if id, ok := EvaluationIDFromContext(ctx); ok {
		fields = append(fields, "evaluation_id", id)
	}
	if name, ok := TreeNameFromContext(ctx); ok {
		fields = append(fields, "tree", name)
	}
	return fields
}
