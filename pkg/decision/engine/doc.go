// Package engine walks decision trees to a leaf decision.
//
// The engine pairs two cooperating pieces: an operator Registry mapping
// operator symbols to binary predicates, and a tree walker that resolves
// each question node against the supplied answers, selects the first
// matching branch, and descends until it reaches a leaf.
//
// # Evaluation
//
//	eng := engine.New(nil, logger, nil)
//	result, err := eng.Lookup(ctx, tree, engine.NewAnswers(
//	    engine.Answer{Name: "loan_amount", Value: 500},
//	))
//	// result.Decision, result.Reason, result.PathTaken
//
// Answer names are normalized into question terms (separators become
// spaces) and matched against question text by substring containment.
// The first answer whose term appears in the question is the one used
// for that node; when several could match, answer order decides.
//
// # Failure semantics
//
// A value no branch accepts, or a question no answer is relevant to,
// yields a structured Result with Decision "Error" and the path
// accumulated so far, never a Go error. Unregistered operator symbols
// and walks exceeding the depth limit are authoring defects and fail
// hard.
//
// # Operators
//
// The built-in set covers equality, ordering, set membership/exclusion,
// and full-string regex matching. New operators can be registered on a
// Registry (or the process-wide default) at runtime; if evaluations run
// concurrently, register before concurrent reads begin.
package engine
