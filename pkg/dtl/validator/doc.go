// Package validator checks decision trees for authoring defects before
// evaluation: structural errors (empty questions, branchless question
// nodes, nil subtrees, cycles), condition keys referencing operators
// absent from the registry, and style warnings (duplicate branch keys,
// leaves without a reason suffix).
//
// Validation accumulates every finding in one pass so a tree author
// sees all problems at once:
//
//	result := validator.NewValidator(nil).Validate(tree)
//	for _, e := range result.Errors { ... }
//	for _, w := range result.Warnings { ... }
package validator
