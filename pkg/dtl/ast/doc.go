// Package ast defines the in-memory representation of decision trees.
//
// A decision tree is a recursive structure: a question node carries a
// question and an ordered list of branches, each branch pairing a key
// with a child subtree; a leaf node carries the final decision text in
// the form "Decision - Reason" or just "Decision".
//
// # Branch keys
//
// Branch keys are a tagged union with three variants:
//
//	PredicateKey("adult", func(v interface{}) bool { ... })  // arbitrary boolean function
//	ConditionKey("<", 1000)                                  // operator + reference value
//	LiteralKey("yes")                                        // equality comparison
//
// Branch order is significant: keys are tried in insertion order and the
// first match wins, so trees whose branches overlap rely on ordering for
// their semantics.
//
// # Construction
//
// Trees can be built programmatically:
//
//	tree := ast.Question("loan amount",
//	    ast.Branch{Key: ast.ConditionKey("<", 1000), Child: ast.Leaf("Approved - small loan")},
//	    ast.Branch{Key: ast.ConditionKey("<", 50), Child: ast.Leaf("Rejected - too small")},
//	)
//
// or parsed from YAML/JSON tree files via the parser package.
//
// # Source locations
//
// Nodes and keys parsed from files carry a Location for error reporting.
// AST nodes should be treated as immutable after construction.
package ast
