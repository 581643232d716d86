package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"arsmedica/dendron/pkg/dtl/ast"
	dtlErrors "arsmedica/dendron/pkg/dtl/errors"
)

// builder transforms decoded YAML nodes into tree AST nodes. It walks
// mapping nodes pairwise via Content so branch insertion order survives
// parsing, which plain map decoding would destroy.
type builder struct {
	sourcePath string
	maxDepth   int
}

func newBuilder(sourcePath string, maxDepth int) *builder {
	return &builder{
		sourcePath: sourcePath,
		maxDepth:   maxDepth,
	}
}

// buildNode builds a tree node from a YAML node. A scalar is a leaf; a
// mapping with "question" and "branches" is a question node.
func (b *builder) buildNode(node *yaml.Node, depth int) (*ast.Node, error) {
	if depth > b.maxDepth {
		return nil, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeStructural,
			Message:    fmt.Sprintf("Tree nesting exceeds maximum depth %d", b.maxDepth),
			Location:   b.location(node),
			Suggestion: "Flatten the tree or raise the parser depth limit",
		}
	}

	switch node.Kind {
	case yaml.ScalarNode:
		leaf := ast.Leaf(node.Value)
		leaf.Location = b.location(node)
		return leaf, nil

	case yaml.MappingNode:
		return b.buildQuestion(node, depth)

	default:
		return nil, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeStructural,
			Message:    "Tree node must be a mapping (question) or a string (leaf decision)",
			Location:   b.location(node),
			Suggestion: `Use {question: ..., branches: {...}} for internal nodes and "Decision - Reason" strings for leaves`,
		}
	}
}

// buildQuestion builds a question node from a YAML mapping with
// "question" and "branches" entries.
func (b *builder) buildQuestion(node *yaml.Node, depth int) (*ast.Node, error) {
	var questionNode, branchesNode *yaml.Node

	// Mapping content is a flat [key, value, key, value, ...] slice.
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		switch keyNode.Value {
		case "question":
			questionNode = valueNode
		case "branches":
			branchesNode = valueNode
		default:
			return nil, &dtlErrors.Error{
				Type:       dtlErrors.ErrorTypeStructural,
				Message:    fmt.Sprintf("Unknown tree node field %q", keyNode.Value),
				Location:   b.location(keyNode),
				Suggestion: `Tree nodes accept only "question" and "branches"`,
			}
		}
	}

	if questionNode == nil || questionNode.Kind != yaml.ScalarNode {
		return nil, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeStructural,
			Message:    `Question node is missing a "question" string`,
			Location:   b.location(node),
			Suggestion: `Add a "question" field with the question text`,
		}
	}

	if branchesNode == nil || branchesNode.Kind != yaml.MappingNode {
		return nil, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeStructural,
			Message:    `Question node is missing a "branches" mapping`,
			Location:   b.location(node),
			Suggestion: `Add a "branches" mapping from condition key to subtree`,
		}
	}

	question := ast.Question(questionNode.Value)
	question.Location = b.location(node)

	for i := 0; i+1 < len(branchesNode.Content); i += 2 {
		keyNode := branchesNode.Content[i]
		childNode := branchesNode.Content[i+1]

		key, err := b.buildKey(keyNode)
		if err != nil {
			return nil, err
		}

		child, err := b.buildNode(childNode, depth+1)
		if err != nil {
			return nil, err
		}

		question.Branches = append(question.Branches, ast.Branch{Key: key, Child: child})
	}

	return question, nil
}

// buildKey builds a branch key from a YAML mapping key node. String
// keys go through condition-key parsing; other scalars (numbers,
// booleans) become literal keys with their decoded value.
func (b *builder) buildKey(keyNode *yaml.Node) (ast.BranchKey, error) {
	if keyNode.Kind != yaml.ScalarNode {
		return ast.BranchKey{}, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeStructural,
			Message:    "Branch key must be a scalar",
			Location:   b.location(keyNode),
			Suggestion: `Write condition keys as strings, e.g. ">= 120" or "120-129"`,
		}
	}

	var decoded interface{}
	if err := keyNode.Decode(&decoded); err != nil {
		return ast.BranchKey{}, &dtlErrors.Error{
			Type:     dtlErrors.ErrorTypeSyntax,
			Message:  fmt.Sprintf("Failed to decode branch key: %v", err),
			Location: b.location(keyNode),
		}
	}

	var key ast.BranchKey
	if s, ok := decoded.(string); ok {
		key = ParseConditionKey(s)
	} else {
		key = ast.LiteralKey(decoded)
	}
	key.Location = b.location(keyNode)
	return key, nil
}

// location extracts the source location from a YAML node.
func (b *builder) location(node *yaml.Node) ast.Location {
	if node == nil {
		return ast.Location{File: b.sourcePath}
	}
	return ast.Location{
		File:   b.sourcePath,
		Line:   node.Line,
		Column: node.Column,
	}
}
