package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"arsmedica/dendron/pkg/dtl/ast"
	dtlErrors "arsmedica/dendron/pkg/dtl/errors"
)

// Parser parses decision tree files into their AST form. It handles
// YAML and JSON documents (JSON parses as a YAML subset), condition-key
// parsing, and basic structural checks. Branch order in the source
// document is preserved.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 1MB)
	maxDepth    int   // Maximum tree nesting depth (default: 64)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 1 * 1024 * 1024, // 1MB
		maxDepth:    64,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum tree nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse parses a tree file at the given path and returns the AST root.
// It returns an error if the file cannot be read, has invalid syntax,
// or contains structural errors.
func (p *Parser) Parse(path string) (*ast.Node, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &dtlErrors.Error{
			Type:     dtlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &dtlErrors.Error{
			Type:     dtlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: ast.Location{File: path},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dtlErrors.Error{
			Type:     dtlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to read file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	return p.ParseBytes(data, path)
}

// ParseBytes parses tree YAML/JSON from a byte slice. This is useful
// for testing or for parsing trees held in memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Node, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &dtlErrors.Error{
			Type:     dtlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &dtlErrors.Error{
			Type:       dtlErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   ast.Location{File: sourcePath, Line: 1, Column: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	root := &doc
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, &dtlErrors.Error{
				Type:     dtlErrors.ErrorTypeStructural,
				Message:  "Tree document is empty",
				Location: ast.Location{File: sourcePath},
			}
		}
		root = doc.Content[0]
	}

	b := newBuilder(sourcePath, p.maxDepth)
	node, err := b.buildNode(root, 0)
	if err != nil {
		return nil, err
	}

	return node, nil
}
