package manager

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"arsmedica/dendron/pkg/dtl/parser"
)

// TreeLoader handles loading decision trees from the file system.
// It supports single files and directory structures with validation.
type TreeLoader struct {
	config *TreeLoaderConfig
	parser *parser.Parser
}

// NewTreeLoader creates a new tree loader with the given configuration.
func NewTreeLoader(config *TreeLoaderConfig, p *parser.Parser) *TreeLoader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if p == nil {
		p = parser.NewParser().WithMaxFileSize(config.MaxFileSize)
	}
	return &TreeLoader{
		config: config,
		parser: p,
	}
}

// TreeName derives the tree name from its source path.
// The name is the base file name without extension.
func TreeName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadFromFile loads a single tree file from the given path.
// It performs file size validation, UTF-8 validation, and parsing.
func (l *TreeLoader) LoadFromFile(path string) (*Tree, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{
				FilePath: path,
				Message:  "file not found",
				Cause:    err,
			}
		}
		if os.IsPermission(err) {
			return nil, &LoadError{
				FilePath: path,
				Message:  "permission denied",
				Cause:    err,
			}
		}
		return nil, &LoadError{
			FilePath: path,
			Message:  "failed to access file",
			Cause:    err,
		}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &LoadError{
			FilePath: path,
			Message:  "not a regular file",
		}
	}

	if fileInfo.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			FilePath: path,
			Message:  "failed to read file",
			Cause:    err,
		}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{
			FilePath: path,
			Message:  "file contains invalid UTF-8 encoding",
		}
	}

	root, err := l.parser.ParseBytes(data, path)
	if err != nil {
		return nil, &LoadError{
			FilePath: path,
			Message:  "parsing failed",
			Cause:    err,
		}
	}

	return &Tree{
		Name:       TreeName(path),
		Root:       root,
		SourceFile: path,
		LoadedAt:   time.Now(),
	}, nil
}

// LoadFromDirectory loads all tree files from the given directory recursively.
// It returns a list of successfully loaded trees and any errors encountered.
func (l *TreeLoader) LoadFromDirectory(dir string) ([]*Tree, error) {
	fileInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{
				FilePath: dir,
				Message:  "directory not found",
				Cause:    err,
			}
		}
		return nil, &LoadError{
			FilePath: dir,
			Message:  "failed to access directory",
			Cause:    err,
		}
	}

	if !fileInfo.IsDir() {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "not a directory",
		}
	}

	treeFiles, err := l.collectTreeFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(treeFiles) == 0 {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "no tree files found in directory",
		}
	}

	var trees []*Tree
	errList := &ErrorList{}

	for _, filePath := range treeFiles {
		tree, err := l.LoadFromFile(filePath)
		if err != nil {
			errList.Add(err)
			continue
		}
		trees = append(trees, tree)
	}

	// All files failed
	if len(trees) == 0 && errList.HasErrors() {
		return nil, errList
	}

	// Partial errors
	if errList.HasErrors() {
		return trees, errList
	}

	return trees, nil
}

// collectTreeFiles collects all tree file paths in the given directory.
// It filters by extension and skips hidden files based on configuration.
func (l *TreeLoader) collectTreeFiles(dir string) ([]string, error) {
	var treeFiles []string
	visited := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !l.config.FollowSymlinks {
				return nil
			}

			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return &LoadError{
					FilePath: path,
					Message:  "failed to resolve symlink",
					Cause:    err,
				}
			}

			if visited[realPath] {
				return &LoadError{
					FilePath: path,
					Message:  "symlink loop detected",
				}
			}
			visited[realPath] = true

			if !l.hasValidExtension(realPath) {
				return nil
			}

			treeFiles = append(treeFiles, path)
			return nil
		}

		if !l.hasValidExtension(path) {
			return nil
		}

		treeFiles = append(treeFiles, path)
		return nil
	})

	if err != nil {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "failed to walk directory",
			Cause:    err,
		}
	}

	return treeFiles, nil
}

// hasValidExtension checks if the file has a valid tree file extension.
func (l *TreeLoader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, validExt := range l.config.AllowedExtensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// IsDirectory checks if the given path is a directory.
func (l *TreeLoader) IsDirectory(path string) (bool, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &LoadError{
				FilePath: path,
				Message:  "path does not exist",
				Cause:    err,
			}
		}
		return false, &LoadError{
			FilePath: path,
			Message:  "failed to access path",
			Cause:    err,
		}
	}

	return fileInfo.IsDir(), nil
}
