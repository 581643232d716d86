package manager

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"
)

// TreeRegistry is a thread-safe in-memory storage for loaded trees.
// It uses copy-on-write semantics for atomic updates.
type TreeRegistry struct {
	mu       sync.RWMutex
	trees    map[string]*Tree
	version  string
	loadTime time.Time
}

// NewTreeRegistry creates a new empty tree registry.
func NewTreeRegistry() *TreeRegistry {
	return &TreeRegistry{
		trees:    make(map[string]*Tree),
		loadTime: time.Now(),
	}
}

// Register adds a tree to the registry.
// If a tree with the same name already exists, it will be replaced.
func (r *TreeRegistry) Register(tree *Tree) error {
	if tree == nil {
		return &RegistryError{
			Operation: "register",
			Message:   "tree cannot be nil",
		}
	}

	if tree.Name == "" {
		return &RegistryError{
			Operation: "register",
			Message:   "tree name cannot be empty",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.trees[tree.Name] = tree
	r.updateVersion()

	return nil
}

// Unregister removes a tree from the registry by name.
func (r *TreeRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trees[name]; !ok {
		return &RegistryError{
			TreeName:  name,
			Operation: "unregister",
			Message:   "tree not found",
		}
	}

	delete(r.trees, name)
	r.updateVersion()

	return nil
}

// Get retrieves a tree by name.
func (r *TreeRegistry) Get(name string) (*Tree, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tree, ok := r.trees[name]
	return tree, ok
}

// GetAll retrieves all trees in the registry sorted by name.
// The returned slice is a copy and will not be modified by the registry.
func (r *TreeRegistry) GetAll() []*Tree {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.trees))
	for name := range r.trees {
		names = append(names, name)
	}
	sort.Strings(names)

	trees := make([]*Tree, 0, len(r.trees))
	for _, name := range names {
		trees = append(trees, r.trees[name])
	}

	return trees
}

// Count returns the number of trees in the registry.
func (r *TreeRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.trees)
}

// Clear removes all trees from the registry.
func (r *TreeRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trees = make(map[string]*Tree)
	r.updateVersion()
}

// Replace atomically replaces the entire tree set with a new set.
// This is used for atomic hot-reload operations.
func (r *TreeRegistry) Replace(trees []*Tree) error {
	if trees == nil {
		return &RegistryError{
			Operation: "replace",
			Message:   "trees cannot be nil",
		}
	}

	// Validate all trees first
	for _, tree := range trees {
		if tree == nil {
			return &RegistryError{
				Operation: "replace",
				Message:   "tree cannot be nil",
			}
		}
		if tree.Name == "" {
			return &RegistryError{
				Operation: "replace",
				Message:   "tree name cannot be empty",
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	newTrees := make(map[string]*Tree, len(trees))
	for _, tree := range trees {
		newTrees[tree.Name] = tree
	}

	// Atomic swap
	r.trees = newTrees
	r.loadTime = time.Now()
	r.updateVersion()

	return nil
}

// GetVersion returns the current version of the registry.
// The version changes whenever trees are added, removed, or replaced.
func (r *TreeRegistry) GetVersion() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// GetLoadTime returns the timestamp when trees were last loaded or updated.
func (r *TreeRegistry) GetLoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadTime
}

// HasTree checks if a tree with the given name exists in the registry.
func (r *TreeRegistry) HasTree(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.trees[name]
	return ok
}

// GetTreeNames returns a sorted list of all tree names in the registry.
func (r *TreeRegistry) GetTreeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.trees))
	for name := range r.trees {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// GetMetadata returns metadata for all trees in the registry.
func (r *TreeRegistry) GetMetadata() []TreeMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metadata := make([]TreeMetadata, 0, len(r.trees))
	for _, tree := range r.trees {
		nodes, depth := treeStats(tree)
		metadata = append(metadata, TreeMetadata{
			Name:       tree.Name,
			SourceFile: tree.SourceFile,
			LoadedAt:   tree.LoadedAt,
			NodeCount:  nodes,
			MaxDepth:   depth,
		})
	}

	sort.Slice(metadata, func(i, j int) bool {
		return metadata[i].Name < metadata[j].Name
	})

	return metadata
}

// updateVersion updates the registry version based on the current state.
// This must be called with the write lock held.
func (r *TreeRegistry) updateVersion() {
	h := sha256.New()

	// Sorted names for deterministic hashing
	names := make([]string, 0, len(r.trees))
	for name := range r.trees {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tree := r.trees[name]
		h.Write([]byte(tree.Name))
		h.Write([]byte(tree.SourceFile))
	}

	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}
