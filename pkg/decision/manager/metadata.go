package manager

import "arsmedica/dendron/pkg/dtl/ast"

// treeStats returns the node count and maximum depth of a tree.
// Shared subtrees are counted once; cyclic references are not revisited.
func treeStats(tree *Tree) (nodes, maxDepth int) {
	if tree == nil || tree.Root == nil {
		return 0, 0
	}
	seen := make(map[*ast.Node]bool)
	var walk func(node *ast.Node, depth int)
	walk = func(node *ast.Node, depth int) {
		if node == nil || seen[node] {
			return
		}
		seen[node] = true
		nodes++
		if depth > maxDepth {
			maxDepth = depth
		}
		for _, branch := range node.Branches {
			walk(branch.Child, depth+1)
		}
	}
	walk(tree.Root, 1)
	return nodes, maxDepth
}
