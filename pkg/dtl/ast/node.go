package ast

// NodeKind distinguishes the two shapes a decision tree node can take.
type NodeKind string

const (
	// NodeKindQuestion is an internal node with a question and ordered branches.
	NodeKindQuestion NodeKind = "question"

	// NodeKindLeaf is a terminal node carrying the decision text.
	NodeKindLeaf NodeKind = "leaf"
)

// Node represents a single node in a decision tree.
// A node is either a question node (Question + Branches populated) or a
// leaf node (Decision populated). Branches are a slice, not a map:
// branch order is insertion order and the first matching key wins, so
// order is part of the tree's meaning.
type Node struct {
	Kind     NodeKind // Shape of the node
	Question string   // Question text (question nodes)
	Branches []Branch // Ordered branches (question nodes)
	Decision string   // Raw decision text, "Decision - Reason" or "Decision" (leaf nodes)
	Location Location // Source location
}

// Branch is a single edge of a question node: a key that selects it and
// the subtree it leads to.
type Branch struct {
	Key   BranchKey
	Child *Node
}

// Question constructs a question node with the given branches in order.
func Question(text string, branches ...Branch) *Node {
	return &Node{
		Kind:     NodeKindQuestion,
		Question: text,
		Branches: branches,
	}
}

// Leaf constructs a leaf node from raw decision text.
func Leaf(text string) *Node {
	return &Node{
		Kind:     NodeKindLeaf,
		Decision: text,
	}
}

// IsLeaf returns true if this is a terminal decision node.
func (n *Node) IsLeaf() bool {
	return n.Kind == NodeKindLeaf
}

// IsQuestion returns true if this is an internal question node.
func (n *Node) IsQuestion() bool {
	return n.Kind == NodeKindQuestion
}
