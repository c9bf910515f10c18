// Package matchtree builds the rooted node tree from a trial's declared
// match clauses, mirroring create_match_tree in the original matchengine:
// breadth-first construction so sibling order matches declaration order,
// which the traverser's evidence cross-join depends on. Per-node results
// are kept in a parallel array keyed by node index (spec.md §9 design
// note), not on mutable tree nodes.
package matchtree

import "github.com/dfci/matchengine/internal/model"

// Kind identifies a match-tree node's boolean role.
type Kind int

const (
	KindAnd Kind = iota
	KindOr
	KindClinical
	KindGenomic
)

// Node is one match-tree node. Leaves (KindClinical/KindGenomic) carry a
// criteria map; internal nodes carry Children node indices into the owning
// Tree's Nodes slice.
type Node struct {
	Kind     Kind
	Parent   int // -1 for the root
	Children []int
	Criteria map[string]any // populated only for leaf nodes
}

// Tree is a trial treatment node's compiled match declaration.
type Tree struct {
	Nodes []Node
	Root  int
}

// bfsItem is a pending (clause, parent-index) pair during breadth-first
// construction.
type bfsItem struct {
	clause model.MatchClause
	parent int
}

// Build constructs a Tree from a treatment node's `match` list. The list
// itself is treated as an implicit conjunction (a synthetic `and` root),
// matching how a trial author expresses multiple top-level clauses.
func Build(clauses []model.MatchClause) *Tree {
	t := &Tree{}
	rootIdx := t.addNode(Node{Kind: KindAnd, Parent: -1})
	t.Root = rootIdx

	queue := make([]bfsItem, 0, len(clauses))
	for _, c := range clauses {
		queue = append(queue, bfsItem{clause: c, parent: rootIdx})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		idx := t.addClauseNode(item.clause, item.parent)
		t.Nodes[item.parent].Children = append(t.Nodes[item.parent].Children, idx)

		switch item.clause.Kind() {
		case "and":
			for _, child := range item.clause.And {
				queue = append(queue, bfsItem{clause: child, parent: idx})
			}
		case "or":
			for _, child := range item.clause.Or {
				queue = append(queue, bfsItem{clause: child, parent: idx})
			}
		}
	}

	return t
}

func (t *Tree) addClauseNode(c model.MatchClause, parent int) int {
	switch c.Kind() {
	case "and":
		return t.addNode(Node{Kind: KindAnd, Parent: parent})
	case "or":
		return t.addNode(Node{Kind: KindOr, Parent: parent})
	case "clinical":
		return t.addNode(Node{Kind: KindClinical, Parent: parent, Criteria: c.Clinical})
	case "genomic":
		return t.addNode(Node{Kind: KindGenomic, Parent: parent, Criteria: c.Genomic})
	default:
		// Unrecognized/empty clause: treat as a no-op leaf that contributes
		// nothing, rather than failing the whole tree (spec.md §7: malformed
		// criteria evaluate to the empty set, not a hard error).
		return t.addNode(Node{Kind: KindClinical, Parent: parent, Criteria: map[string]any{}})
	}
}

func (t *Tree) addNode(n Node) int {
	t.Nodes = append(t.Nodes, n)
	return len(t.Nodes) - 1
}

// IsLeaf reports whether a node is a clinical or genomic leaf.
func (t *Tree) IsLeaf(idx int) bool {
	k := t.Nodes[idx].Kind
	return k == KindClinical || k == KindGenomic
}

// HasGenomicDescendant reports whether the subtree rooted at idx contains
// any genomic leaf.
func (t *Tree) HasGenomicDescendant(idx int) bool {
	n := t.Nodes[idx]
	if n.Kind == KindGenomic {
		return true
	}
	for _, c := range n.Children {
		if t.HasGenomicDescendant(c) {
			return true
		}
	}
	return false
}
