package matchtree

import (
	"testing"

	"github.com/dfci/matchengine/internal/model"
)

func TestBuildSingleLeaf(t *testing.T) {
	tree := Build([]model.MatchClause{
		{Clinical: map[string]any{"gender": "Female"}},
	})
	if len(tree.Nodes) != 2 {
		t.Fatalf("expected a synthetic and-root plus one leaf, got %d nodes", len(tree.Nodes))
	}
	if tree.Nodes[tree.Root].Kind != KindAnd {
		t.Errorf("root should be a synthetic And node")
	}
	if tree.Nodes[1].Kind != KindClinical {
		t.Errorf("expected the leaf to be KindClinical, got %v", tree.Nodes[1].Kind)
	}
}

func TestBuildBreadthFirstOrderingKeepsParentIndexBelowChild(t *testing.T) {
	tree := Build([]model.MatchClause{
		{Or: []model.MatchClause{
			{Clinical: map[string]any{"gender": "Female"}},
			{And: []model.MatchClause{
				{Genomic: map[string]any{"hugo_symbol": "BRAF"}},
				{Genomic: map[string]any{"hugo_symbol": "KRAS"}},
			}},
		}},
	})
	for idx, n := range tree.Nodes {
		if n.Parent == -1 {
			continue
		}
		if n.Parent >= idx {
			t.Errorf("node %d has parent %d, want parent index strictly less (breadth-first invariant)", idx, n.Parent)
		}
	}
}

func TestHasGenomicDescendant(t *testing.T) {
	tree := Build([]model.MatchClause{
		{Or: []model.MatchClause{
			{Clinical: map[string]any{"gender": "Female"}},
			{Genomic: map[string]any{"hugo_symbol": "BRAF"}},
		}},
	})
	if !tree.HasGenomicDescendant(tree.Root) {
		t.Errorf("root subtree contains a genomic leaf, expected true")
	}

	onlyClinical := Build([]model.MatchClause{
		{Clinical: map[string]any{"gender": "Female"}},
	})
	if onlyClinical.HasGenomicDescendant(onlyClinical.Root) {
		t.Errorf("pure-clinical tree should report no genomic descendant")
	}
}

func TestBuildUnrecognizedClauseBecomesNoOpLeaf(t *testing.T) {
	tree := Build([]model.MatchClause{{}})
	leaf := tree.Nodes[1]
	if leaf.Kind != KindClinical || len(leaf.Criteria) != 0 {
		t.Errorf("expected an empty clinical leaf for an unrecognized clause, got %#v", leaf)
	}
}
