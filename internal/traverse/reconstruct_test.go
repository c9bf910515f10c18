package traverse

import (
	"testing"

	"github.com/dfci/matchengine/internal/matchtree"
	"github.com/dfci/matchengine/internal/model"
	"github.com/dfci/matchengine/internal/query"
)

func TestReconstructGenomicEvidence(t *testing.T) {
	tree := matchtree.Build([]model.MatchClause{{Genomic: map[string]any{"hugo_symbol": "BRAF"}}})
	res := &Result{
		Tree: tree,
		Sets: make([]query.SampleSet, len(tree.Nodes)),
		Genomic: map[int]map[string][]query.GenomicMatch{
			tree.Root: {"s1": {{SampleID: "s1", Alteration: "BRAF V600E", Record: model.GenomicRecord{GenomicID: "g1"}}}},
		},
	}
	res.Sets[tree.Root] = query.SampleSet{"s1": true}

	evidence := Reconstruct(res)
	if len(evidence) != 1 {
		t.Fatalf("expected 1 evidence record, got %d", len(evidence))
	}
	e := evidence[0]
	if e.SampleID != "s1" || e.Alteration != "BRAF V600E" || e.ClinicalOnly || e.Genomic == nil {
		t.Errorf("got %+v", e)
	}
}

func TestReconstructClinicalOnlyFallback(t *testing.T) {
	tree := matchtree.Build([]model.MatchClause{{Clinical: map[string]any{"gender": "Female"}}})
	res := &Result{
		Tree:    tree,
		Sets:    make([]query.SampleSet, len(tree.Nodes)),
		Genomic: map[int]map[string][]query.GenomicMatch{},
	}
	res.Sets[tree.Root] = query.SampleSet{"s1": true}

	evidence := Reconstruct(res)
	if len(evidence) != 1 {
		t.Fatalf("expected 1 evidence record, got %d", len(evidence))
	}
	if !evidence[0].ClinicalOnly || evidence[0].Alteration != "None" {
		t.Errorf("got %+v", evidence[0])
	}
}

func TestReconstructDedupesIdenticalAlterations(t *testing.T) {
	tree := matchtree.Build([]model.MatchClause{
		{Or: []model.MatchClause{
			{Genomic: map[string]any{"hugo_symbol": "BRAF"}},
			{Genomic: map[string]any{"hugo_symbol": "BRAF"}},
		}},
	})
	var leafIdx []int
	for idx, n := range tree.Nodes {
		if n.Kind == matchtree.KindGenomic {
			leafIdx = append(leafIdx, idx)
		}
	}
	if len(leafIdx) != 2 {
		t.Fatalf("expected 2 genomic leaves, got %d", len(leafIdx))
	}

	res := &Result{
		Tree:    tree,
		Sets:    make([]query.SampleSet, len(tree.Nodes)),
		Genomic: map[int]map[string][]query.GenomicMatch{},
	}
	for _, idx := range leafIdx {
		res.Genomic[idx] = map[string][]query.GenomicMatch{
			"s1": {{SampleID: "s1", Alteration: "BRAF V600E", Record: model.GenomicRecord{GenomicID: "g1"}}},
		}
	}
	res.Sets[tree.Root] = query.SampleSet{"s1": true}

	evidence := Reconstruct(res)
	if len(evidence) != 1 {
		t.Fatalf("expected the duplicate alteration across two leaves to dedupe to 1, got %d", len(evidence))
	}
}

func TestReconstructMultipleSamplesAndAlterations(t *testing.T) {
	tree := matchtree.Build([]model.MatchClause{{Genomic: map[string]any{"hugo_symbol": "BRAF"}}})
	res := &Result{
		Tree: tree,
		Sets: make([]query.SampleSet, len(tree.Nodes)),
		Genomic: map[int]map[string][]query.GenomicMatch{
			tree.Root: {
				"s1": {{SampleID: "s1", Alteration: "BRAF V600E", Record: model.GenomicRecord{GenomicID: "g1"}}},
				"s2": {{SampleID: "s2", Alteration: "BRAF V600K", Record: model.GenomicRecord{GenomicID: "g2"}}},
			},
		},
	}
	res.Sets[tree.Root] = query.SampleSet{"s1": true, "s2": true}

	evidence := Reconstruct(res)
	if len(evidence) != 2 {
		t.Fatalf("expected 2 evidence records, got %d", len(evidence))
	}
}
