package traverse

import (
	"context"
	"testing"

	"github.com/dfci/matchengine/internal/matchtree"
	"github.com/dfci/matchengine/internal/model"
	"github.com/dfci/matchengine/internal/query"
)

type fakeStore struct {
	clinical map[string][]string // field=value key -> sample ids
	genomic  []model.GenomicRecord
	all      []string
}

func (f *fakeStore) FindClinicalSampleIDs(pred query.Predicate) ([]string, error) {
	// CompileClinical wraps even a single field predicate in a conjunction.
	for len(pred.And) > 0 {
		pred = pred.And[0]
	}
	key := pred.Field + "=" + fmtVal(pred.Value)
	return f.clinical[key], nil
}

func fmtVal(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func (f *fakeStore) FindGenomic(pred query.Predicate, includeSVComment bool) ([]model.GenomicRecord, error) {
	gene, ok := findFieldValue(pred, "true_hugo_symbol")
	if !ok {
		return nil, nil
	}
	var out []model.GenomicRecord
	for _, r := range f.genomic {
		if r.TrueHugoSymbol == gene {
			out = append(out, r)
		}
	}
	return out, nil
}

// findFieldValue recursively searches a (possibly nested) conjunction for an
// equality predicate on field, mirroring how the real store's render() walks
// the same nested And trees CompileGenomic produces.
func findFieldValue(pred query.Predicate, field string) (string, bool) {
	if pred.Field == field {
		s, ok := pred.Value.(string)
		return s, ok
	}
	for _, sub := range pred.And {
		if v, ok := findFieldValue(sub, field); ok {
			return v, true
		}
	}
	return "", false
}

func (f *fakeStore) AllSampleIDs() ([]string, error) {
	return f.all, nil
}

func buildCtx(store *fakeStore) *Context {
	return &Context{Store: store, AllSamples: store.all, Method: MethodGeneral, Ctx: context.Background()}
}

func TestEvaluateClinicalLeaf(t *testing.T) {
	store := &fakeStore{clinical: map[string][]string{"gender=Female": {"s1", "s2"}}, all: []string{"s1", "s2", "s3"}}
	tree := matchtree.Build([]model.MatchClause{{Clinical: map[string]any{"gender": "Female"}}})

	res, err := Evaluate(buildCtx(store), tree)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	set := res.Sets[tree.Root]
	if !set["s1"] || !set["s2"] || set["s3"] {
		t.Errorf("got %v", set)
	}
}

func TestEvaluateAndIntersects(t *testing.T) {
	store := &fakeStore{
		clinical: map[string][]string{"gender=Female": {"s1", "s2"}},
		genomic:  []model.GenomicRecord{{SampleID: "s2", TrueHugoSymbol: "BRAF"}, {SampleID: "s3", TrueHugoSymbol: "BRAF"}},
		all:      []string{"s1", "s2", "s3"},
	}
	tree := matchtree.Build([]model.MatchClause{
		{And: []model.MatchClause{
			{Clinical: map[string]any{"gender": "Female"}},
			{Genomic: map[string]any{"hugo_symbol": "BRAF"}},
		}},
	})

	res, err := Evaluate(buildCtx(store), tree)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	set := res.Sets[tree.Root]
	if len(set) != 1 || !set["s2"] {
		t.Errorf("expected only s2 to survive the intersection, got %v", set)
	}
}

func TestEvaluateOrUnions(t *testing.T) {
	store := &fakeStore{
		clinical: map[string][]string{"gender=Female": {"s1"}},
		genomic:  []model.GenomicRecord{{SampleID: "s2", TrueHugoSymbol: "BRAF"}},
		all:      []string{"s1", "s2", "s3"},
	}
	tree := matchtree.Build([]model.MatchClause{
		{Or: []model.MatchClause{
			{Clinical: map[string]any{"gender": "Female"}},
			{Genomic: map[string]any{"hugo_symbol": "BRAF"}},
		}},
	})

	res, err := Evaluate(buildCtx(store), tree)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	set := res.Sets[tree.Root]
	if len(set) != 2 || !set["s1"] || !set["s2"] {
		t.Errorf("expected s1 and s2 from the union, got %v", set)
	}
}

func TestEvaluateCancelledContext(t *testing.T) {
	store := &fakeStore{all: []string{"s1"}}
	tree := matchtree.Build([]model.MatchClause{{Clinical: map[string]any{"gender": "Female"}}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tctx := buildCtx(store)
	tctx.Ctx = ctx

	if _, err := Evaluate(tctx, tree); err == nil {
		t.Errorf("expected an error for a canceled context")
	}
}
