package query

import (
	"testing"

	"github.com/dfci/matchengine/internal/model"
)

// fakeStore is an in-memory query.Store for evaluator tests, independent of
// internal/store's DuckDB backing.
type fakeStore struct {
	clinicalIDs []string
	genomic     []model.GenomicRecord
}

func (f *fakeStore) FindClinicalSampleIDs(Predicate) ([]string, error) { return f.clinicalIDs, nil }
func (f *fakeStore) FindGenomic(Predicate, bool) ([]model.GenomicRecord, error) {
	return f.genomic, nil
}
func (f *fakeStore) AllSampleIDs() ([]string, error) { return f.clinicalIDs, nil }

func TestSampleSetOps(t *testing.T) {
	a := NewSampleSet([]string{"s1", "s2"})
	b := NewSampleSet([]string{"s2", "s3"})

	u := Union(a, b)
	if len(u) != 3 {
		t.Errorf("Union size = %d, want 3", len(u))
	}

	i := Intersect(a, b)
	if len(i) != 1 || !i["s2"] {
		t.Errorf("Intersect = %v, want {s2}", i)
	}

	c := Complement([]string{"s1", "s2", "s3"}, a)
	if len(c) != 1 || !c["s3"] {
		t.Errorf("Complement = %v, want {s3}", c)
	}
}

func TestEvaluateClinicalEmptyPredicateShortCircuits(t *testing.T) {
	store := &fakeStore{clinicalIDs: []string{"s1"}}
	set, err := EvaluateClinical(store, Predicate{})
	if err != nil {
		t.Fatalf("EvaluateClinical: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected an empty set for an empty predicate, got %v", set)
	}
}

func TestEvaluateGenomicPositive(t *testing.T) {
	store := &fakeStore{genomic: []model.GenomicRecord{
		{SampleID: "s1", TrueHugoSymbol: "BRAF", TrueProteinChange: "p.V600E"},
	}}
	matches, err := EvaluateGenomicPositive(store, Predicate{Field: "true_hugo_symbol", Op: OpEq, Value: "BRAF"}, false)
	if err != nil {
		t.Fatalf("EvaluateGenomicPositive: %v", err)
	}
	if len(matches) != 1 || matches[0].Alteration != "BRAF p.V600E" {
		t.Errorf("got %+v", matches)
	}
}

func TestEvaluateGenomicNegativeSubtractsMatchedSamples(t *testing.T) {
	store := &fakeStore{genomic: []model.GenomicRecord{
		{SampleID: "s1", TrueHugoSymbol: "BRAF"},
	}}
	matches, err := EvaluateGenomicNegative(
		store, []string{"s1", "s2"},
		Predicate{Field: "true_hugo_symbol", Op: OpEq, Value: "BRAF"},
		"!BRAF", false,
	)
	if err != nil {
		t.Fatalf("EvaluateGenomicNegative: %v", err)
	}
	if len(matches) != 1 || matches[0].SampleID != "s2" || matches[0].Alteration != "!BRAF" {
		t.Errorf("got %+v, want s2 tagged !BRAF", matches)
	}
}
