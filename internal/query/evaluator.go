package query

import "github.com/dfci/matchengine/internal/model"

// SampleSet is a distinct set of clinical sample_ids.
type SampleSet map[string]bool

// NewSampleSet builds a SampleSet from a slice.
func NewSampleSet(ids []string) SampleSet {
	s := make(SampleSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Union returns the union of a and b without mutating either.
func Union(a, b SampleSet) SampleSet {
	out := make(SampleSet, len(a)+len(b))
	for id := range a {
		out[id] = true
	}
	for id := range b {
		out[id] = true
	}
	return out
}

// Intersect returns the intersection of a and b without mutating either.
func Intersect(a, b SampleSet) SampleSet {
	out := SampleSet{}
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for id := range small {
		if big[id] {
			out[id] = true
		}
	}
	return out
}

// Complement returns universe \ s.
func Complement(universe []string, s SampleSet) SampleSet {
	out := SampleSet{}
	for _, id := range universe {
		if !s[id] {
			out[id] = true
		}
	}
	return out
}

// EvaluateClinical runs a compiled clinical predicate against the store and
// returns the distinct sample_id set, per spec.md §4.7 case 1.
func EvaluateClinical(store Store, pred Predicate) (SampleSet, error) {
	if pred.IsEmpty() {
		return SampleSet{}, nil
	}
	ids, err := store.FindClinicalSampleIDs(pred)
	if err != nil {
		return nil, err
	}
	return NewSampleSet(ids), nil
}

// GenomicMatch pairs one matched sample with the alteration record that
// satisfied a genomic leaf, and the formatted description string.
type GenomicMatch struct {
	SampleID    string
	Record      model.GenomicRecord
	Alteration  string
	ClinicalOnly bool
}

// EvaluateGenomicPositive runs the compiled positive genomic filter and
// returns one GenomicMatch per row, per spec.md §4.7 case 2.
func EvaluateGenomicPositive(store Store, pred Predicate, includeSVComment bool) ([]GenomicMatch, error) {
	if pred.IsEmpty() {
		return nil, nil
	}
	rows, err := store.FindGenomic(pred, includeSVComment)
	if err != nil {
		return nil, err
	}
	out := make([]GenomicMatch, 0, len(rows))
	for _, r := range rows {
		out = append(out, GenomicMatch{
			SampleID:   r.SampleID,
			Record:     r,
			Alteration: FormatAlteration(r),
		})
	}
	return out, nil
}

// EvaluateGenomicNegative runs the underlying positive filter, subtracts the
// matched sample_ids from allSamples, and tags every surviving sample with
// the synthetic negative-alteration string, per spec.md §4.7 case 3.
func EvaluateGenomicNegative(store Store, allSamples []string, positivePred Predicate, negativeAlteration string, includeSVComment bool) ([]GenomicMatch, error) {
	var matched SampleSet
	if positivePred.IsEmpty() {
		matched = SampleSet{}
	} else {
		rows, err := store.FindGenomic(positivePred, includeSVComment)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.SampleID)
		}
		matched = NewSampleSet(ids)
	}

	remaining := Complement(allSamples, matched)
	out := make([]GenomicMatch, 0, len(remaining))
	for id := range remaining {
		out = append(out, GenomicMatch{SampleID: id, Alteration: negativeAlteration})
	}
	return out, nil
}
