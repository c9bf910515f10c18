package traverse

import (
	"fmt"

	"github.com/dfci/matchengine/internal/criteria"
	"github.com/dfci/matchengine/internal/matcherr"
	"github.com/dfci/matchengine/internal/matchtree"
	"github.com/dfci/matchengine/internal/query"
)

// Result is the full per-node evaluation output of one match tree:
// S(node) for every node index, plus the genomic evidence produced by
// genomic leaves (needed later for evidence reconstruction).
type Result struct {
	Tree     *matchtree.Tree
	Sets     []query.SampleSet             // indexed by node index
	Genomic  map[int]map[string][]query.GenomicMatch // leaf idx -> sampleID -> matches
	Warnings []error
}

// Evaluate runs the post-order pass described in spec.md §4.8: leaves query
// the store, and/or nodes combine their already-evaluated children. Nodes
// are processed from the highest index down to 0, which is always a valid
// post-order since matchtree.Build assigns every child a strictly higher
// index than its parent (breadth-first construction).
func Evaluate(ctx *Context, tree *matchtree.Tree) (*Result, error) {
	res := &Result{
		Tree:    tree,
		Sets:    make([]query.SampleSet, len(tree.Nodes)),
		Genomic: map[int]map[string][]query.GenomicMatch{},
	}

	for idx := len(tree.Nodes) - 1; idx >= 0; idx-- {
		select {
		case <-ctx.doneCh():
			return nil, fmt.Errorf("match tree evaluation cancelled")
		default:
		}

		n := tree.Nodes[idx]
		switch n.Kind {
		case matchtree.KindClinical:
			set, err := evalClinical(ctx, n.Criteria)
			if err != nil {
				res.Warnings = append(res.Warnings, matcherr.New(matcherr.InvalidCriterion, "clinical", err))
				set = query.SampleSet{}
			}
			res.Sets[idx] = set

		case matchtree.KindGenomic:
			set, matches, err := evalGenomic(ctx, n.Criteria)
			if err != nil {
				res.Warnings = append(res.Warnings, matcherr.New(matcherr.InvalidCriterion, "genomic", err))
				set = query.SampleSet{}
			}
			res.Sets[idx] = set
			res.Genomic[idx] = matches

		case matchtree.KindAnd:
			set := query.SampleSet(nil)
			for i, child := range n.Children {
				if i == 0 {
					set = res.Sets[child]
					continue
				}
				set = query.Intersect(set, res.Sets[child])
			}
			if set == nil {
				set = query.SampleSet{}
			}
			res.Sets[idx] = set

		case matchtree.KindOr:
			set := query.SampleSet{}
			for _, child := range n.Children {
				set = query.Union(set, res.Sets[child])
			}
			res.Sets[idx] = set
		}
	}

	return res, nil
}

func evalClinical(ctx *Context, crit map[string]any) (query.SampleSet, error) {
	pred := criteria.CompileClinical(ctx.Onco, ctx.Now, crit)
	return query.EvaluateClinical(ctx.Store, pred)
}

// evalGenomic composes the general matcher with the optional
// annotation-service matcher per spec.md §9's fixed composition rule:
// annotation-matcher results further constrain (intersect) general-matcher
// results when both fire; otherwise whichever fires determines the set.
func evalGenomic(ctx *Context, crit map[string]any) (query.SampleSet, map[string][]query.GenomicMatch, error) {
	gc := criteria.CompileGenomic(crit)

	generalSet, generalMatches, err := evalCompiledGenomic(ctx, gc)
	if err != nil {
		return nil, nil, err
	}

	annotatedVariant, hasAnnotated := lookupAnnotatedVariant(crit)
	if !hasAnnotated || ctx.Method != MethodAnnotated {
		return generalSet, generalMatches, nil
	}

	hugo, _ := crit["hugo_symbol"].(string)
	annotatedPred := criteria.CompileAnnotated(ctx.AnnotationCache, hugo, annotatedVariant)
	rows, err := query.EvaluateGenomicPositive(ctx.Store, annotatedPred, gc.IsSV)
	if err != nil {
		// AnnotationError: degrade gracefully to the general matcher alone.
		return generalSet, generalMatches, nil
	}
	annotatedSet := query.NewSampleSet(sampleIDsOf(rows))

	var fired query.SampleSet
	if gc.Negative || !gc.Pred.IsEmpty() {
		fired = query.Intersect(generalSet, annotatedSet)
	} else {
		fired = annotatedSet
	}

	matches := map[string][]query.GenomicMatch{}
	for _, r := range rows {
		if fired[r.SampleID] {
			matches[r.SampleID] = append(matches[r.SampleID], r)
		}
	}
	for id, ms := range generalMatches {
		if fired[id] {
			matches[id] = append(matches[id], ms...)
		}
	}
	return fired, matches, nil
}

func evalCompiledGenomic(ctx *Context, gc criteria.GenomicCriterion) (query.SampleSet, map[string][]query.GenomicMatch, error) {
	if !gc.Negative {
		rows, err := query.EvaluateGenomicPositive(ctx.Store, gc.Pred, gc.IsSV)
		if err != nil {
			return nil, nil, err
		}
		set := query.NewSampleSet(sampleIDsOf(rows))
		byID := map[string][]query.GenomicMatch{}
		for _, r := range rows {
			byID[r.SampleID] = append(byID[r.SampleID], r)
		}
		return set, byID, nil
	}

	negAlteration := query.FormatNegativeAlteration(gc.HasGene, gc.HugoSymbolDisplay, gc.ProteinChangeDisplay, gc.CNVCallDisplay, gc.VariantClassDisplay, gc.IsSV)
	rows, err := query.EvaluateGenomicNegative(ctx.Store, ctx.AllSamples, gc.Pred, negAlteration, gc.IsSV)
	if err != nil {
		return nil, nil, err
	}
	set := query.NewSampleSet(sampleIDsOf(rows))
	byID := map[string][]query.GenomicMatch{}
	for _, r := range rows {
		byID[r.SampleID] = append(byID[r.SampleID], r)
	}
	return set, byID, nil
}

func sampleIDsOf(matches []query.GenomicMatch) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.SampleID
	}
	return out
}

func lookupAnnotatedVariant(crit map[string]any) (string, bool) {
	for k, v := range crit {
		if k == "annotated_variant" {
			s, ok := v.(string)
			return s, ok
		}
	}
	return "", false
}
