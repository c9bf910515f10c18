package criteria

import (
	"strings"

	"github.com/dfci/matchengine/internal/query"
)

// AnnotationCache is the gene -> declared-alteration -> canonical-token-list
// map produced by a single batched call to the external annotation service
// (spec.md §6), consumed once before matching starts.
type AnnotationCache map[string]map[string][]string

// Lookup returns the canonical alteration tokens for a (gene, declared
// alteration) pair, case-insensitively on the gene.
func (c AnnotationCache) Lookup(gene, alteration string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	byAlteration, ok := c[gene]
	if !ok {
		for g, m := range c {
			if strings.EqualFold(g, gene) {
				byAlteration = m
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, false
	}
	tokens, ok := byAlteration[alteration]
	return tokens, ok
}

// CompileAnnotated translates an `annotated_variant` genomic sub-criterion
// into a predicate over true_hugo_symbol/true_protein_change, broadening a
// plain equality into set-membership on the canonical tokens the annotation
// service returned. When the cache has no entry for this (gene, alteration)
// pair (service unreachable, or the pair wasn't declared up front), it falls
// back to plain equality on the declared alteration so the general matcher's
// behavior is preserved (spec.md §7 AnnotationError: "degrades gracefully to
// the non-annotated matcher").
func CompileAnnotated(cache AnnotationCache, hugoSymbol, declaredAlteration string) query.Predicate {
	gene := strings.TrimPrefix(hugoSymbol, "!")
	geneNegated := strings.HasPrefix(hugoSymbol, "!")

	var preds []query.Predicate
	if gene != "" {
		if geneNegated {
			preds = append(preds, query.Predicate{Field: "true_hugo_symbol", Op: query.OpNe, Value: gene})
		} else {
			preds = append(preds, query.Predicate{Field: "true_hugo_symbol", Op: query.OpEq, Value: gene})
		}
	}

	alteration := strings.TrimPrefix(declaredAlteration, "!")
	negated := strings.HasPrefix(declaredAlteration, "!")

	if tokens, ok := cache.Lookup(gene, alteration); ok && len(tokens) > 0 {
		values := make([]any, len(tokens))
		for i, t := range tokens {
			values[i] = t
		}
		if negated {
			preds = append(preds, query.Predicate{Field: "true_protein_change", Op: query.OpNotIn, Values: values})
		} else {
			preds = append(preds, query.Predicate{Field: "true_protein_change", Op: query.OpIn, Values: values})
		}
		return query.Conjunction(preds...)
	}

	if negated {
		preds = append(preds, query.Predicate{Field: "true_protein_change", Op: query.OpNe, Value: alteration})
	} else {
		preds = append(preds, query.Predicate{Field: "true_protein_change", Op: query.OpEq, Value: alteration})
	}
	return query.Conjunction(preds...)
}
