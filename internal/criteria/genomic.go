// Package criteria compiles one clinical or genomic match-tree leaf into a
// query.Predicate plus side flags, mirroring prepare_clinical_criteria /
// prepare_genomic_criteria / build_cquery / build_gquery in the original
// matchengine.
package criteria

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dfci/matchengine/internal/normalize"
	"github.com/dfci/matchengine/internal/query"
)

// genomicKeys is the recognized genomic criterion key set for the general
// matcher (annotated_variant is handled separately by CompileAnnotated).
var genomicKeys = map[string]bool{
	"hugo_symbol":             true,
	"variant_category":        true,
	"protein_change":          true,
	"wildcard_protein_change": true,
	"variant_classification":  true,
	"exon":                    true,
	"cnv_call":                true,
	"wildtype":                true,
	"mmr_status":              true,
	"ms_status":               true,
}

// GenomicCriterion is the compiled form of a `genomic:` leaf.
type GenomicCriterion struct {
	Pred     query.Predicate
	Negative bool
	IsSV     bool

	// Display fields used to reconstruct a synthetic alteration string when
	// Negative is true (internal/query.FormatNegativeAlteration).
	HasGene               bool
	HugoSymbolDisplay     string
	HasProteinChange      bool
	ProteinChangeDisplay  string
	CNVCallDisplay        string
	VariantClassDisplay   string
}

// CompileGenomic translates a genomic leaf's raw criteria map into a
// GenomicCriterion. Unrecognized keys are silently dropped (spec.md §7).
func CompileGenomic(criteria map[string]any) GenomicCriterion {
	var fieldPreds []query.Predicate
	var c GenomicCriterion
	wildtypeSpecified := false
	mmrSpecified := false

	// Stable iteration order so output is deterministic across runs.
	order := []string{
		"hugo_symbol", "variant_category", "protein_change",
		"wildcard_protein_change", "variant_classification", "exon",
		"cnv_call", "wildtype", "mmr_status", "ms_status",
	}
	for _, key := range order {
		raw, ok := lookupCI(criteria, key)
		if !ok || !genomicKeys[key] {
			continue
		}
		if key == "wildtype" {
			wildtypeSpecified = true
		}
		if key == "mmr_status" || key == "ms_status" {
			mmrSpecified = true
		}

		text, isList := asString(raw)
		if !isList {
			continue // genomic criteria values are always scalar strings in this grammar
		}

		internalField := normalize.Field(key)
		normalized := normalize.Value(key, text)

		pred, negated, isSV, hasProtein, display := buildGenomicField(key, internalField, normalized)
		if negated {
			c.Negative = true
		}
		if isSV {
			c.IsSV = true
		}
		if hasProtein {
			c.HasProteinChange = true
			c.ProteinChangeDisplay = display
		}
		switch key {
		case "hugo_symbol":
			c.HasGene = true
			c.HugoSymbolDisplay = strings.TrimPrefix(normalized, "!")
		case "cnv_call":
			c.CNVCallDisplay = strings.TrimPrefix(normalized, "!")
		case "variant_classification":
			c.VariantClassDisplay = strings.TrimPrefix(normalized, "!")
		}

		fieldPreds = append(fieldPreds, pred)
	}

	pred := query.Conjunction(fieldPreds...)

	// Structural variants: rewrite the gene constraint into a free-text
	// search over structural_variant_comment (get_structural_variants).
	if c.IsSV && c.HasGene {
		pred = rewriteStructuralVariant(pred, c.HugoSymbolDisplay)
		c.HasGene = false
	}

	// MMR signatures carry no gene: drop the hugo-symbol constraint before
	// adding the wildtype default clause (clean_query_for_msi).
	if mmrSpecified {
		pred = dropField(pred, "true_hugo_symbol")
		c.HasGene = false
	}

	if !wildtypeSpecified {
		pred = query.Conjunction(pred, query.Predicate{
			Field:            "wildtype",
			Op:               query.OpExistsFalseOrEq,
			ExistsFalseValue: false,
		})
	}

	c.Pred = pred
	return c
}

// buildGenomicField mirrors build_gquery for a single field/value pair.
func buildGenomicField(externalKey, internalField, text string) (pred query.Predicate, negated, isSV, hasProtein bool, display string) {
	switch externalKey {
	case "variant_category":
		if text == "SV" || text == "!SV" {
			isSV = true
		}
		if strings.EqualFold(text, "any variation") {
			return query.Predicate{Field: internalField, Op: query.OpIn, Values: []any{"MUTATION", "CNV"}}, false, isSV, false, ""
		}
	case "mmr_status", "ms_status":
		// normalize.Value already mapped to the canonical internal string.
		return query.Predicate{Field: internalField, Op: query.OpEq, Value: text}, false, false, false, text
	case "wildcard_protein_change":
		v := text
		if strings.HasPrefix(v, "!") {
			negated = true
			v = v[1:]
		}
		if !strings.HasPrefix(v, "p.") {
			v = "p." + v
		}
		re := fmt.Sprintf("^%s[A-Z]", v)
		return query.Predicate{Field: internalField, Op: query.OpRegex, Value: re}, negated, isSV, true, v
	}

	if externalKey == "protein_change" {
		hasProtein = true
	}

	if strings.HasPrefix(text, "!") {
		v := text[1:]
		negated = true
		if externalKey == "exon" {
			n, _ := strconv.Atoi(v)
			return query.Predicate{Field: internalField, Op: query.OpEq, Value: n}, negated, isSV, hasProtein, v
		}
		return query.Predicate{Field: internalField, Op: query.OpEq, Value: v}, negated, isSV, hasProtein, v
	}

	if externalKey == "exon" {
		n, _ := strconv.Atoi(text)
		return query.Predicate{Field: internalField, Op: query.OpEq, Value: n}, negated, isSV, hasProtein, text
	}
	return query.Predicate{Field: internalField, Op: query.OpEq, Value: text}, negated, isSV, hasProtein, text
}

// rewriteStructuralVariant drops the true_hugo_symbol equality and adds a
// case-insensitive whole-word search over structural_variant_comment,
// grounded on get_structural_variants in the original matchengine.
func rewriteStructuralVariant(pred query.Predicate, gene string) query.Predicate {
	pred = dropField(pred, "true_hugo_symbol")
	re := fmt.Sprintf(`(.*\W%s\W.*)|(^%s\W.*)|(.*\W%s$)`, gene, gene, gene)
	return query.Conjunction(pred, query.Predicate{
		Field: "structural_variant_comment",
		Op:    query.OpRegex,
		Value: "(?i)" + re,
		Hint:  gene,
	})
}

// dropField removes every top-level sub-predicate constraining field from a
// conjunction.
func dropField(pred query.Predicate, field string) query.Predicate {
	if pred.And == nil {
		if pred.Field == field {
			return query.Predicate{}
		}
		return pred
	}
	out := pred
	out.And = nil
	for _, sub := range pred.And {
		if sub.Field == field {
			continue
		}
		out.And = append(out.And, sub)
	}
	return out
}

func lookupCI(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
