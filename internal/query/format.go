package query

import (
	"fmt"
	"strings"

	"github.com/dfci/matchengine/internal/model"
	"github.com/dfci/matchengine/internal/normalize"
)

// FormatAlteration reconstructs the human-readable alteration string for a
// positive genomic match from an actual matched row, mirroring
// format_genomic_alteration in the original matchengine (spec.md §4.7):
// prefix "wt " when wildtype=true, then gene, then in priority protein
// change, cnv_call, variant_classification, "Structural Variation" (for
// SV), or the MMR-signature string (for SIGNATURE rows).
func FormatAlteration(rec model.GenomicRecord) string {
	var body string
	switch {
	case rec.TrueProteinChange != "":
		body = rec.TrueHugoSymbol + " " + rec.TrueProteinChange
	case rec.CNVCall != "":
		body = fmt.Sprintf("%s %s", rec.TrueHugoSymbol, rec.CNVCall)
	case rec.TrueVariantClassification != "":
		body = fmt.Sprintf("%s %s", rec.TrueHugoSymbol, rec.TrueVariantClassification)
	case rec.VariantCategory == "SV":
		body = rec.TrueHugoSymbol + " Structural Variation"
	case rec.VariantCategory == "SIGNATURE" && rec.MMRStatus != "":
		if mmr, ok := normalize.ReverseMMR[rec.MMRStatus]; ok {
			body = rec.TrueHugoSymbol + mmr
		} else {
			body = rec.TrueHugoSymbol
		}
	default:
		body = rec.TrueHugoSymbol
	}

	if rec.Wildtype != nil && *rec.Wildtype {
		return "wt " + body
	}
	return body
}

// FormatNegativeAlteration reconstructs the alteration string for a negative
// genomic leaf, where no matched row exists: the string is built from the
// compiled criterion's display fields instead, mirroring format_not_match /
// format_query in the original matchengine. When no gene constraint
// survived compilation (e.g. a negated structural-variant leaf), the "!" is
// inserted at the front of whatever description remains.
func FormatNegativeAlteration(hasGene bool, gene string, proteinChange string, cnvCall string, variantClass string, isSV bool) string {
	var parts []string
	if hasGene {
		parts = append(parts, gene)
	}
	switch {
	case proteinChange != "":
		parts = append(parts, proteinChange)
	case cnvCall != "":
		parts = append(parts, cnvCall)
	case variantClass != "":
		parts = append(parts, variantClass)
	case isSV:
		parts = append(parts, "Structural Variation")
	}

	joined := strings.Join(parts, " ")
	if hasGene {
		return "!" + joined
	}
	return "!" + strings.TrimSpace(joined)
}
