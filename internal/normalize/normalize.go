// Package normalize maps external (trial-authoring) field names and values
// onto the internal database vocabulary, mirroring MatchEngine.bootstrap_map
// in the original matchengine.
package normalize

import "strings"

// FieldMap translates an external criterion key (case-insensitive) to the
// internal database field name.
var FieldMap = map[string]string{
	"AGE_NUMERICAL":            "birth_date",
	"EXON":                     "true_transcript_exon",
	"HUGO_SYMBOL":              "true_hugo_symbol",
	"PROTEIN_CHANGE":           "true_protein_change",
	"WILDCARD_PROTEIN_CHANGE":  "true_protein_change",
	"ONCOTREE_PRIMARY_DIAGNOSIS": "oncotree_primary_diagnosis_name",
	"VARIANT_CLASSIFICATION":  "true_variant_classification",
	"VARIANT_CATEGORY":        "variant_category",
	"CNV_CALL":                "cnv_call",
	"WILDTYPE":                "wildtype",
	"GENDER":                  "gender",
	"MMR_STATUS":              "mmr_status",
	"MS_STATUS":               "mmr_status",
}

// valueMaps holds per-internal-field value translation tables. Keyed by the
// *internal* field name, since both MMR_STATUS and MS_STATUS fold onto the
// same internal field.
var valueMaps = map[string]map[string]string{
	"variant_category": {
		"Mutation":                 "MUTATION",
		"Copy Number Variation":    "CNV",
		"Structural Variation":     "SV",
	},
	"cnv_call": {
		"High Amplification":      "High level amplification",
		"Low Amplification":       "Low level amplification",
		"Homozygous Deletion":     "Homozygous deletion",
		"Heterozygous Deletion":   "Heterozygous deletion",
	},
	"mmr_status": {
		"MMR-Proficient":              "Proficient (MMR-P / MSS)",
		"MSS":                         "Proficient (MMR-P / MSS)",
		"MMR-Deficient":               "Deficient (MMR-D / MSI-H)",
		"MSI-H":                       "Deficient (MMR-D / MSI-H)",
		"Indeterminate":               "Indeterminate (see note)",
	},
}

// ReverseMMR maps the canonical internal MMR string back to the short form
// used when composing a MMR-signature alteration string, grounded on
// mmr_map_rev in the original matchengine.settings module.
var ReverseMMR = map[string]string{
	"Deficient (MMR-D / MSI-H)": "MSI-H",
	"Proficient (MMR-P / MSS)":  "MSS",
}

// Field translates an external criterion key to its internal field name.
// Unrecognized keys are returned unchanged (the caller is responsible for
// dropping keys that aren't in the criterion compiler's recognized set).
func Field(external string) string {
	key := strings.ToUpper(external)
	if internal, ok := FieldMap[key]; ok {
		return internal
	}
	return external
}

// Value translates an external value for the given *external* field name
// into its internal vocabulary, preserving a leading "!" negation marker.
// If no mapping applies the value is returned unchanged.
func Value(external string, value string) string {
	internalField := Field(external)
	vm, ok := valueMaps[internalField]
	if !ok {
		return value
	}

	negated := strings.HasPrefix(value, "!")
	lookup := value
	if negated {
		lookup = value[1:]
	}

	mapped, ok := vm[lookup]
	if !ok {
		return value
	}
	if negated {
		return "!" + mapped
	}
	return mapped
}
