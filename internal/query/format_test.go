package query

import (
	"testing"

	"github.com/dfci/matchengine/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestFormatAlterationPriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		rec  model.GenomicRecord
		want string
	}{
		{
			name: "protein change takes priority",
			rec:  model.GenomicRecord{TrueHugoSymbol: "BRAF", TrueProteinChange: "p.V600E", CNVCall: "Amplification"},
			want: "BRAF p.V600E",
		},
		{
			name: "cnv call when no protein change",
			rec:  model.GenomicRecord{TrueHugoSymbol: "ERBB2", CNVCall: "High level amplification"},
			want: "ERBB2 High level amplification",
		},
		{
			name: "variant classification fallback",
			rec:  model.GenomicRecord{TrueHugoSymbol: "TP53", TrueVariantClassification: "Nonsense_Mutation"},
			want: "TP53 Nonsense_Mutation",
		},
		{
			name: "structural variant fallback",
			rec:  model.GenomicRecord{TrueHugoSymbol: "ALK", VariantCategory: "SV"},
			want: "ALK Structural Variation",
		},
		{
			name: "mmr signature fallback",
			rec:  model.GenomicRecord{TrueHugoSymbol: "MMR", VariantCategory: "SIGNATURE", MMRStatus: "Deficient (MMR-D / MSI-H)"},
			want: "MMRMSI-H",
		},
		{
			name: "wildtype prefix",
			rec:  model.GenomicRecord{TrueHugoSymbol: "KRAS", TrueProteinChange: "p.G12C", Wildtype: boolPtr(true)},
			want: "wt KRAS p.G12C",
		},
		{
			name: "gene only when nothing else present",
			rec:  model.GenomicRecord{TrueHugoSymbol: "PTEN"},
			want: "PTEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAlteration(tt.rec)
			if got != tt.want {
				t.Errorf("FormatAlteration(%+v) = %q, want %q", tt.rec, got, tt.want)
			}
		})
	}
}

func TestFormatNegativeAlteration(t *testing.T) {
	tests := []struct {
		name                                                      string
		hasGene                                                   bool
		gene, proteinChange, cnvCall, variantClass                string
		isSV                                                      bool
		want                                                      string
	}{
		{"negated gene only", true, "BRAF", "", "", "", false, "!BRAF"},
		{"negated gene plus protein change", true, "BRAF", "p.V600E", "", "", false, "!BRAF p.V600E"},
		{"negated structural variant with no gene", false, "", "", "", "", true, "!Structural Variation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatNegativeAlteration(tt.hasGene, tt.gene, tt.proteinChange, tt.cnvCall, tt.variantClass, tt.isSV)
			if got != tt.want {
				t.Errorf("FormatNegativeAlteration(...) = %q, want %q", got, tt.want)
			}
		})
	}
}
