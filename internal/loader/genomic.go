package loader

import (
	"fmt"
	"io"

	"github.com/dfci/matchengine/internal/model"
)

// LoadGenomic reads tab-delimited genomic records from path, linking each
// row back to its clinical_id (spec.md §1's "links sample -> clinical
// IDs"): when a row omits clinical_id, it is filled in from clinicalBySample.
func LoadGenomic(path string, clinicalBySample map[string]string) ([]model.GenomicRecord, error) {
	cr, err := openColumnReader(path, "\t")
	if err != nil {
		return nil, err
	}
	defer cr.Close()

	var records []model.GenomicRecord
	for {
		row, err := cr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, fmt.Errorf("read genomic row: %w", err)
		}

		rec := model.GenomicRecord{
			SampleID:                  row["sample_id"],
			ClinicalID:                row["clinical_id"],
			GenomicID:                 row["genomic_id"],
			UniqueGenomicID:           row["unique_genomic_id"],
			TrueHugoSymbol:            row["true_hugo_symbol"],
			TrueProteinChange:         row["true_protein_change"],
			TrueVariantClassification: row["true_variant_classification"],
			VariantCategory:           row["variant_category"],
			CNVCall:                   row["cnv_call"],
			MMRStatus:                 row["mmr_status"],
			StructuralVariantComment:  row["structural_variant_comment"],
			Actionability:             row["actionability"],
		}

		if rec.ClinicalID == "" {
			rec.ClinicalID = clinicalBySample[rec.SampleID]
		}
		if rec.UniqueGenomicID == "" {
			rec.UniqueGenomicID = rec.SampleID + ":" + rec.GenomicID
		}

		if wt, err := parseOptionalBool(row["wildtype"]); err != nil {
			return records, &ParseError{Line: cr.lineNumber, Message: fmt.Sprintf("wildtype: %v", err)}
		} else {
			rec.Wildtype = wt
		}

		if exon, err := parseOptionalInt(row["true_transcript_exon"]); err != nil {
			return records, &ParseError{Line: cr.lineNumber, Message: fmt.Sprintf("true_transcript_exon: %v", err)}
		} else {
			rec.TrueTranscriptExon = exon
		}

		if tier, err := parseOptionalInt(row["tier"]); err != nil {
			return records, &ParseError{Line: cr.lineNumber, Message: fmt.Sprintf("tier: %v", err)}
		} else {
			rec.Tier = tier
		}

		records = append(records, rec)
	}
	return records, nil
}
