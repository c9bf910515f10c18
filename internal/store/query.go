package store

import (
	"fmt"

	"github.com/dfci/matchengine/internal/model"
	"github.com/dfci/matchengine/internal/query"
)

// FindClinicalSampleIDs implements query.Store.
func (s *Store) FindClinicalSampleIDs(pred query.Predicate) ([]string, error) {
	where, args := render(pred)
	rows, err := s.db.Query(fmt.Sprintf("SELECT DISTINCT sample_id FROM clinical WHERE %s", where), args...)
	if err != nil {
		return nil, fmt.Errorf("find clinical sample ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan clinical sample id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// FindGenomic implements query.Store.
func (s *Store) FindGenomic(pred query.Predicate, includeSVComment bool) ([]model.GenomicRecord, error) {
	pred = s.narrowByFullText(pred)

	where, args := render(pred)
	sqlStr := fmt.Sprintf(`SELECT sample_id, clinical_id, genomic_id, unique_genomic_id,
		true_hugo_symbol, true_protein_change, true_variant_classification,
		variant_category, cnv_call, wildtype, true_transcript_exon, mmr_status,
		structural_variant_comment, tier, actionability
		FROM genomic WHERE %s`, where)

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("find genomic: %w", err)
	}
	defer rows.Close()

	var out []model.GenomicRecord
	for rows.Next() {
		var r model.GenomicRecord
		if err := rows.Scan(
			&r.SampleID, &r.ClinicalID, &r.GenomicID, &r.UniqueGenomicID,
			&r.TrueHugoSymbol, &r.TrueProteinChange, &r.TrueVariantClassification,
			&r.VariantCategory, &r.CNVCall, &r.Wildtype, &r.TrueTranscriptExon, &r.MMRStatus,
			&r.StructuralVariantComment, &r.Tier, &r.Actionability,
		); err != nil {
			return nil, fmt.Errorf("scan genomic row: %w", err)
		}
		if !includeSVComment {
			r.StructuralVariantComment = ""
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// narrowByFullText adds a genomic_id IN (...) pre-filter ahead of a
// structural-variant regex predicate when a full-text index is attached,
// narrowing the rows DuckDB has to regex-check (internal/fulltext package
// docs: an accelerator only, never a replacement for the regex check).
func (s *Store) narrowByFullText(pred query.Predicate) query.Predicate {
	if s.sv == nil {
		return pred
	}
	hint, ok := svHint(pred)
	if !ok {
		return pred
	}
	ids, err := s.sv.CandidateIDs(hint, 10000)
	if err != nil || len(ids) == 0 {
		return pred
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return query.Conjunction(pred, query.Predicate{Field: "genomic_id", Op: query.OpIn, Values: values})
}

func svHint(pred query.Predicate) (string, bool) {
	if pred.And != nil {
		for _, sub := range pred.And {
			if h, ok := svHint(sub); ok {
				return h, ok
			}
		}
		return "", false
	}
	if pred.Field == "structural_variant_comment" && pred.Op == query.OpRegex && pred.Hint != "" {
		return pred.Hint, true
	}
	return "", false
}

// AllSampleIDs implements query.Store.
func (s *Store) AllSampleIDs() ([]string, error) {
	rows, err := s.db.Query("SELECT sample_id FROM clinical")
	if err != nil {
		return nil, fmt.Errorf("all sample ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan sample id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListTrialMatches reads every row of trial_match, ordered the way Sort
// left them, for internal/export to stream out.
func (s *Store) ListTrialMatches() ([]model.TrialMatch, error) {
	rows, err := s.db.Query(`SELECT sample_id, mrn, protocol_no, nct_id, match_level,
		internal_id, code, arm_name, arm_description,
		trial_accrual_status, cancer_type_match, coordinating_center,
		genomic_alteration, match_type, clinical_only,
		genomic_id, true_hugo_symbol, true_protein_change,
		variant_classification, variant_category, cnv_call,
		wildtype, mmr_status, tier, actionability,
		oncotree_primary_diagnosis_name, gender, vital_status, report_date,
		sort_order
		FROM trial_match ORDER BY sample_id, sort_order`)
	if err != nil {
		return nil, fmt.Errorf("list trial matches: %w", err)
	}
	defer rows.Close()

	var out []model.TrialMatch
	for rows.Next() {
		var m model.TrialMatch
		var level string
		if err := rows.Scan(
			&m.SampleID, &m.MRN, &m.ProtocolNo, &m.NCTID, &level,
			&m.InternalID, &m.Code, &m.ArmName, &m.ArmDescription,
			&m.TrialAccrualStatus, &m.CancerTypeMatch, &m.CoordinatingCenter,
			&m.GenomicAlteration, &m.MatchType, &m.ClinicalOnly,
			&m.GenomicID, &m.TrueHugoSymbol, &m.TrueProteinChange,
			&m.VariantClassification, &m.VariantCategory, &m.CNVCall,
			&m.Wildtype, &m.MMRStatus, &m.Tier, &m.Actionability,
			&m.OncotreePrimaryDiagnosisName, &m.Gender, &m.VitalStatus, &m.ReportDate,
			&m.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("scan trial match row: %w", err)
		}
		m.MatchLevel = model.MatchLevel(level)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Clinical implements emit.ClinicalLookup.
func (s *Store) Clinical(sampleID string) (model.ClinicalRecord, bool) {
	row := s.db.QueryRow(`SELECT sample_id, mrn, clinical_id, oncotree_primary_diagnosis_name,
		birth_date, gender, vital_status, ord_physician_name, ord_physician_email, report_date
		FROM clinical WHERE sample_id = ?`, sampleID)

	var r model.ClinicalRecord
	if err := row.Scan(
		&r.SampleID, &r.MRN, &r.ClinicalID, &r.OncotreePrimaryDiagnosisName,
		&r.BirthDate, &r.Gender, &r.VitalStatus, &r.OrdPhysicianName, &r.OrdPhysicianEmail, &r.ReportDate,
	); err != nil {
		return model.ClinicalRecord{}, false
	}
	return r, true
}
