package loader

import (
	"fmt"
	"io"
	"time"

	"github.com/dfci/matchengine/internal/matcherr"
	"github.com/dfci/matchengine/internal/model"
)

// dateLayouts are the formats accepted for birth_date/report_date columns,
// tried in order. Values that match none of them are a DateParseError
// (spec.md §7): the load continues and the field is left unset rather
// than aborting the whole file.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "2006-01-02T15:04:05Z07:00"}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	var firstErr error
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		} else if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// LoadClinical reads tab-delimited clinical records from path. Rows whose
// date fields fail to parse are kept (with that field left unset) and a
// DateParseError is appended to the returned warning list rather than
// aborting the load, per spec.md §7.
func LoadClinical(path string) ([]model.ClinicalRecord, []error, error) {
	cr, err := openColumnReader(path, "\t")
	if err != nil {
		return nil, nil, err
	}
	defer cr.Close()

	var records []model.ClinicalRecord
	var warnings []error
	for {
		row, err := cr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, warnings, fmt.Errorf("read clinical row: %w", err)
		}

		rec := model.ClinicalRecord{
			SampleID:                     row["sample_id"],
			MRN:                          row["mrn"],
			ClinicalID:                   row["clinical_id"],
			OncotreePrimaryDiagnosisName: row["oncotree_primary_diagnosis_name"],
			Gender:                       row["gender"],
			VitalStatus:                  row["vital_status"],
			OrdPhysicianName:             row["ord_physician_name"],
			OrdPhysicianEmail:            row["ord_physician_email"],
		}

		if bd, err := parseDate(row["birth_date"]); err != nil {
			warnings = append(warnings, matcherr.New(matcherr.DateParseError, rec.SampleID, fmt.Errorf("birth_date %q: %w", row["birth_date"], err)))
		} else {
			rec.BirthDate = bd
		}

		if rd, err := parseDate(row["report_date"]); err != nil {
			warnings = append(warnings, matcherr.New(matcherr.DateParseError, rec.SampleID, fmt.Errorf("report_date %q: %w", row["report_date"], err)))
		} else {
			rec.ReportDate = rd
		}

		if rec.ClinicalID == "" {
			rec.ClinicalID = rec.SampleID
		}

		records = append(records, rec)
	}
	return records, warnings, nil
}
