package loader

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"
	"gopkg.in/yaml.v3"

	"github.com/dfci/matchengine/internal/fulltext"
	"github.com/dfci/matchengine/internal/model"
)

// IndexStructuralVariants populates a full-text index over every genomic
// record's structural_variant_comment, so the store's regex ground truth
// can be pre-narrowed (internal/fulltext). Records with no comment are
// skipped; IndexComment is itself a no-op for an empty string.
func IndexStructuralVariants(idx *fulltext.Index, records []model.GenomicRecord) error {
	for _, r := range records {
		if r.StructuralVariantComment == "" {
			continue
		}
		if err := idx.IndexComment(r.GenomicID, r.StructuralVariantComment); err != nil {
			return fmt.Errorf("index structural variant comment for %s: %w", r.GenomicID, err)
		}
	}
	return nil
}

// IngestClinical batch-inserts clinical records via the store's
// underlying *sql.DB, using the Appender API the way internal/store/write.go
// writes trial_match.
func IngestClinical(db *sql.DB, records []model.ClinicalRecord) error {
	if len(records) == 0 {
		return nil
	}
	return withAppender(db, "clinical", func(appender *goduckdb.Appender) error {
		for _, r := range records {
			if err := appender.AppendRow(
				r.SampleID, r.MRN, r.ClinicalID, r.OncotreePrimaryDiagnosisName,
				r.BirthDate, r.Gender, r.VitalStatus,
				r.OrdPhysicianName, r.OrdPhysicianEmail, r.ReportDate,
			); err != nil {
				return fmt.Errorf("append clinical row %s: %w", r.SampleID, err)
			}
		}
		return nil
	})
}

// IngestGenomic batch-inserts genomic records.
func IngestGenomic(db *sql.DB, records []model.GenomicRecord) error {
	if len(records) == 0 {
		return nil
	}
	return withAppender(db, "genomic", func(appender *goduckdb.Appender) error {
		for _, r := range records {
			if err := appender.AppendRow(
				r.SampleID, r.ClinicalID, r.GenomicID, r.UniqueGenomicID,
				r.TrueHugoSymbol, r.TrueProteinChange, r.TrueVariantClassification,
				r.VariantCategory, r.CNVCall, r.Wildtype, r.TrueTranscriptExon, r.MMRStatus,
				r.StructuralVariantComment, r.Tier, r.Actionability,
			); err != nil {
				return fmt.Errorf("append genomic row %s: %w", r.SampleID, err)
			}
		}
		return nil
	})
}

// IngestTrials upserts trial documents, storing each as serialized YAML so
// internal/matchtree can re-parse it without a second document format.
func IngestTrials(db *sql.DB, trials []model.Trial) error {
	for _, t := range trials {
		doc, err := yaml.Marshal(trialDoc(t))
		if err != nil {
			return fmt.Errorf("serialize trial %s: %w", t.ProtocolNo, err)
		}
		if _, err := db.Exec(
			`INSERT OR REPLACE INTO trial (protocol_no, nct_id, document) VALUES (?, ?, ?)`,
			t.ProtocolNo, t.NCTID, string(doc),
		); err != nil {
			return fmt.Errorf("insert trial %s: %w", t.ProtocolNo, err)
		}
	}
	return nil
}

// LoadTrialsFromStore reads every trial document back out of the trial
// table, re-parsing the YAML written by IngestTrials.
func LoadTrialsFromStore(db *sql.DB) ([]model.Trial, error) {
	rows, err := db.Query(`SELECT document FROM trial`)
	if err != nil {
		return nil, fmt.Errorf("query trial documents: %w", err)
	}
	defer rows.Close()

	var trials []model.Trial
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan trial document: %w", err)
		}
		t, err := parseTrialDoc([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("parse stored trial document: %w", err)
		}
		trials = append(trials, t)
	}
	return trials, rows.Err()
}

func withAppender(db *sql.DB, table string, fn func(*goduckdb.Appender) error) error {
	conn, err := db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// trialDoc is a re-exported wire shape for round-tripping a model.Trial
// back to YAML for storage in the trial table's document column.
func trialDoc(t model.Trial) map[string]any {
	steps := make([]map[string]any, 0, len(t.Steps))
	for _, s := range t.Steps {
		arms := make([]map[string]any, 0, len(s.Arms))
		for _, a := range s.Arms {
			doses := make([]map[string]any, 0, len(a.DoseLevels))
			for _, d := range a.DoseLevels {
				doses = append(doses, map[string]any{
					"internal_id": d.InternalID,
					"code":        d.Code,
					"suspended":   d.Suspended,
					"match":       clausesToRaw(d.Match),
				})
			}
			arms = append(arms, map[string]any{
				"internal_id": a.InternalID,
				"code":        a.Code,
				"name":        a.Name,
				"description": a.Description,
				"suspended":   a.Suspended,
				"match":       clausesToRaw(a.Match),
				"dose_levels": doses,
			})
		}
		steps = append(steps, map[string]any{
			"internal_id": s.InternalID,
			"code":        s.Code,
			"match":       clausesToRaw(s.Match),
			"arms":        arms,
		})
	}

	statuses := make([]string, 0, len(t.Summary.Status))
	for _, s := range t.Summary.Status {
		statuses = append(statuses, s.Value)
	}

	return map[string]any{
		"protocol_no": t.ProtocolNo,
		"nct_id":      t.NCTID,
		"_summary": map[string]any{
			"tumor_types":         t.Summary.TumorTypes,
			"coordinating_center": t.Summary.CoordinatingCenter,
			"status":              statuses,
		},
		"steps": steps,
	}
}

func clausesToRaw(clauses []model.MatchClause) []map[string]any {
	out := make([]map[string]any, 0, len(clauses))
	for _, c := range clauses {
		switch c.Kind() {
		case "and":
			out = append(out, map[string]any{"and": clausesToRaw(c.And)})
		case "or":
			out = append(out, map[string]any{"or": clausesToRaw(c.Or)})
		case "clinical":
			out = append(out, map[string]any{"clinical": c.Clinical})
		case "genomic":
			out = append(out, map[string]any{"genomic": c.Genomic})
		}
	}
	return out
}
