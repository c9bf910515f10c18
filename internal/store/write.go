package store

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/dfci/matchengine/internal/model"
)

// ReplaceTrialMatches truncates trial_match and re-inserts matches in a
// single sequence, per spec.md §5: "written in batches at the end under a
// single truncate-then-insert sequence (not concurrent with evaluation)".
// Uses the Appender API the way the teacher's WriteVariantResults does.
func (s *Store) ReplaceTrialMatches(matches []model.TrialMatch) error {
	if _, err := s.db.Exec("DELETE FROM trial_match"); err != nil {
		return fmt.Errorf("truncate trial_match: %w", err)
	}
	if len(matches) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "trial_match")
		return err
	}); err != nil {
		return fmt.Errorf("create trial_match appender: %w", err)
	}
	defer appender.Close()

	for _, m := range matches {
		if err := appender.AppendRow(
			m.SampleID, m.MRN, m.ProtocolNo, m.NCTID, string(m.MatchLevel),
			m.InternalID, m.Code, m.ArmName, m.ArmDescription,
			m.TrialAccrualStatus, m.CancerTypeMatch, m.CoordinatingCenter,
			m.GenomicAlteration, m.MatchType, m.ClinicalOnly,
			m.GenomicID, m.TrueHugoSymbol, m.TrueProteinChange,
			m.VariantClassification, m.VariantCategory, m.CNVCall,
			m.Wildtype, m.MMRStatus, m.Tier, m.Actionability,
			m.OncotreePrimaryDiagnosisName, m.Gender, m.VitalStatus, m.ReportDate,
			m.SortOrder,
		); err != nil {
			return fmt.Errorf("append trial match row: %w", err)
		}
	}

	return appender.Flush()
}
