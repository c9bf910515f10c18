// Package emit turns surviving (sample, evidence) pairs from the traverser
// into fully annotated model.TrialMatch records, mirroring _annotate_match /
// find_trial_matches in the original matchengine (spec.md §4.9).
package emit

import (
	"strings"

	"github.com/dfci/matchengine/internal/matchtree"
	"github.com/dfci/matchengine/internal/model"
	"github.com/dfci/matchengine/internal/traverse"
)

// ClinicalLookup resolves a sample_id to its clinical record, used to copy
// mrn and other clinical fields onto the emitted match.
type ClinicalLookup interface {
	Clinical(sampleID string) (model.ClinicalRecord, bool)
}

// LevelInfo carries the per-treatment-node metadata the emitter needs that
// isn't already on the trial or clinical record.
type LevelInfo struct {
	InternalID      string
	Code            string
	ArmName         string
	ArmDescription  string
	LevelSuspended  bool
	ArmSuspended    bool
}

// Emit builds one model.TrialMatch per evidence record.
func Emit(trial model.Trial, ref matchtree.LevelRef, level LevelInfo, clinical ClinicalLookup, evidence []traverse.Evidence) []model.TrialMatch {
	out := make([]model.TrialMatch, 0, len(evidence))

	status := accrualStatus(trial, level)
	cancerType := cancerTypeMatch(trial)
	center := coordinatingCenter(trial)

	for _, ev := range evidence {
		m := model.TrialMatch{
			SampleID:           ev.SampleID,
			ProtocolNo:         trial.ProtocolNo,
			NCTID:              trial.NCTID,
			MatchLevel:         ref.Level,
			InternalID:         level.InternalID,
			Code:               level.Code,
			ArmName:            level.ArmName,
			ArmDescription:     level.ArmDescription,
			TrialAccrualStatus: status,
			CancerTypeMatch:    cancerType,
			CoordinatingCenter: center,
			GenomicAlteration:  ev.Alteration,
			ClinicalOnly:       ev.ClinicalOnly,
			MatchType:          matchType(ev),
		}

		if cr, ok := clinical.Clinical(ev.SampleID); ok {
			m.MRN = cr.MRN
			m.ClinicalIDCopy = cr.ClinicalID
			m.OncotreePrimaryDiagnosisName = cr.OncotreePrimaryDiagnosisName
			m.Gender = cr.Gender
			m.VitalStatus = cr.VitalStatus
			m.ReportDate = cr.ReportDate
		}

		if ev.Genomic != nil {
			g := ev.Genomic
			m.GenomicID = g.GenomicID
			m.TrueHugoSymbol = g.TrueHugoSymbol
			m.TrueProteinChange = g.TrueProteinChange
			m.VariantClassification = g.TrueVariantClassification
			m.VariantCategory = g.VariantCategory
			m.CNVCall = g.CNVCall
			m.Wildtype = g.Wildtype
			m.MMRStatus = g.MMRStatus
			m.Tier = g.Tier
			m.Actionability = g.Actionability
		}

		out = append(out, m)
	}

	return out
}

// accrualStatus mirrors spec.md §4.9: "open" by default, including when the
// trial declares no status at all; it only flips to "closed" when a declared
// status isn't "open to accrual", or a per-level suspension flag forces it.
func accrualStatus(trial model.Trial, level LevelInfo) string {
	if level.LevelSuspended || level.ArmSuspended {
		return "closed"
	}
	if len(trial.Summary.Status) == 0 {
		return "open"
	}
	if !strings.EqualFold(trial.Summary.Status[0].Value, "open to accrual") {
		return "closed"
	}
	return "open"
}

func cancerTypeMatch(trial model.Trial) string {
	tumors := trial.Summary.TumorTypes
	if len(tumors) == 0 {
		return "unknown"
	}
	for _, t := range tumors {
		switch t {
		case "_SOLID_", "All Solid Tumors":
			return "all_solid"
		case "_LIQUID_", "All Liquid Tumors":
			return "all_liquid"
		}
	}
	return "specific"
}

func coordinatingCenter(trial model.Trial) string {
	if trial.Summary.CoordinatingCenter == "" {
		return "unknown"
	}
	return trial.Summary.CoordinatingCenter
}

func matchType(ev traverse.Evidence) string {
	if ev.ClinicalOnly {
		return ""
	}
	if ev.Genomic == nil {
		return ""
	}
	if ev.Genomic.TrueProteinChange != "" {
		return "variant"
	}
	if ev.Genomic.TrueHugoSymbol != "" {
		return "gene"
	}
	return ""
}
