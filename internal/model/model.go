// Package model defines the clinical, genomic, and trial record shapes
// shared across the matching pipeline.
package model

import "time"

// ClinicalRecord is one patient sample's clinical attributes.
type ClinicalRecord struct {
	SampleID                     string
	MRN                          string
	ClinicalID                   string
	OncotreePrimaryDiagnosisName string
	BirthDate                    *time.Time
	Gender                       string
	VitalStatus                  string
	OrdPhysicianName             string
	OrdPhysicianEmail            string
	ReportDate                   *time.Time
}

// GenomicRecord is one variant call on a patient sample.
type GenomicRecord struct {
	SampleID                 string
	ClinicalID               string
	GenomicID                string
	UniqueGenomicID          string
	TrueHugoSymbol           string
	TrueProteinChange        string
	TrueVariantClassification string
	VariantCategory          string
	CNVCall                  string
	Wildtype                 *bool
	TrueTranscriptExon       *int
	MMRStatus                string
	StructuralVariantComment string
	Tier                     *int
	Actionability            string
}

// StatusEntry is one entry of a trial's `_summary.status` list.
type StatusEntry struct {
	Value string
}

// TrialSummary is the `_summary` block of a trial document.
type TrialSummary struct {
	TumorTypes          []string
	CoordinatingCenter  string
	Status              []StatusEntry
}

// DoseLevel is the innermost treatment level of a trial.
type DoseLevel struct {
	InternalID string
	Code       string
	Suspended  bool
	Match      []MatchClause
}

// Arm is the middle treatment level of a trial.
type Arm struct {
	InternalID  string
	Code        string
	Name        string
	Description string
	Suspended   bool
	Match       []MatchClause
	DoseLevels  []DoseLevel
}

// Step is the outermost treatment level of a trial.
type Step struct {
	InternalID string
	Code       string
	Match      []MatchClause
	Arms       []Arm
}

// Trial is a full trial document as loaded from the store.
type Trial struct {
	ProtocolNo string
	NCTID      string
	Summary    TrialSummary
	Steps      []Step
}

// MatchLevel identifies which treatment level a match record was produced for.
type MatchLevel string

const (
	LevelStep  MatchLevel = "step"
	LevelArm   MatchLevel = "arm"
	LevelDose  MatchLevel = "dose"
)

// MatchClause is one node of a trial's match declaration: exactly one of
// And, Or, Clinical, or Genomic is populated, mirroring the single-key-dict
// shape of the original YAML grammar (spec.md §3 "Match clause grammar").
type MatchClause struct {
	And      []MatchClause
	Or       []MatchClause
	Clinical map[string]any
	Genomic  map[string]any
}

// Kind reports which variant of the clause is populated.
func (m MatchClause) Kind() string {
	switch {
	case m.And != nil:
		return "and"
	case m.Or != nil:
		return "or"
	case m.Clinical != nil:
		return "clinical"
	case m.Genomic != nil:
		return "genomic"
	default:
		return ""
	}
}

// TrialMatch is one emitted patient-trial match record.
type TrialMatch struct {
	SampleID            string
	MRN                 string
	ProtocolNo          string
	NCTID               string
	MatchLevel          MatchLevel
	InternalID          string
	Code                string
	ArmName             string
	ArmDescription      string
	TrialAccrualStatus  string
	CancerTypeMatch     string
	CoordinatingCenter  string
	GenomicAlteration   string
	MatchType           string // "variant", "gene", or "" (missing)
	ClinicalOnly        bool
	GenomicID           string
	ClinicalIDCopy      string
	TrueHugoSymbol      string
	TrueProteinChange   string
	VariantClassification string
	VariantCategory     string
	CNVCall             string
	Wildtype            *bool
	MMRStatus           string
	Tier                *int
	Actionability        string
	OncotreePrimaryDiagnosisName string
	Gender              string
	VitalStatus         string
	ReportDate          *time.Time

	// SortKey and SortOrder are populated by internal/sortmatch.
	SortKey   []int
	SortOrder int
}
