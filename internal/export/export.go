// Package export writes trial_match records out to CSV or JSON, the
// counterpart to internal/loader (spec.md §1 "out of scope... export to
// CSV/JSON"). The column-list-plus-row-builder shape follows the
// teacher's internal/output.TabWriter.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dfci/matchengine/internal/model"
)

// columns is the fixed CSV/JSON-object key order.
var columns = []string{
	"sample_id", "mrn", "protocol_no", "nct_id", "match_level",
	"internal_id", "code", "arm_name", "arm_description",
	"trial_accrual_status", "cancer_type_match", "coordinating_center",
	"genomic_alteration", "match_type", "clinical_only",
	"genomic_id", "true_hugo_symbol", "true_protein_change",
	"variant_classification", "variant_category", "cnv_call",
	"wildtype", "mmr_status", "tier", "actionability",
	"oncotree_primary_diagnosis_name", "gender", "vital_status", "report_date",
	"sort_order",
}

// CSVWriter writes trial matches as tab-delimited-free, comma-delimited CSV.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter creates a CSV writer and writes the header row immediately.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w)}
	if err := cw.w.Write(columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return cw, nil
}

// Write appends one match as a CSV row.
func (cw *CSVWriter) Write(m model.TrialMatch) error {
	return cw.w.Write(rowOf(m))
}

// Flush flushes buffered CSV output.
func (cw *CSVWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

func rowOf(m model.TrialMatch) []string {
	return []string{
		m.SampleID, m.MRN, m.ProtocolNo, m.NCTID, string(m.MatchLevel),
		m.InternalID, m.Code, m.ArmName, m.ArmDescription,
		m.TrialAccrualStatus, m.CancerTypeMatch, m.CoordinatingCenter,
		m.GenomicAlteration, m.MatchType, strconv.FormatBool(m.ClinicalOnly),
		m.GenomicID, m.TrueHugoSymbol, m.TrueProteinChange,
		m.VariantClassification, m.VariantCategory, m.CNVCall,
		optionalBool(m.Wildtype), m.MMRStatus, optionalInt(m.Tier), m.Actionability,
		m.OncotreePrimaryDiagnosisName, m.Gender, m.VitalStatus, optionalDate(m.ReportDate),
		strconv.Itoa(m.SortOrder),
	}
}

func optionalBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func optionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// jsonMatch is the wire shape for JSON export, keeping pointer fields as
// nullable JSON values instead of stringifying them.
type jsonMatch struct {
	SampleID                     string     `json:"sample_id"`
	MRN                          string     `json:"mrn"`
	ProtocolNo                   string     `json:"protocol_no"`
	NCTID                        string     `json:"nct_id"`
	MatchLevel                   string     `json:"match_level"`
	InternalID                   string     `json:"internal_id"`
	Code                         string     `json:"code"`
	ArmName                      string     `json:"arm_name"`
	ArmDescription               string     `json:"arm_description"`
	TrialAccrualStatus           string     `json:"trial_accrual_status"`
	CancerTypeMatch              string     `json:"cancer_type_match"`
	CoordinatingCenter           string     `json:"coordinating_center"`
	GenomicAlteration            string     `json:"genomic_alteration"`
	MatchType                    string     `json:"match_type"`
	ClinicalOnly                 bool       `json:"clinical_only"`
	GenomicID                    string     `json:"genomic_id"`
	TrueHugoSymbol               string     `json:"true_hugo_symbol"`
	TrueProteinChange            string     `json:"true_protein_change"`
	VariantClassification        string     `json:"variant_classification"`
	VariantCategory              string     `json:"variant_category"`
	CNVCall                      string     `json:"cnv_call"`
	Wildtype                     *bool      `json:"wildtype"`
	MMRStatus                    string     `json:"mmr_status"`
	Tier                         *int       `json:"tier"`
	Actionability                string     `json:"actionability"`
	OncotreePrimaryDiagnosisName string     `json:"oncotree_primary_diagnosis_name"`
	Gender                       string     `json:"gender"`
	VitalStatus                  string     `json:"vital_status"`
	ReportDate                   *time.Time `json:"report_date"`
	SortOrder                    int        `json:"sort_order"`
}

func toJSONMatch(m model.TrialMatch) jsonMatch {
	return jsonMatch{
		SampleID: m.SampleID, MRN: m.MRN, ProtocolNo: m.ProtocolNo, NCTID: m.NCTID,
		MatchLevel: string(m.MatchLevel), InternalID: m.InternalID, Code: m.Code,
		ArmName: m.ArmName, ArmDescription: m.ArmDescription,
		TrialAccrualStatus: m.TrialAccrualStatus, CancerTypeMatch: m.CancerTypeMatch,
		CoordinatingCenter: m.CoordinatingCenter, GenomicAlteration: m.GenomicAlteration,
		MatchType: m.MatchType, ClinicalOnly: m.ClinicalOnly,
		GenomicID: m.GenomicID, TrueHugoSymbol: m.TrueHugoSymbol, TrueProteinChange: m.TrueProteinChange,
		VariantClassification: m.VariantClassification, VariantCategory: m.VariantCategory, CNVCall: m.CNVCall,
		Wildtype: m.Wildtype, MMRStatus: m.MMRStatus, Tier: m.Tier, Actionability: m.Actionability,
		OncotreePrimaryDiagnosisName: m.OncotreePrimaryDiagnosisName, Gender: m.Gender, VitalStatus: m.VitalStatus,
		ReportDate: m.ReportDate, SortOrder: m.SortOrder,
	}
}

// JSONWriter writes trial matches as a single JSON array, streamed one
// element at a time rather than marshaling the whole slice up front.
type JSONWriter struct {
	w     *bufio.Writer
	first bool
}

// NewJSONWriter creates a JSON array writer and emits the opening bracket.
func NewJSONWriter(w io.Writer) (*JSONWriter, error) {
	jw := &JSONWriter{w: bufio.NewWriter(w), first: true}
	if _, err := jw.w.WriteString("["); err != nil {
		return nil, fmt.Errorf("write json array open: %w", err)
	}
	return jw, nil
}

// Write appends one match as a JSON array element.
func (jw *JSONWriter) Write(m model.TrialMatch) error {
	if !jw.first {
		if _, err := jw.w.WriteString(","); err != nil {
			return err
		}
	}
	jw.first = false

	enc, err := json.Marshal(toJSONMatch(m))
	if err != nil {
		return fmt.Errorf("marshal trial match: %w", err)
	}
	_, err = jw.w.Write(enc)
	return err
}

// Close writes the closing bracket and flushes buffered output.
func (jw *JSONWriter) Close() error {
	if _, err := jw.w.WriteString("]"); err != nil {
		return err
	}
	return jw.w.Flush()
}
