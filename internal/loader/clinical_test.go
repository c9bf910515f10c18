package loader

import (
	"testing"

	"github.com/dfci/matchengine/internal/matcherr"
)

func TestParseDateTriesLayoutsInOrder(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2016-11-03", "2016-11-03"},
		{"11/03/2016", "2016-11-03"},
		{"2016-11-03T00:00:00Z", "2016-11-03"},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in)
		if err != nil {
			t.Fatalf("parseDate(%q): %v", tt.in, err)
		}
		if got == nil || got.Format("2006-01-02") != tt.want {
			t.Errorf("parseDate(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDateEmptyIsNil(t *testing.T) {
	got, err := parseDate("")
	if err != nil || got != nil {
		t.Errorf("parseDate(\"\") = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestParseDateUnrecognizedFormatErrors(t *testing.T) {
	if _, err := parseDate("not-a-date"); err == nil {
		t.Errorf("expected an error for an unrecognized date format")
	}
}

func TestLoadClinicalBasicRow(t *testing.T) {
	path := writeTempFile(t, "clinical.tsv",
		"sample_id\tmrn\tclinical_id\tgender\tbirth_date\n"+
			"s1\tMRN1\tc1\tFemale\t1998-11-03\n")

	records, warnings, err := LoadClinical(path)
	if err != nil {
		t.Fatalf("LoadClinical: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.SampleID != "s1" || rec.MRN != "MRN1" || rec.Gender != "Female" {
		t.Errorf("got %+v", rec)
	}
	if rec.BirthDate == nil || rec.BirthDate.Format("2006-01-02") != "1998-11-03" {
		t.Errorf("expected birth_date to parse, got %v", rec.BirthDate)
	}
}

func TestLoadClinicalDefaultsClinicalIDToSampleID(t *testing.T) {
	path := writeTempFile(t, "clinical.tsv", "sample_id\tgender\ns1\tFemale\n")

	records, _, err := LoadClinical(path)
	if err != nil {
		t.Fatalf("LoadClinical: %v", err)
	}
	if records[0].ClinicalID != "s1" {
		t.Errorf("expected clinical_id to default to sample_id, got %q", records[0].ClinicalID)
	}
}

func TestLoadClinicalBadDateIsWarningNotAbort(t *testing.T) {
	path := writeTempFile(t, "clinical.tsv",
		"sample_id\tbirth_date\n"+
			"s1\tnot-a-date\n"+
			"s2\t1990-01-01\n")

	records, warnings, err := LoadClinical(path)
	if err != nil {
		t.Fatalf("LoadClinical should not abort on a bad date: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected both rows to load, got %d", len(records))
	}
	if records[0].BirthDate != nil {
		t.Errorf("expected an unparsed birth_date to be left nil")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if !matcherr.Is(warnings[0], matcherr.DateParseError) {
		t.Errorf("expected a DateParseError warning, got %v", warnings[0])
	}
}
