package loader

import "testing"

func TestLoadGenomicBasicRow(t *testing.T) {
	path := writeTempFile(t, "genomic.tsv",
		"sample_id\tclinical_id\tgenomic_id\ttrue_hugo_symbol\ttrue_protein_change\twildtype\n"+
			"s1\tc1\tg1\tBRAF\tp.V600E\tfalse\n")

	records, err := LoadGenomic(path, nil)
	if err != nil {
		t.Fatalf("LoadGenomic: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.SampleID != "s1" || rec.TrueHugoSymbol != "BRAF" || rec.TrueProteinChange != "p.V600E" {
		t.Errorf("got %+v", rec)
	}
	if rec.Wildtype == nil || *rec.Wildtype != false {
		t.Errorf("expected wildtype=false, got %v", rec.Wildtype)
	}
}

func TestLoadGenomicBackfillsClinicalIDFromSampleMap(t *testing.T) {
	path := writeTempFile(t, "genomic.tsv",
		"sample_id\tgenomic_id\ttrue_hugo_symbol\n"+
			"s1\tg1\tBRAF\n")

	records, err := LoadGenomic(path, map[string]string{"s1": "c1"})
	if err != nil {
		t.Fatalf("LoadGenomic: %v", err)
	}
	if records[0].ClinicalID != "c1" {
		t.Errorf("expected clinical_id to be backfilled from the sample map, got %q", records[0].ClinicalID)
	}
}

func TestLoadGenomicExplicitClinicalIDWins(t *testing.T) {
	path := writeTempFile(t, "genomic.tsv",
		"sample_id\tclinical_id\tgenomic_id\n"+
			"s1\texplicit\tg1\n")

	records, err := LoadGenomic(path, map[string]string{"s1": "from-map"})
	if err != nil {
		t.Fatalf("LoadGenomic: %v", err)
	}
	if records[0].ClinicalID != "explicit" {
		t.Errorf("expected the row's own clinical_id to win, got %q", records[0].ClinicalID)
	}
}

func TestLoadGenomicDefaultsUniqueGenomicID(t *testing.T) {
	path := writeTempFile(t, "genomic.tsv", "sample_id\tgenomic_id\ns1\tg1\n")

	records, err := LoadGenomic(path, nil)
	if err != nil {
		t.Fatalf("LoadGenomic: %v", err)
	}
	if records[0].UniqueGenomicID != "s1:g1" {
		t.Errorf("expected a default unique_genomic_id of sample:genomic, got %q", records[0].UniqueGenomicID)
	}
}

func TestLoadGenomicParsesTierAndExon(t *testing.T) {
	path := writeTempFile(t, "genomic.tsv",
		"sample_id\tgenomic_id\ttier\ttrue_transcript_exon\n"+
			"s1\tg1\t1\t4\n")

	records, err := LoadGenomic(path, nil)
	if err != nil {
		t.Fatalf("LoadGenomic: %v", err)
	}
	rec := records[0]
	if rec.Tier == nil || *rec.Tier != 1 {
		t.Errorf("expected tier=1, got %v", rec.Tier)
	}
	if rec.TrueTranscriptExon == nil || *rec.TrueTranscriptExon != 4 {
		t.Errorf("expected true_transcript_exon=4, got %v", rec.TrueTranscriptExon)
	}
}

func TestLoadGenomicBadTierErrors(t *testing.T) {
	path := writeTempFile(t, "genomic.tsv", "sample_id\tgenomic_id\ttier\ns1\tg1\tnot-a-number\n")

	if _, err := LoadGenomic(path, nil); err == nil {
		t.Errorf("expected an error for a non-numeric tier")
	}
}
