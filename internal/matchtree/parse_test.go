package matchtree

import "testing"

func TestParseClausesPreservesDeclarationOrder(t *testing.T) {
	data := []byte(`
- clinical:
    gender: Female
- genomic:
    hugo_symbol: BRAF
- and:
  - clinical:
      age_numerical: ">=18"
  - genomic:
      hugo_symbol: KRAS
`)
	clauses, err := ParseClauses(data)
	if err != nil {
		t.Fatalf("ParseClauses: %v", err)
	}
	if len(clauses) != 3 {
		t.Fatalf("expected 3 top-level clauses, got %d", len(clauses))
	}
	if clauses[0].Kind() != "clinical" || clauses[1].Kind() != "genomic" || clauses[2].Kind() != "and" {
		t.Errorf("unexpected clause kinds: %v %v %v", clauses[0].Kind(), clauses[1].Kind(), clauses[2].Kind())
	}
	and := clauses[2]
	if len(and.And) != 2 || and.And[0].Kind() != "clinical" || and.And[1].Kind() != "genomic" {
		t.Errorf("nested and-clause order not preserved: %#v", and)
	}
}

func TestParseClausesOrNesting(t *testing.T) {
	data := []byte(`
- or:
  - clinical:
      gender: Female
  - clinical:
      gender: Male
`)
	clauses, err := ParseClauses(data)
	if err != nil {
		t.Fatalf("ParseClauses: %v", err)
	}
	if len(clauses) != 1 || clauses[0].Kind() != "or" || len(clauses[0].Or) != 2 {
		t.Fatalf("expected one or-clause with two children, got %#v", clauses)
	}
}

func TestParseClausesInvalidYAML(t *testing.T) {
	_, err := ParseClauses([]byte("not: [valid"))
	if err == nil {
		t.Fatalf("expected a parse error for malformed YAML")
	}
}
