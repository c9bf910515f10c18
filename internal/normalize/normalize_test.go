package normalize

import "testing"

func TestFieldTranslatesKnownKeysCaseInsensitively(t *testing.T) {
	tests := map[string]string{
		"age_numerical":   "birth_date",
		"AGE_NUMERICAL":   "birth_date",
		"hugo_symbol":     "true_hugo_symbol",
		"ms_status":       "mmr_status",
		"mmr_status":      "mmr_status",
		"not_a_real_key":  "not_a_real_key",
	}
	for in, want := range tests {
		if got := Field(in); got != want {
			t.Errorf("Field(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValueTranslatesThroughTheInternalField(t *testing.T) {
	tests := []struct {
		field, value, want string
	}{
		{"variant_category", "Mutation", "MUTATION"},
		{"variant_category", "Structural Variation", "SV"},
		{"cnv_call", "High Amplification", "High level amplification"},
		{"mmr_status", "MSI-H", "Deficient (MMR-D / MSI-H)"},
		{"ms_status", "MSS", "Proficient (MMR-P / MSS)"},
		{"gender", "Female", "Female"}, // no value map for this field
	}
	for _, tt := range tests {
		if got := Value(tt.field, tt.value); got != tt.want {
			t.Errorf("Value(%q, %q) = %q, want %q", tt.field, tt.value, got, tt.want)
		}
	}
}

func TestValuePreservesNegationMarker(t *testing.T) {
	got := Value("mmr_status", "!MSI-H")
	want := "!Deficient (MMR-D / MSI-H)"
	if got != want {
		t.Errorf("Value(!MSI-H) = %q, want %q", got, want)
	}
}

func TestValueUnmappedPassesThrough(t *testing.T) {
	if got := Value("variant_category", "Something Unrecognized"); got != "Something Unrecognized" {
		t.Errorf("expected unmapped values to pass through unchanged, got %q", got)
	}
}
