package traverse

import (
	"testing"

	"github.com/dfci/matchengine/internal/matchtree"
	"github.com/dfci/matchengine/internal/model"
)

// These fixtures pin down the ancestor-walk rule from spec.md §4.8 rule 1
// for the cases the design notes flag as ambiguous: a clinical leaf sitting
// under a root-level `or` alongside a genomic-bearing sibling.
func TestClinicalOnlyLeaves(t *testing.T) {
	cases := []struct {
		name     string
		clauses  []model.MatchClause
		wantOnly map[string]bool // criteria value of the clinical leaf -> expected clinical-only
	}{
		{
			name: "pure clinical tree is clinical-only",
			clauses: []model.MatchClause{
				{Clinical: map[string]any{"gender": "Female"}},
			},
			wantOnly: map[string]bool{"Female": true},
		},
		{
			name: "clinical leaf conjoined with a genomic leaf is joined",
			clauses: []model.MatchClause{
				{And: []model.MatchClause{
					{Clinical: map[string]any{"gender": "Female"}},
					{Genomic: map[string]any{"hugo_symbol": "BRAF"}},
				}},
			},
			wantOnly: map[string]bool{"Female": false},
		},
		{
			name: "clinical leaf under a root-level or with a genomic sibling elsewhere",
			clauses: []model.MatchClause{
				{Or: []model.MatchClause{
					{Clinical: map[string]any{"gender": "Female"}},
					{Genomic: map[string]any{"hugo_symbol": "BRAF"}},
				}},
			},
			wantOnly: map[string]bool{"Female": false},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := matchtree.Build(tc.clauses)
			only := clinicalOnlyLeaves(tree)
			for idx, n := range tree.Nodes {
				if n.Kind != matchtree.KindClinical {
					continue
				}
				gender, _ := n.Criteria["gender"].(string)
				want, ok := tc.wantOnly[gender]
				if !ok {
					continue
				}
				if only[idx] != want {
					t.Errorf("clinical leaf %q: clinical-only = %v, want %v", gender, only[idx], want)
				}
			}
		})
	}
}
