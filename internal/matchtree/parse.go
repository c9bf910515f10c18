package matchtree

import (
	"fmt"

	"github.com/dfci/matchengine/internal/model"
	"gopkg.in/yaml.v3"
)

// rawClause is the wire shape of a single-key match clause, decoded before
// being folded into model.MatchClause.
type rawClause struct {
	And      []rawClause    `yaml:"and"`
	Or       []rawClause    `yaml:"or"`
	Clinical map[string]any `yaml:"clinical"`
	Genomic  map[string]any `yaml:"genomic"`
}

// ParseClauses decodes a treatment node's `match` YAML block into the
// ordered list of model.MatchClause the Tree Builder consumes. Declaration
// order is preserved (required by the traverser's cross-join rules,
// spec.md §4.5).
func ParseClauses(data []byte) ([]model.MatchClause, error) {
	var raws []rawClause
	if err := yaml.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parse match clauses: %w", err)
	}
	out := make([]model.MatchClause, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.toClause())
	}
	return out, nil
}

func (r rawClause) toClause() model.MatchClause {
	switch {
	case r.And != nil:
		children := make([]model.MatchClause, 0, len(r.And))
		for _, c := range r.And {
			children = append(children, c.toClause())
		}
		return model.MatchClause{And: children}
	case r.Or != nil:
		children := make([]model.MatchClause, 0, len(r.Or))
		for _, c := range r.Or {
			children = append(children, c.toClause())
		}
		return model.MatchClause{Or: children}
	case r.Clinical != nil:
		return model.MatchClause{Clinical: r.Clinical}
	case r.Genomic != nil:
		return model.MatchClause{Genomic: r.Genomic}
	default:
		return model.MatchClause{}
	}
}
