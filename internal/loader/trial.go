package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dfci/matchengine/internal/model"
)

// rawTrial is the wire shape of a full trial document: protocol_no,
// nct_id, a _summary block, and nested step -> arm -> dose_level
// treatment nodes, each optionally carrying a `match` block (decoded in the
// same pass into rawClause below, not through matchtree.ParseClauses).
type rawTrial struct {
	ProtocolNo string `yaml:"protocol_no"`
	NCTID      string `yaml:"nct_id"`
	Summary    struct {
		TumorTypes         []string `yaml:"tumor_types"`
		CoordinatingCenter string   `yaml:"coordinating_center"`
		Status             []string `yaml:"status"`
	} `yaml:"_summary"`
	Steps []rawStep `yaml:"steps"`
}

type rawStep struct {
	InternalID string      `yaml:"internal_id"`
	Code       string      `yaml:"code"`
	Match      []rawClause `yaml:"match"`
	Arms       []rawArm    `yaml:"arms"`
}

type rawArm struct {
	InternalID  string         `yaml:"internal_id"`
	Code        string         `yaml:"code"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Suspended   bool           `yaml:"suspended"`
	Match       []rawClause    `yaml:"match"`
	DoseLevels  []rawDoseLevel `yaml:"dose_levels"`
}

type rawDoseLevel struct {
	InternalID string      `yaml:"internal_id"`
	Code       string      `yaml:"code"`
	Suspended  bool        `yaml:"suspended"`
	Match      []rawClause `yaml:"match"`
}

// rawClause mirrors matchtree's unexported wire shape for a single match
// clause; duplicated here since a trial document is parsed whole, not
// re-marshaled per treatment node.
type rawClause struct {
	And      []rawClause    `yaml:"and"`
	Or       []rawClause    `yaml:"or"`
	Clinical map[string]any `yaml:"clinical"`
	Genomic  map[string]any `yaml:"genomic"`
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

// LoadTrialFile parses one YAML trial document into a model.Trial.
func LoadTrialFile(path string) (model.Trial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Trial{}, fmt.Errorf("read trial file %s: %w", path, err)
	}
	t, err := parseTrialDoc(data)
	if err != nil {
		return model.Trial{}, fmt.Errorf("parse trial file %s: %w", path, err)
	}
	return t, nil
}

func parseTrialDoc(data []byte) (model.Trial, error) {
	var rt rawTrial
	if err := yaml.Unmarshal(data, &rt); err != nil {
		return model.Trial{}, err
	}

	t := model.Trial{
		ProtocolNo: rt.ProtocolNo,
		NCTID:      rt.NCTID,
		Summary: model.TrialSummary{
			TumorTypes:         rt.Summary.TumorTypes,
			CoordinatingCenter: rt.Summary.CoordinatingCenter,
		},
	}
	for _, s := range rt.Summary.Status {
		t.Summary.Status = append(t.Summary.Status, model.StatusEntry{Value: s})
	}

	for _, rs := range rt.Steps {
		step := model.Step{
			InternalID: rs.InternalID,
			Code:       rs.Code,
			Match:      clausesOf(rs.Match),
		}
		for _, ra := range rs.Arms {
			arm := model.Arm{
				InternalID:  ra.InternalID,
				Code:        ra.Code,
				Name:        ra.Name,
				Description: ra.Description,
				Suspended:   ra.Suspended,
				Match:       clausesOf(ra.Match),
			}
			for _, rd := range ra.DoseLevels {
				arm.DoseLevels = append(arm.DoseLevels, model.DoseLevel{
					InternalID: rd.InternalID,
					Code:       rd.Code,
					Suspended:  rd.Suspended,
					Match:      clausesOf(rd.Match),
				})
			}
			step.Arms = append(step.Arms, arm)
		}
		t.Steps = append(t.Steps, step)
	}
	return t, nil
}

func clausesOf(raws []rawClause) []model.MatchClause {
	out := make([]model.MatchClause, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.toClause())
	}
	return out
}

// LoadTrialDir parses every *.yaml/*.yml file in dir as a trial document.
// A file that fails to parse is reported but does not abort the rest of
// the directory (spec.md §7's InvalidTrial: "the trial is skipped").
func LoadTrialDir(dir string) ([]model.Trial, []error, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read trial directory %s: %w", dir, err)
	}

	var trials []model.Trial
	var warnings []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		t, err := LoadTrialFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("skipping %s: %w", path, err))
			continue
		}
		trials = append(trials, t)
	}
	return trials, warnings, nil
}
