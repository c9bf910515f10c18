package matchtree

import (
	"fmt"

	"github.com/dfci/matchengine/internal/matcherr"
	"github.com/dfci/matchengine/internal/model"
)

// LevelRef identifies one treatment node in a trial's step/arm/dose
// hierarchy. ArmIdx/DoseIdx are -1 when the ref doesn't reach that deep.
type LevelRef struct {
	StepIdx int
	ArmIdx  int
	DoseIdx int
	Level   model.MatchLevel
}

// CompiledTrial is a trial document together with the compiled match tree
// attached to every treatment node that declared one.
type CompiledTrial struct {
	Trial model.Trial
	Trees map[LevelRef]*Tree
}

// Compile validates a trial document and builds the match tree for every
// step/arm/dose_level that declares `match`, mirroring the original's
// create_trial_tree walk. Validate is called first; a validation failure
// returns a matcherr.InvalidTrial error and no partial CompiledTrial.
func Compile(trial model.Trial) (*CompiledTrial, error) {
	if err := Validate(trial); err != nil {
		return nil, err
	}

	ct := &CompiledTrial{Trial: trial, Trees: map[LevelRef]*Tree{}}

	for si, step := range trial.Steps {
		if len(step.Match) > 0 {
			ct.Trees[LevelRef{StepIdx: si, ArmIdx: -1, DoseIdx: -1, Level: model.LevelStep}] = Build(step.Match)
		}
		for ai, arm := range step.Arms {
			if len(arm.Match) > 0 {
				ct.Trees[LevelRef{StepIdx: si, ArmIdx: ai, DoseIdx: -1, Level: model.LevelArm}] = Build(arm.Match)
			}
			for di, dose := range arm.DoseLevels {
				if len(dose.Match) > 0 {
					ct.Trees[LevelRef{StepIdx: si, ArmIdx: ai, DoseIdx: di, Level: model.LevelDose}] = Build(dose.Match)
				}
			}
		}
	}

	return ct, nil
}

// Validate checks the structural invariants a trial document must satisfy
// before it is safe to walk: non-empty identifiers and at least one
// treatment step. This is a hand-written validator rather than a schema
// library (no cerberus-equivalent was available to wire; see DESIGN.md).
func Validate(trial model.Trial) error {
	if trial.ProtocolNo == "" {
		return matcherr.New(matcherr.InvalidTrial, trial.NCTID, fmt.Errorf("missing protocol_no"))
	}
	if trial.NCTID == "" {
		return matcherr.New(matcherr.InvalidTrial, trial.ProtocolNo, fmt.Errorf("missing nct_id"))
	}
	if len(trial.Steps) == 0 {
		return matcherr.New(matcherr.InvalidTrial, trial.ProtocolNo, fmt.Errorf("trial has no treatment steps"))
	}
	for si, step := range trial.Steps {
		for ai, arm := range step.Arms {
			for di, dose := range arm.DoseLevels {
				if dose.Code == "" && len(dose.Match) == 0 {
					return matcherr.New(matcherr.InvalidTrial, trial.ProtocolNo,
						fmt.Errorf("step[%d].arm[%d].dose_level[%d] has neither a code nor match criteria", si, ai, di))
				}
			}
		}
	}
	return nil
}
