package criteria

import (
	"strings"
	"time"

	"github.com/dfci/matchengine/internal/normalize"
	"github.com/dfci/matchengine/internal/oncotree"
	"github.com/dfci/matchengine/internal/query"
)

// CompileClinical translates a `clinical:` leaf's raw criteria map into a
// query.Predicate, mirroring prepare_clinical_criteria / build_cquery /
// _search_oncotree_diagnosis in the original matchengine. onco may be nil,
// in which case oncotree_primary_diagnosis values pass through unexpanded.
// now is injected for deterministic age_numerical translation.
func CompileClinical(onco *oncotree.Tree, now time.Time, criteria map[string]any) query.Predicate {
	var preds []query.Predicate

	for key, raw := range criteria {
		internalField := normalize.Field(key)

		switch internalField {
		case "birth_date":
			pred, ok := compileAge(now, raw)
			if ok {
				preds = append(preds, pred)
			}
			continue
		case "oncotree_primary_diagnosis_name":
			preds = append(preds, compileDiagnosis(onco, key, raw))
			continue
		}

		preds = append(preds, buildFieldPredicate(internalField, normalizeAny(key, raw)))
	}

	return query.Conjunction(preds...)
}

// compileAge handles both a single comparison string ("<=39") and a list of
// two bounds (e.g. [">=18", "<=39"] for an age range), each translated
// independently and conjoined.
func compileAge(now time.Time, raw any) (query.Predicate, bool) {
	values := toStringSlice(raw)
	if len(values) == 0 {
		return query.Predicate{}, false
	}

	var preds []query.Predicate
	for _, v := range values {
		op, years, ok := parseAgeCriterion(v)
		if !ok {
			continue
		}
		cutoff := ageBirthDate(now, op, years)
		switch op {
		case ">", ">=":
			// older than N years => born on/before cutoff
			preds = append(preds, query.Predicate{Field: "birth_date", Op: query.OpLte, Value: cutoff})
		case "<", "<=":
			// younger than N years => born on/after cutoff
			preds = append(preds, query.Predicate{Field: "birth_date", Op: query.OpGte, Value: cutoff})
		default:
			preds = append(preds, query.Predicate{Field: "birth_date", Op: query.OpEq, Value: cutoff})
		}
	}
	if len(preds) == 0 {
		return query.Predicate{}, false
	}
	if len(preds) == 1 {
		return preds[0], true
	}
	return query.Conjunction(preds...), true
}

// compileDiagnosis expands each diagnosis value through the oncotree and
// merges the results into a single field predicate, mirroring the original's
// per-value accumulation into $in / $nin lists in _search_oncotree_diagnosis.
func compileDiagnosis(onco *oncotree.Tree, key string, raw any) query.Predicate {
	values := toStringSlice(raw)
	var in, notIn []any
	passthroughEq := []any{}
	passthroughNe := []any{}

	for _, v := range values {
		v = normalize.Value(key, v)
		negated := strings.HasPrefix(v, "!")
		diag := strings.TrimPrefix(v, "!")

		if onco == nil {
			if negated {
				passthroughNe = append(passthroughNe, diag)
			} else {
				passthroughEq = append(passthroughEq, diag)
			}
			continue
		}

		names, unconstrained, found := onco.Expand(diag)
		if unconstrained {
			continue // "All Tumors": no constraint contributed
		}
		if !found {
			if negated {
				passthroughNe = append(passthroughNe, diag)
			} else {
				passthroughEq = append(passthroughEq, diag)
			}
			continue
		}
		for _, n := range names {
			if negated {
				notIn = append(notIn, n)
			} else {
				in = append(in, n)
			}
		}
	}

	in = append(in, passthroughEq...)
	notIn = append(notIn, passthroughNe...)

	var preds []query.Predicate
	if len(in) > 0 {
		preds = append(preds, query.Predicate{Field: "oncotree_primary_diagnosis_name", Op: query.OpIn, Values: in})
	}
	if len(notIn) > 0 {
		preds = append(preds, query.Predicate{Field: "oncotree_primary_diagnosis_name", Op: query.OpNotIn, Values: notIn})
	}
	if len(preds) == 0 {
		return query.Predicate{}
	}
	if len(preds) == 1 {
		return preds[0]
	}
	return query.Conjunction(preds...)
}

// buildFieldPredicate handles a generic (non-diagnosis, non-age) clinical
// field: scalar "!"-negation, or a list split into In/NotIn.
func buildFieldPredicate(field string, raw any) query.Predicate {
	values := toStringSlice(raw)
	if len(values) == 0 {
		return query.Predicate{}
	}
	if len(values) == 1 {
		v := values[0]
		if strings.HasPrefix(v, "!") {
			return query.Predicate{Field: field, Op: query.OpNe, Value: v[1:]}
		}
		return query.Predicate{Field: field, Op: query.OpEq, Value: v}
	}

	var in, notIn []any
	for _, v := range values {
		if strings.HasPrefix(v, "!") {
			notIn = append(notIn, v[1:])
		} else {
			in = append(in, v)
		}
	}
	var preds []query.Predicate
	if len(in) > 0 {
		preds = append(preds, query.Predicate{Field: field, Op: query.OpIn, Values: in})
	}
	if len(notIn) > 0 {
		preds = append(preds, query.Predicate{Field: field, Op: query.OpNotIn, Values: notIn})
	}
	if len(preds) == 1 {
		return preds[0]
	}
	return query.Conjunction(preds...)
}

func normalizeAny(key string, raw any) any {
	switch v := raw.(type) {
	case string:
		return normalize.Value(key, v)
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = normalize.Value(key, s)
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				out = append(out, normalize.Value(key, str))
			}
		}
		return out
	default:
		return raw
	}
}

func toStringSlice(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
