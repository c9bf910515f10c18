// Package query defines the store-agnostic predicate representation that
// criterion compilation produces, and the evaluator that runs it against a
// Store. Rendering a Predicate to a concrete store's native query form is
// the job of a single adapter at the edge (internal/store), per the design
// note: "an intermediate typed predicate representation, rendered into the
// store's native query form by a single adapter at the edge".
package query

// Op identifies a predicate's comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpIn
	OpNotIn
	OpRegex
	OpGt
	OpGte
	OpLt
	OpLte
	OpExistsFalseOrEq // field IS NULL OR field = value (used for the wildtype default clause)
)

// Predicate is one field-level comparison, or a conjunction of them.
type Predicate struct {
	Field string
	Op    Op
	// Value holds the scalar operand for Eq/Ne/Regex/Gt*/Lt*.
	Value any
	// Values holds the operand list for In/NotIn.
	Values []any
	// ExistsFalseValue is the sentinel scalar for OpExistsFalseOrEq (e.g. false).
	ExistsFalseValue any

	// Hint carries the bare search term behind an OpRegex predicate (e.g.
	// the gene symbol behind a structural-variant word-boundary regex), so
	// a store with a full-text accelerator (internal/fulltext) can narrow
	// candidates before re-checking the regex, without having to reparse it.
	Hint string

	// And, when non-nil, makes this node a conjunction of sub-predicates
	// and all other fields are ignored.
	And []Predicate
}

// Conjunction builds an And-predicate over preds as given; zero-value
// placeholders are kept here and skipped when the store renders the query.
func Conjunction(preds ...Predicate) Predicate {
	return Predicate{And: preds}
}

// IsEmpty reports whether the predicate carries no constraint at all
// (produced when every criterion key was unrecognized or dropped).
func (p Predicate) IsEmpty() bool {
	return p.Field == "" && p.And == nil
}

// Fields returns the set of leaf field names referenced anywhere in p.
func (p Predicate) Fields() []string {
	if p.And != nil {
		var out []string
		for _, sub := range p.And {
			out = append(out, sub.Fields()...)
		}
		return out
	}
	if p.Field == "" {
		return nil
	}
	return []string{p.Field}
}
