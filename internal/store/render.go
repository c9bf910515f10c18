package store

import (
	"fmt"
	"strings"

	"github.com/dfci/matchengine/internal/query"
)

// render turns a query.Predicate into a SQL WHERE fragment plus its bound
// arguments, the single adapter the design notes call for at the edge
// between the store-agnostic predicate representation and DuckDB's dialect.
func render(p query.Predicate) (string, []any) {
	if p.And != nil {
		var clauses []string
		var args []any
		for _, sub := range p.And {
			if sub.IsEmpty() {
				continue
			}
			clause, subArgs := render(sub)
			clauses = append(clauses, clause)
			args = append(args, subArgs...)
		}
		if len(clauses) == 0 {
			return "TRUE", nil
		}
		return "(" + strings.Join(clauses, " AND ") + ")", args
	}

	switch p.Op {
	case query.OpEq:
		return fmt.Sprintf("%s = ?", p.Field), []any{p.Value}
	case query.OpNe:
		return fmt.Sprintf("%s IS DISTINCT FROM ?", p.Field), []any{p.Value}
	case query.OpIn:
		placeholders := placeholderList(len(p.Values))
		return fmt.Sprintf("%s IN (%s)", p.Field, placeholders), p.Values
	case query.OpNotIn:
		placeholders := placeholderList(len(p.Values))
		return fmt.Sprintf("(%s IS NULL OR %s NOT IN (%s))", p.Field, p.Field, placeholders), p.Values
	case query.OpRegex:
		return fmt.Sprintf("regexp_matches(%s, ?)", p.Field), []any{p.Value}
	case query.OpGt:
		return fmt.Sprintf("%s > ?", p.Field), []any{p.Value}
	case query.OpGte:
		return fmt.Sprintf("%s >= ?", p.Field), []any{p.Value}
	case query.OpLt:
		return fmt.Sprintf("%s < ?", p.Field), []any{p.Value}
	case query.OpLte:
		return fmt.Sprintf("%s <= ?", p.Field), []any{p.Value}
	case query.OpExistsFalseOrEq:
		return fmt.Sprintf("(%s IS NULL OR %s = ?)", p.Field, p.Field), []any{p.ExistsFalseValue}
	default:
		return "TRUE", nil
	}
}

func placeholderList(n int) string {
	if n == 0 {
		return "NULL"
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ", ")
}
