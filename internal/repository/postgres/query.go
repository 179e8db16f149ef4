package postgres

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"linkedapi/internal/repository"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var fieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// columns maps document keys that are stored as real columns.
type columns map[string]string

// expr returns the SQL expression selecting a document key, preferring a
// dedicated column when there is one.
func (c columns) expr(field string) (string, error) {
	if col, ok := c[field]; ok {
		return col, nil
	}
	if !fieldName.MatchString(field) {
		return "", fmt.Errorf("invalid field name %q", field)
	}
	return "doc->>'" + field + "'", nil
}

// elemExpr handles "array.key" paths over an embedded list, e.g.
// experiences.area. It reports ok=false for plain fields.
func elemExpr(field string) (arr, key string, ok bool, err error) {
	arr, key, ok = strings.Cut(field, ".")
	if !ok {
		return "", "", false, nil
	}
	if !fieldName.MatchString(arr) || !fieldName.MatchString(key) {
		return "", "", false, fmt.Errorf("invalid field name %q", field)
	}
	return arr, key, true, nil
}

// buildWhere renders the filter as a WHERE clause with positional args
// starting at $1. An empty filter renders as an empty string.
//
// A path into an embedded list matches when any element matches, and its
// inequality holds when no element equals the value.
func buildWhere(cols columns, conds []repository.Condition) (string, []any, error) {
	if len(conds) == 0 {
		return "", nil, nil
	}
	parts := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	for _, cond := range conds {
		arr, key, nested, err := elemExpr(cond.Field)
		if err != nil {
			return "", nil, err
		}
		e := "el->>'" + key + "'"
		if !nested {
			if e, err = cols.expr(cond.Field); err != nil {
				return "", nil, err
			}
		}
		args = append(args, cond.Value)
		ph := fmt.Sprintf("$%d", len(args))

		var part string
		switch cond.Op {
		case repository.OpEq:
			part = e + " = " + ph
		case repository.OpNe:
			if nested {
				part = e + " = " + ph
			} else {
				part = "(" + e + " IS NULL OR " + e + " <> " + ph + ")"
			}
		case repository.OpRegex:
			op := " ~ "
			if cond.IgnoreCase {
				op = " ~* "
			}
			part = e + op + ph
		default:
			return "", nil, fmt.Errorf("unsupported operator %d", cond.Op)
		}

		if nested {
			exists := "EXISTS (SELECT 1 FROM jsonb_array_elements(COALESCE(doc->'" + arr + "', '[]'::jsonb)) AS el WHERE " + part + ")"
			if cond.Op == repository.OpNe {
				exists = "NOT " + exists
			}
			part = exists
		}
		parts = append(parts, part)
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

// buildOrderBy renders the sort, falling back to newest first. The id
// tiebreaker keeps paging stable.
func buildOrderBy(cols columns, sort []repository.SortField) (string, error) {
	if len(sort) == 0 {
		return " ORDER BY created_at DESC, id DESC", nil
	}
	parts := make([]string, 0, len(sort)+1)
	for _, s := range sort {
		e, err := cols.expr(s.Field)
		if err != nil {
			return "", err
		}
		dir := " ASC"
		if s.Desc {
			dir = " DESC"
		}
		parts = append(parts, e+dir)
	}
	parts = append(parts, "id ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
