package connector

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// errNotReadOnly is the message used when the execution sink refuses a
// statement. The validator is the primary gate; this check only exists so
// that nothing mutating can reach the database even if a caller bypasses it.
const errNotReadOnly = "refusing to execute non-SELECT statement"

// QueryRows executes a read-only statement and materializes the result set.
// Rows come back as generic value slices in column order; []byte values are
// converted to strings so results render and serialize cleanly.
func QueryRows(ctx context.Context, db *sqlx.DB, sqlText string) ([]string, [][]any, error) {
	if !IsSelect(sqlText) {
		return nil, nil, fmt.Errorf("%s", errNotReadOnly)
	}

	rows, err := db.QueryxContext(ctx, sqlText)
	if err != nil {
		return nil, nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read result columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, nil, fmt.Errorf("scan result row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate result rows: %w", err)
	}

	return columns, out, nil
}

// IsSelect reports whether the statement begins with the SELECT keyword
// once leading whitespace and SQL comments are stripped.
func IsSelect(sqlText string) bool {
	s := stripLeadingComments(sqlText)
	if len(s) < len("select") {
		return false
	}
	return strings.EqualFold(s[:len("select")], "select")
}

// stripLeadingComments removes whitespace, line comments, and block comments
// from the front of a statement so the keyword check cannot be smuggled past
// with "/* */ DELETE ...".
func stripLeadingComments(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(s, "--"):
			if nl := strings.IndexByte(s, '\n'); nl >= 0 {
				s = s[nl+1:]
			} else {
				return ""
			}
		case strings.HasPrefix(s, "/*"):
			if end := strings.Index(s, "*/"); end >= 0 {
				s = s[end+2:]
			} else {
				return ""
			}
		default:
			return s
		}
	}
}
