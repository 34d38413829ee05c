// Package sqlsafe reduces raw language-model completions to a single SQL
// statement and validates that the statement is a lone, read-only SELECT
// whose table references exist in the introspected schema. It is the only
// gate between model output and the database.
package sqlsafe

import (
	"errors"
	"strings"
)

// ErrNoSelect is returned by Normalize when the completion contains no
// SELECT statement at all.
var ErrNoSelect = errors.New("no SELECT found")

// ErrEmptyResult is returned by Normalize when cleanup leaves nothing usable.
var ErrEmptyResult = errors.New("empty or non-SELECT result after cleanup")

// chatterMarkers are phrases models commonly append after the SQL despite
// being told not to. Anything at or after a marker is discarded. The trailing
// "```" entry catches a stray fence closer left behind after the opener was
// stripped.
var chatterMarkers = []string{
	"this query will",
	"the query above",
	"explanation:",
	"here is the sql",
	"note:",
	"```",
}

// Normalize strips model chatter, markdown fencing, and quoting from a raw
// completion and isolates the first plausible SELECT statement. It is a
// deterministic best-effort reduction, not a parser: it only ever extracts
// or rejects, never fabricates SQL. Applying it to its own output is a no-op.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	// Markdown fence: strip a ```sql opener and a ``` closer.
	if strings.HasPrefix(s, "```sql") {
		s = strings.TrimSpace(s[len("```sql"):])
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(s[:len(s)-len("```")])
	}

	// One layer of matching quotes around the whole statement.
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			s = s[1 : len(s)-1]
		}
	}

	// Cut everything before the first SELECT, preserving original casing.
	idx := strings.Index(strings.ToLower(s), "select ")
	if idx < 0 {
		return "", ErrNoSelect
	}
	s = s[idx:]

	// Truncate at trailing chatter.
	for _, marker := range chatterMarkers {
		if mi := strings.Index(strings.ToLower(s), marker); mi >= 0 {
			s = strings.TrimSpace(s[:mi])
		}
	}

	// Trim before the terminator check: a completion ending in "; " must
	// not gain a second semicolon.
	s = strings.TrimSpace(s)
	if startsWithSelect(s) && !strings.HasSuffix(s, ";") {
		s += ";"
	}

	if s == "" || !startsWithSelect(s) {
		return "", ErrEmptyResult
	}
	return s, nil
}

// startsWithSelect reports whether s begins with the SELECT keyword,
// case-insensitively and ignoring leading whitespace.
func startsWithSelect(s string) bool {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < len("select") {
		return false
	}
	return strings.EqualFold(trimmed[:len("select")], "select")
}
