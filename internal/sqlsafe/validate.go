package sqlsafe

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/parser/test_driver"

	"github.com/askdb/askdb/internal/model"
)

// Verdict is the outcome of validating one statement. Reason is always
// populated: a confirmation on accept, a diagnostic on reject.
type Verdict struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
}

func accept(reason string) Verdict { return Verdict{OK: true, Reason: reason} }
func reject(reason string) Verdict { return Verdict{OK: false, Reason: reason} }

// Validator checks that a candidate statement is a single read-only SELECT
// whose table references exist in the schema snapshot. The snapshot is
// immutable, so a Validator is safe for concurrent use.
type Validator struct {
	schema *model.Schema
}

// NewValidator creates a Validator over the given schema snapshot. An empty
// (or nil) snapshot is a valid degraded state: the reference check is
// skipped, never failed.
func NewValidator(schema *model.Schema) *Validator {
	return &Validator{schema: schema}
}

// Validate runs all checks in order, short-circuiting on the first failure:
// emptiness, single read-only statement, then schema references. Column
// names are deliberately not checked; without full semantic resolution they
// cannot be attributed to a table, so column errors surface at execution.
func (v *Validator) Validate(sql string) Verdict {
	if strings.TrimSpace(sql) == "" {
		return reject("SQL query is empty")
	}

	if verdict := checkReadOnly(sql); !verdict.OK {
		return verdict
	}

	if v.schema.Empty() {
		return accept("schema unavailable; table reference check skipped")
	}

	refs := ExtractTableRefs(sql)
	for _, ref := range refs {
		if !v.schema.HasTable(ref) {
			return reject(fmt.Sprintf("table %q does not exist in the database schema", ref))
		}
	}

	return accept("SQL validated")
}

// checkReadOnly parses the statement sequence and requires exactly one
// statement whose type is SELECT. Set operations (UNION and friends) count
// as SELECT. Stacked statements are rejected outright, which shuts down
// multi-statement injection regardless of what the extra statements are.
func checkReadOnly(sql string) Verdict {
	stmts, _, err := parser.New().Parse(sql, "", "")
	if err != nil {
		// The parser speaks MySQL; PostgreSQL-only constructs such as ::
		// casts fail to parse even in a legitimate SELECT. A parse error
		// therefore degrades to a structural check on the token stream
		// instead of rejecting on dialect alone.
		return checkReadOnlyStructural(sql)
	}
	if len(stmts) == 0 {
		return reject("no SQL statement found")
	}
	if len(stmts) > 1 {
		return reject("multiple SQL statements are not allowed")
	}

	switch stmts[0].(type) {
	case *ast.SelectStmt, *ast.SetOprStmt:
		return accept("read-only")
	default:
		return reject("only SELECT queries are permitted")
	}
}

// checkReadOnlyStructural enforces the same two gates — single statement,
// SELECT first — on the raw token stream, for statements the parser cannot
// grammar-check. Semicolons inside string literals and comments never count
// as statement separators because the scanner consumes those whole.
func checkReadOnlyStructural(sql string) Verdict {
	tokens := scanTokens(sql)
	if len(tokens) == 0 {
		return reject("no SQL statement found")
	}
	if tokens[0].kind != tokIdent || !strings.EqualFold(tokens[0].text, "select") {
		return reject("only SELECT queries are permitted")
	}
	for i, tok := range tokens {
		if tok.kind == tokSymbol && tok.text == ";" && i < len(tokens)-1 {
			return reject("multiple SQL statements are not allowed")
		}
	}
	return accept("read-only")
}

// refScanState drives the table-reference walk.
type refScanState int

const (
	seekingFromOrJoin refScanState = iota
	expectingTable
)

// ExtractTableRefs scans a single statement's token stream for the
// identifiers that follow FROM and JOIN keywords and returns them
// lower-cased, deduplicated, in scan order.
//
// This is a documented heuristic, not resolution: exactly one identifier
// (or comma-separated identifier list) is consumed per keyword, aliases are
// skipped, schema-qualified names are reduced to their last segment, and
// subqueries or CTE-defined names are not special-cased. A CTE name will
// therefore be reported as a table reference and can fail the schema check.
func ExtractTableRefs(sql string) []string {
	tokens := scanTokens(sql)

	state := seekingFromOrJoin
	seen := make(map[string]bool)
	var refs []string

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch state {
		case seekingFromOrJoin:
			if tok.kind == tokKeyword && (tok.text == "FROM" || tok.text == "JOIN") {
				state = expectingTable
			}

		case expectingTable:
			if tok.kind != tokIdent {
				// A subquery, value, or anything else in table position:
				// give up on this keyword and keep seeking.
				state = seekingFromOrJoin
				continue
			}

			name := tableName(tok.text)
			if name != "" && !seen[name] {
				seen[name] = true
				refs = append(refs, name)
			}

			// Skip an optional alias: either "AS alias" or a bare alias.
			if i+1 < len(tokens) && tokens[i+1].kind == tokKeyword && tokens[i+1].text == "AS" {
				i++
			}
			if i+1 < len(tokens) && tokens[i+1].kind == tokIdent {
				i++
			}

			// A comma keeps the identifier list open (FROM a, b, c).
			if i+1 < len(tokens) && tokens[i+1].kind == tokSymbol && tokens[i+1].text == "," {
				i++
				continue
			}

			state = seekingFromOrJoin
		}
	}

	return refs
}

// tableName reduces an identifier to the comparable table name: the segment
// after the last dot (schema qualifiers are dropped), lower-cased.
func tableName(ident string) string {
	if dot := strings.LastIndexByte(ident, '.'); dot >= 0 {
		ident = ident[dot+1:]
	}
	return strings.ToLower(ident)
}
