package sqlsafe

import (
	"reflect"
	"strings"
	"testing"

	"github.com/askdb/askdb/internal/model"
)

func storeSchema() *model.Schema {
	return &model.Schema{Tables: []model.Table{
		{Name: "users", Columns: []string{"user_id", "username", "email", "age"}},
		{Name: "products", Columns: []string{"product_id", "name", "price"}},
		{Name: "orders", Columns: []string{"order_id", "user_id", "product_id", "quantity"}},
	}}
}

func TestValidate(t *testing.T) {
	schema := storeSchema()

	tests := []struct {
		name       string
		sql        string
		wantOK     bool
		wantReason string // substring match on the verdict reason
	}{
		{
			name:   "simple select",
			sql:    "SELECT * FROM users;",
			wantOK: true,
		},
		{
			name:   "select with where clause",
			sql:    "SELECT username, email FROM users WHERE age > 30;",
			wantOK: true,
		},
		{
			name:   "multi-join with aliases",
			sql:    "SELECT u.username, p.name FROM users u JOIN orders o ON u.user_id = o.user_id JOIN products p ON o.product_id = p.product_id;",
			wantOK: true,
		},
		{
			name:   "no FROM clause at all",
			sql:    "SELECT 1;",
			wantOK: true,
		},
		{
			name:   "table names compared case-insensitively",
			sql:    "SELECT * FROM USERS;",
			wantOK: true,
		},
		{
			name:   "schema-qualified name reduced to last segment",
			sql:    "SELECT * FROM public.users;",
			wantOK: true,
		},
		{
			name:       "unknown table rejected by name",
			sql:        "SELECT * FROM ghost_table;",
			wantOK:     false,
			wantReason: "ghost_table",
		},
		{
			name:       "mixed valid and invalid list rejects first invalid",
			sql:        "SELECT * FROM users, phantom, orders;",
			wantOK:     false,
			wantReason: "phantom",
		},
		{
			name:       "DDL rejected",
			sql:        "DROP TABLE users;",
			wantOK:     false,
			wantReason: "only SELECT",
		},
		{
			name:       "DML rejected",
			sql:        "UPDATE users SET age = 30 WHERE user_id = 1;",
			wantOK:     false,
			wantReason: "only SELECT",
		},
		{
			name:       "stacked statements rejected",
			sql:        "SELECT * FROM users; SELECT * FROM orders;",
			wantOK:     false,
			wantReason: "multiple SQL statements",
		},
		{
			name:       "stacked injection rejected regardless of payload",
			sql:        "SELECT * FROM users; DROP TABLE users;",
			wantOK:     false,
			wantReason: "multiple SQL statements",
		},
		{
			name:       "blank input rejected",
			sql:        "   ",
			wantOK:     false,
			wantReason: "empty",
		},
		{
			name:       "non-SQL prose rejected",
			sql:        "tell me about the users table;",
			wantOK:     false,
			wantReason: "only SELECT",
		},
		{
			// CTE names are not special-cased: the reference scan sees the
			// CTE as a table and it fails the schema lookup.
			name:       "CTE-defined name rejected as unknown table",
			sql:        "WITH recent AS (SELECT * FROM orders) SELECT * FROM recent;",
			wantOK:     false,
			wantReason: "recent",
		},
	}

	v := NewValidator(schema)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.sql)
			if got.OK != tt.wantOK {
				t.Fatalf("Validate(%q) ok = %v (reason %q), want %v", tt.sql, got.OK, got.Reason, tt.wantOK)
			}
			if got.Reason == "" {
				t.Fatalf("Validate(%q) returned empty reason", tt.sql)
			}
			if tt.wantReason != "" && !strings.Contains(got.Reason, tt.wantReason) {
				t.Errorf("Validate(%q) reason = %q, want substring %q", tt.sql, got.Reason, tt.wantReason)
			}
		})
	}
}

func TestValidatePostgresDialect(t *testing.T) {
	// The parser is MySQL-grammar only; PostgreSQL-specific syntax must
	// degrade to the structural gates, not reject on dialect.
	schema := storeSchema()

	tests := []struct {
		name       string
		sql        string
		wantOK     bool
		wantReason string
	}{
		{
			name:   "cast operator accepted",
			sql:    "SELECT user_id::text FROM users;",
			wantOK: true,
		},
		{
			name:   "cast with semicolon inside string literal accepted",
			sql:    "SELECT username::varchar FROM users WHERE username = 'a;b';",
			wantOK: true,
		},
		{
			name:       "cast does not bypass the schema check",
			sql:        "SELECT user_id::text FROM ghost_table;",
			wantOK:     false,
			wantReason: "ghost_table",
		},
		{
			name:       "cast does not bypass the stacked-statement check",
			sql:        "SELECT user_id::text FROM users; DROP TABLE users;",
			wantOK:     false,
			wantReason: "multiple SQL statements",
		},
		{
			name:       "cast does not bypass the read-only check",
			sql:        "DELETE FROM users WHERE user_id::text = '1';",
			wantOK:     false,
			wantReason: "only SELECT",
		},
	}

	v := NewValidator(schema)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.sql)
			if got.OK != tt.wantOK {
				t.Fatalf("Validate(%q) ok = %v (reason %q), want %v", tt.sql, got.OK, got.Reason, tt.wantOK)
			}
			if tt.wantReason != "" && !strings.Contains(got.Reason, tt.wantReason) {
				t.Errorf("Validate(%q) reason = %q, want substring %q", tt.sql, got.Reason, tt.wantReason)
			}
		})
	}
}

func TestValidateEmptySchemaDegrades(t *testing.T) {
	// Schema unavailability skips the reference check, it never fails it.
	v := NewValidator(&model.Schema{})

	verdict := v.Validate("SELECT * FROM anything_at_all;")
	if !verdict.OK {
		t.Errorf("empty schema should accept read-only SQL, got %q", verdict.Reason)
	}

	// The read-only gate still applies.
	verdict = v.Validate("DELETE FROM anything_at_all;")
	if verdict.OK {
		t.Error("empty schema must not bypass the read-only check")
	}
}

func TestValidateNilSchema(t *testing.T) {
	v := NewValidator(nil)
	if verdict := v.Validate("SELECT 1;"); !verdict.OK {
		t.Errorf("nil schema should behave like empty schema, got %q", verdict.Reason)
	}
}

func TestExtractTableRefs(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "single table",
			sql:  "SELECT * FROM users",
			want: []string{"users"},
		},
		{
			name: "no from clause",
			sql:  "SELECT 1",
			want: nil,
		},
		{
			name: "join chain in scan order",
			sql:  "SELECT * FROM users u JOIN orders o ON u.id = o.uid LEFT JOIN products p ON o.pid = p.id",
			want: []string{"users", "orders", "products"},
		},
		{
			name: "comma list",
			sql:  "SELECT * FROM users, orders, products",
			want: []string{"users", "orders", "products"},
		},
		{
			name: "comma list with aliases",
			sql:  "SELECT * FROM users AS u, orders o",
			want: []string{"users", "orders"},
		},
		{
			name: "qualified name keeps last segment only",
			sql:  "SELECT * FROM pg_catalog.users",
			want: []string{"users"},
		},
		{
			name: "references lowercased and deduplicated",
			sql:  "SELECT * FROM Users u JOIN USERS x ON u.id = x.id",
			want: []string{"users"},
		},
		{
			name: "FROM inside string literal ignored",
			sql:  "SELECT 'FROM ghosts' FROM users",
			want: []string{"users"},
		},
		{
			name: "FROM inside comment ignored",
			sql:  "SELECT * -- FROM ghosts\nFROM users",
			want: []string{"users"},
		},
		{
			name: "quoted identifier unwrapped",
			sql:  `SELECT * FROM "Order Items"`,
			want: []string{"order items"},
		},
		{
			name: "derived table yields no reference for its keyword",
			sql:  "SELECT * FROM (SELECT * FROM orders) sub",
			want: []string{"orders"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTableRefs(tt.sql)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTableRefs(%q) = %v, want %v", tt.sql, got, tt.want)
			}
		})
	}
}
