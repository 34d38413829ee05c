package sqlite

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/askdb/askdb/internal/connector"
)

func openTestDB(t *testing.T) connector.Connector {
	t.Helper()

	conn := New()
	if err := conn.Connect(connector.Config{Driver: "sqlite", DSN: ":memory:"}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	seed := []string{
		`CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT, department TEXT)`,
		`CREATE TABLE departments (id INTEGER PRIMARY KEY, name TEXT)`,
		`INSERT INTO employees (name, department) VALUES ('Ada', 'Eng'), ('Grace', 'Eng'), ('Joan', 'Sales')`,
	}
	for _, stmt := range seed {
		if _, err := conn.DB().Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
	return conn
}

func TestIntrospect(t *testing.T) {
	conn := openTestDB(t)

	schema, err := conn.Introspect(context.Background())
	if err != nil {
		t.Fatalf("Introspect: %v", err)
	}

	wantTables := []string{"departments", "employees"}
	if got := schema.TableNames(); !reflect.DeepEqual(got, wantTables) {
		t.Errorf("tables = %v, want %v", got, wantTables)
	}

	if !schema.HasTable("EMPLOYEES") {
		t.Error("HasTable should be case-insensitive")
	}

	for _, table := range schema.Tables {
		if table.Name == "employees" {
			want := []string{"id", "name", "department"}
			if !reflect.DeepEqual(table.Columns, want) {
				t.Errorf("employees columns = %v, want %v", table.Columns, want)
			}
		}
	}

	desc := schema.Describe()
	if !strings.Contains(desc, "Table employees has columns: id, name, department.") {
		t.Errorf("Describe() = %q", desc)
	}
}

func TestQuery(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	columns, rows, err := conn.Query(ctx, "SELECT name FROM employees WHERE department = 'Eng' ORDER BY name;")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !reflect.DeepEqual(columns, []string{"name"}) {
		t.Errorf("columns = %v", columns)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v, want 2 rows", rows)
	}
	if rows[0][0] != "Ada" || rows[1][0] != "Grace" {
		t.Errorf("rows = %v", rows)
	}
}

func TestQueryRefusesNonSelect(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	mutations := []string{
		"DELETE FROM employees;",
		"DROP TABLE employees;",
		"INSERT INTO employees (name) VALUES ('Eve');",
		"/* sneaky */ UPDATE employees SET name = 'x';",
	}
	for _, sql := range mutations {
		if _, _, err := conn.Query(ctx, sql); err == nil {
			t.Errorf("Query(%q) should refuse non-SELECT", sql)
		}
	}

	// The data must be untouched.
	_, rows, err := conn.Query(ctx, "SELECT count(*) FROM employees;")
	if err != nil {
		t.Fatalf("count query: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != int64(3) {
		t.Errorf("employees count = %v, want 3", rows)
	}
}

func TestQueryEmptyResult(t *testing.T) {
	conn := openTestDB(t)

	columns, rows, err := conn.Query(context.Background(), "SELECT name FROM employees WHERE department = 'Legal';")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(columns) != 1 {
		t.Errorf("columns = %v", columns)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, want none", rows)
	}
}
