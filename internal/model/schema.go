package model

import (
	"strings"
)

// Schema is an immutable snapshot of the tables visible to the agent.
// It is built once by a connector's Introspect and shared read-only
// across all pipeline runs; nothing mutates it after construction.
type Schema struct {
	Tables []Table `json:"tables"`
}

// Table describes a single table: its name as stored in the database and
// its column names in ordinal order.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// Empty reports whether the snapshot contains no tables. An empty schema
// is a valid degraded state: validation against it is skipped, not failed.
func (s *Schema) Empty() bool {
	return s == nil || len(s.Tables) == 0
}

// HasTable reports whether a table with the given name exists in the
// snapshot. Comparison is case-insensitive; stored names keep their
// original casing.
func (s *Schema) HasTable(name string) bool {
	if s == nil {
		return false
	}
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

// TableNames returns the table names in snapshot order.
func (s *Schema) TableNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}

// Describe renders the snapshot as the plain-text form handed to the
// language model, one line per table:
//
//	Table users has columns: id, name, email.
func (s *Schema) Describe() string {
	if s.Empty() {
		return ""
	}
	var b strings.Builder
	for i, t := range s.Tables {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Table ")
		b.WriteString(t.Name)
		b.WriteString(" has columns: ")
		b.WriteString(strings.Join(t.Columns, ", "))
		b.WriteByte('.')
	}
	return b.String()
}
