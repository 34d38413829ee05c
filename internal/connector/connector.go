// Package connector provides the database side of the agent: one connection
// per process, schema introspection for prompting and validation, and a
// read-only query path that refuses anything that is not a SELECT.
package connector

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/askdb/askdb/internal/model"
)

// Config holds database connection parameters.
type Config struct {
	Driver          string
	DSN             string
	SchemaName      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Connector is the interface all database drivers implement. Introspect
// supplies the schema snapshot; Query is the execution sink and must itself
// refuse non-SELECT statements as the secondary gate behind the validator.
type Connector interface {
	Connect(cfg Config) error
	Close() error
	Ping(ctx context.Context) error
	DB() *sqlx.DB

	Introspect(ctx context.Context) (*model.Schema, error)
	Query(ctx context.Context, sql string) (columns []string, rows [][]any, err error)

	DriverName() string
}
