// Package postgres implements the PostgreSQL connector using the pgx
// stdlib driver.
package postgres

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/askdb/askdb/internal/connector"
	"github.com/askdb/askdb/internal/model"
)

// Connector implements connector.Connector for PostgreSQL databases.
type Connector struct {
	db         *sqlx.DB
	schemaName string
}

// New creates an unconnected PostgreSQL connector scoped to the public
// schema by default.
func New() connector.Connector {
	return &Connector{schemaName: "public"}
}

// Connect establishes the connection pool and applies pool settings.
func (c *Connector) Connect(cfg connector.Config) error {
	db, err := sqlx.Connect("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if cfg.SchemaName != "" {
		c.schemaName = cfg.SchemaName
	}

	c.db = db
	return nil
}

// Close closes the connection pool.
func (c *Connector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (c *Connector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying connection pool.
func (c *Connector) DB() *sqlx.DB { return c.db }

// DriverName returns the driver identifier for PostgreSQL.
func (c *Connector) DriverName() string { return "postgres" }

// columnRow holds one row of the introspection query.
type columnRow struct {
	TableName  string `db:"table_name"`
	ColumnName string `db:"column_name"`
}

// Introspect builds the schema snapshot from information_schema: every base
// table and view in the configured schema with its columns in ordinal order.
func (c *Connector) Introspect(ctx context.Context) (*model.Schema, error) {
	const query = `SELECT c.table_name, c.column_name
		FROM information_schema.columns c
		JOIN information_schema.tables t
			ON c.table_schema = t.table_schema AND c.table_name = t.table_name
		WHERE c.table_schema = $1
			AND t.table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY c.table_name, c.ordinal_position`

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query, c.schemaName); err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}
	return groupColumns(rows), nil
}

// Query executes a read-only statement through the shared SELECT-only path.
func (c *Connector) Query(ctx context.Context, sql string) ([]string, [][]any, error) {
	return connector.QueryRows(ctx, c.db, sql)
}

// groupColumns folds the flat (table, column) rows into ordered tables. The
// input is ordered by table then ordinal position, so append order is the
// snapshot order.
func groupColumns(rows []columnRow) *model.Schema {
	schema := &model.Schema{}
	for _, row := range rows {
		n := len(schema.Tables)
		if n == 0 || schema.Tables[n-1].Name != row.TableName {
			schema.Tables = append(schema.Tables, model.Table{Name: row.TableName})
			n++
		}
		schema.Tables[n-1].Columns = append(schema.Tables[n-1].Columns, row.ColumnName)
	}
	return schema
}
