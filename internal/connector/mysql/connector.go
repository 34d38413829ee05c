// Package mysql implements the MySQL/MariaDB connector using
// go-sql-driver/mysql.
package mysql

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/askdb/askdb/internal/connector"
	"github.com/askdb/askdb/internal/model"
)

// Connector implements connector.Connector for MySQL databases.
type Connector struct {
	db         *sqlx.DB
	schemaName string
}

// New creates an unconnected MySQL connector. When no schema name is
// configured, introspection uses the database selected by the DSN.
func New() connector.Connector {
	return &Connector{}
}

// Connect establishes the connection pool and applies pool settings.
func (c *Connector) Connect(cfg connector.Config) error {
	db, err := sqlx.Connect("mysql", cfg.DSN)
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
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

	c.schemaName = cfg.SchemaName
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

// DriverName returns the driver identifier for MySQL.
func (c *Connector) DriverName() string { return "mysql" }

type columnRow struct {
	TableName  string `db:"TABLE_NAME"`
	ColumnName string `db:"COLUMN_NAME"`
}

// Introspect builds the schema snapshot from information_schema for the
// configured schema, or for DATABASE() when none is set.
func (c *Connector) Introspect(ctx context.Context) (*model.Schema, error) {
	const query = `SELECT c.TABLE_NAME, c.COLUMN_NAME
		FROM information_schema.COLUMNS c
		JOIN information_schema.TABLES t
			ON c.TABLE_SCHEMA = t.TABLE_SCHEMA AND c.TABLE_NAME = t.TABLE_NAME
		WHERE c.TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
			AND t.TABLE_TYPE IN ('BASE TABLE', 'VIEW')
		ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query, c.schemaName); err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}

	schema := &model.Schema{}
	for _, row := range rows {
		n := len(schema.Tables)
		if n == 0 || schema.Tables[n-1].Name != row.TableName {
			schema.Tables = append(schema.Tables, model.Table{Name: row.TableName})
			n++
		}
		schema.Tables[n-1].Columns = append(schema.Tables[n-1].Columns, row.ColumnName)
	}
	return schema, nil
}

// Query executes a read-only statement through the shared SELECT-only path.
func (c *Connector) Query(ctx context.Context, sql string) ([]string, [][]any, error) {
	return connector.QueryRows(ctx, c.db, sql)
}
