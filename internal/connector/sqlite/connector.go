// Package sqlite implements the SQLite connector using the pure-Go
// modernc.org/sqlite driver, so the agent stays CGO-free.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/askdb/askdb/internal/connector"
	"github.com/askdb/askdb/internal/model"
)

// Connector implements connector.Connector for SQLite databases.
type Connector struct {
	db *sqlx.DB
}

// New creates an unconnected SQLite connector.
func New() connector.Connector {
	return &Connector{}
}

// Connect opens the database file (or :memory:) and applies pool settings.
func (c *Connector) Connect(cfg connector.Config) error {
	db, err := sqlx.Connect("sqlite", cfg.DSN)
	if err != nil {
		return fmt.Errorf("sqlite connect: %w", err)
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

	c.db = db
	return nil
}

// Close closes the database.
func (c *Connector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the database is reachable.
func (c *Connector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying connection pool.
func (c *Connector) DB() *sqlx.DB { return c.db }

// DriverName returns the driver identifier for SQLite.
func (c *Connector) DriverName() string { return "sqlite" }

// Introspect builds the schema snapshot from sqlite_master and PRAGMA
// table_info, skipping SQLite's internal tables.
func (c *Connector) Introspect(ctx context.Context) (*model.Schema, error) {
	const query = `SELECT name FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	var names []string
	if err := c.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}

	schema := &model.Schema{}
	for _, name := range names {
		columns, err := c.tableColumns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("introspect table %q: %w", name, err)
		}
		schema.Tables = append(schema.Tables, model.Table{Name: name, Columns: columns})
	}
	return schema, nil
}

// Query executes a read-only statement through the shared SELECT-only path.
func (c *Connector) Query(ctx context.Context, sql string) ([]string, [][]any, error) {
	return connector.QueryRows(ctx, c.db, sql)
}

// tableColumns returns the column names of one table in ordinal order.
func (c *Connector) tableColumns(ctx context.Context, table string) ([]string, error) {
	type infoRow struct {
		CID     int     `db:"cid"`
		Name    string  `db:"name"`
		Type    string  `db:"type"`
		NotNull int     `db:"notnull"`
		Default *string `db:"dflt_value"`
		PK      int     `db:"pk"`
	}

	pragma := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdentifier(table))
	var rows []infoRow
	if err := c.db.SelectContext(ctx, &rows, pragma); err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, row.Name)
	}
	return columns, nil
}

// quoteIdentifier wraps an identifier in double quotes, escaping embedded
// double quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
