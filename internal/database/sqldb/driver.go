// Package sqldb runs statements through database/sql for the drivers
// that are not PostgreSQL: the embedded SQLite store, MySQL and SQL Server.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/joacominatel/minasql/internal/database"
)

// Driver implements the database.Driver interface on top of database/sql.
type Driver struct {
	driverName string
	db         *sql.DB
	dbName     string
}

// New creates a driver for a registered database/sql driver name
// ("sqlite", "mysql" or "sqlserver").
func New(driverName string) *Driver {
	return &Driver{driverName: driverName}
}

// Connect opens the database and verifies it answers.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	// A single connection keeps session state and in-memory SQLite databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping: %w", err)
	}

	d.db = db
	d.dbName = dsn
	if d.driverName != "sqlite" {
		d.dbName = d.currentDatabase(ctx)
	}
	return nil
}

func (d *Driver) currentDatabase(ctx context.Context) string {
	query := "SELECT DATABASE()"
	if d.driverName == "sqlserver" {
		query = "SELECT DB_NAME()"
	}
	var name sql.NullString
	if err := d.db.QueryRowContext(ctx, query).Scan(&name); err != nil {
		return ""
	}
	return name.String
}

// Close closes the database handle.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.db == nil {
		return fmt.Errorf("not connected")
	}
	return d.db.PingContext(ctx)
}

// Execute runs a SQL statement and collects its row set, if any.
func (d *Driver) Execute(ctx context.Context, statement string) (*database.QueryResult, error) {
	if d.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	start := time.Now()

	rows, err := d.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	if len(columns) == 0 {
		// Some drivers only step the statement on Next.
		for rows.Next() {
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("execute: %w", err)
		}
		return &database.QueryResult{Duration: time.Since(start)}, nil
	}

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}

	result, err := database.Collect(newCursor(d.driverName, rows, columns, types))
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

type cursor struct {
	driverName string
	rows       *sql.Rows
	columns    []string
	dbTypes    []string
	values     []any
	ptrs       []any
}

func newCursor(driverName string, rows *sql.Rows, columns []string, types []*sql.ColumnType) *cursor {
	c := &cursor{
		driverName: driverName,
		rows:       rows,
		columns:    columns,
		dbTypes:    make([]string, len(columns)),
		values:     make([]any, len(columns)),
		ptrs:       make([]any, len(columns)),
	}
	for i := range c.values {
		c.ptrs[i] = &c.values[i]
		if i < len(types) {
			c.dbTypes[i] = strings.ToUpper(types[i].DatabaseTypeName())
		}
	}
	return c
}

func (c *cursor) Columns() []string { return c.columns }
func (c *cursor) Next() bool        { return c.rows.Next() }
func (c *cursor) Err() error        { return c.rows.Err() }

func (c *cursor) Values() ([]any, error) {
	if err := c.rows.Scan(c.ptrs...); err != nil {
		return nil, err
	}
	out := make([]any, len(c.values))
	for i, v := range c.values {
		out[i] = cellValue(c.driverName, c.dbTypes[i], v)
	}
	return out, nil
}
