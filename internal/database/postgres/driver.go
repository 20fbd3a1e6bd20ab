package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joacominatel/minasql/internal/database"
)

// Driver implements the database.Driver interface for PostgreSQL.
type Driver struct {
	pool   *pgxpool.Pool
	dbName string
}

// New creates a new PostgreSQL driver.
func New() *Driver {
	return &Driver{}
}

// Connect opens a single-session pool to PostgreSQL.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	// One session, so SET/BEGIN carry over between statements.
	cfg.MaxConns = 1
	cfg.MinConns = 1
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}

	d.pool = pool
	d.dbName = cfg.ConnConfig.Database
	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	if d.pool != nil {
		d.pool.Close()
	}
	return nil
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.pool == nil {
		return fmt.Errorf("not connected")
	}
	return d.pool.Ping(ctx)
}

// Execute runs a SQL statement and collects its row set, if any.
func (d *Driver) Execute(ctx context.Context, statement string) (*database.QueryResult, error) {
	if d.pool == nil {
		return nil, fmt.Errorf("not connected")
	}

	start := time.Now()

	rows, err := d.pool.Query(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	if len(fields) == 0 {
		// Errors of statements without a row set only surface after Close.
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("execute: %w", err)
		}
		return &database.QueryResult{Duration: time.Since(start)}, nil
	}

	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result, err := database.Collect(&cursor{rows: rows, columns: columns})
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

// cursor hands out the server's own text for every value. The simple
// protocol always answers in text format, so json, arrays and ranges
// keep their PostgreSQL spelling.
type cursor struct {
	rows    pgx.Rows
	columns []string
}

func (c *cursor) Columns() []string { return c.columns }
func (c *cursor) Next() bool        { return c.rows.Next() }
func (c *cursor) Err() error        { return c.rows.Err() }

func (c *cursor) Values() ([]any, error) {
	raw := c.rows.RawValues()
	values := make([]any, len(raw))
	for i, b := range raw {
		if b != nil {
			values[i] = string(b)
		}
	}
	return values, nil
}
