package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/joacominatel/minasql/internal/database"
	"github.com/joacominatel/minasql/internal/render"
)

// Service coordinates statement execution between the input and the database.
type Service struct {
	driver  database.Driver
	out     io.Writer
	timeout time.Duration
	target  string
}

// NewService creates a new application service printing tables to out.
func NewService(driver database.Driver, out io.Writer) *Service {
	return &Service{driver: driver, out: out}
}

// SetTimeout bounds every statement; zero means no limit.
func (s *Service) SetTimeout(d time.Duration) {
	s.timeout = d
}

// Connect establishes a database connection. target is only used in messages.
func (s *Service) Connect(ctx context.Context, target, dsn string) error {
	if err := s.driver.Connect(ctx, dsn); err != nil {
		return &ErrConnection{Target: target, Cause: err}
	}
	s.target = target
	slog.DebugContext(ctx, "Connected", "target", target, "database", s.driver.DatabaseName())
	return nil
}

// Disconnect closes the database connection.
func (s *Service) Disconnect() error {
	return s.driver.Close()
}

// ExecuteQuery runs a SQL statement and returns the results.
func (s *Service) ExecuteQuery(ctx context.Context, query string) (*database.QueryResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	slog.DebugContext(ctx, "Executing statement", "statement", query)

	result, err := s.driver.Execute(ctx, query)
	if err != nil {
		return nil, &ErrQuery{Query: query, Cause: err}
	}

	slog.DebugContext(ctx, "Statement executed",
		"has_rows", result.HasRows,
		"rows", result.RowCount,
		"duration", result.Duration,
	)
	return result, nil
}

// Execute runs a statement and, if it produced a row set, prints it as a table.
// Statements without a row set print nothing.
func (s *Service) Execute(ctx context.Context, statement string) error {
	result, err := s.ExecuteQuery(ctx, statement)
	if err != nil {
		return err
	}
	if !result.HasRows {
		return nil
	}
	return render.Table(s.out, result.Columns, result.Rows)
}

// DatabaseName returns the current database name.
func (s *Service) DatabaseName() string {
	return s.driver.DatabaseName()
}

// Target returns the redacted connection target.
func (s *Service) Target() string {
	return s.target
}
