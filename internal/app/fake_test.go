package app

import (
	"context"
	"errors"
	"strings"

	"github.com/joacominatel/minasql/internal/database"
)

var errBadSQL = errors.New(`syntax error at or near "BAD"`)

// fakeDriver answers SELECT statements with a canned result and fails on
// anything starting with BAD.
type fakeDriver struct {
	executed  []string
	connected bool
	closed    bool
	connErr   error
}

func (f *fakeDriver) Connect(ctx context.Context, dsn string) error {
	if f.connErr != nil {
		return f.connErr
	}
	f.connected = true
	return nil
}

func (f *fakeDriver) Close() error {
	f.closed = true
	return nil
}

func (f *fakeDriver) Ping(ctx context.Context) error { return nil }

func (f *fakeDriver) DatabaseName() string { return "fake" }

func (f *fakeDriver) Execute(ctx context.Context, statement string) (*database.QueryResult, error) {
	f.executed = append(f.executed, statement)

	switch {
	case strings.HasPrefix(statement, "BAD"):
		return nil, errBadSQL
	case strings.HasPrefix(statement, "SELECT"):
		value := strings.TrimSpace(strings.TrimPrefix(statement, "SELECT"))
		return &database.QueryResult{
			Columns:  []string{value},
			Rows:     [][]string{{value}},
			RowCount: 1,
			HasRows:  true,
		}, nil
	}
	return &database.QueryResult{}, nil
}
