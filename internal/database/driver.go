package database

import "context"

// Driver defines the interface for database operations.
// A Driver holds a single session; callers must not share it between goroutines.
type Driver interface {
	// Connect establishes a connection to the database.
	Connect(ctx context.Context, dsn string) error

	// Close closes the database connection.
	Close() error

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// Execute runs one SQL statement. Statements without a row set
	// return a result with HasRows set to false.
	Execute(ctx context.Context, statement string) (*QueryResult, error)

	// DatabaseName returns the name of the connected database.
	DatabaseName() string
}

// Cursor walks a row set one row at a time.
type Cursor interface {
	// Columns returns the column names in result order.
	Columns() []string

	// Next advances to the next row and reports whether one exists.
	Next() bool

	// Values returns the raw values of the current row.
	Values() ([]any, error)

	// Err returns the error, if any, that ended iteration.
	Err() error
}
