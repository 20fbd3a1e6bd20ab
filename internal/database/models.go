package database

import "time"

// QueryResult holds the result of a SQL statement execution.
type QueryResult struct {
	Columns  []string
	Rows     [][]string
	RowCount int
	Duration time.Duration

	// HasRows is false for statements that produce no row set (DDL, DML).
	HasRows bool
}
