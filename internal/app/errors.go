package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Target string
	Cause  error
}

func (e *ErrConnection) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("connection error: %v", e.Cause)
	}
	return fmt.Sprintf("connection error (%s): %v", e.Target, e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrQuery represents a query execution error.
type ErrQuery struct {
	Query string
	Cause error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("query error: %v", e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}

// Diagnose expands err into a multi-line report with everything the
// driver told us about the failure.
func Diagnose(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(err.Error())

	var qe *ErrQuery
	if errors.As(err, &qe) && qe.Query != "" {
		fmt.Fprintf(&b, "\n  statement: %s", qe.Query)
	}

	var pgErr *pgconn.PgError
	var myErr *mysql.MySQLError
	switch {
	case errors.As(err, &pgErr):
		fmt.Fprintf(&b, "\n  severity: %s", pgErr.Severity)
		fmt.Fprintf(&b, "\n  sqlstate: %s", pgErr.Code)
		if pgErr.Detail != "" {
			fmt.Fprintf(&b, "\n  detail: %s", pgErr.Detail)
		}
		if pgErr.Hint != "" {
			fmt.Fprintf(&b, "\n  hint: %s", pgErr.Hint)
		}
		if pgErr.Position > 0 {
			fmt.Fprintf(&b, "\n  position: %d", pgErr.Position)
		}
		if pgErr.Where != "" {
			fmt.Fprintf(&b, "\n  where: %s", pgErr.Where)
		}
	case errors.As(err, &myErr):
		fmt.Fprintf(&b, "\n  error number: %d", myErr.Number)
		if myErr.SQLState != [5]byte{} {
			fmt.Fprintf(&b, "\n  sqlstate: %s", string(myErr.SQLState[:]))
		}
	}

	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(&b, "\n  caused by: %v", cause)
	}

	return b.String()
}
