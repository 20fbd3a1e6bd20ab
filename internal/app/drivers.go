package app

import (
	"fmt"

	"github.com/joacominatel/minasql/internal/database"
	"github.com/joacominatel/minasql/internal/database/postgres"
	"github.com/joacominatel/minasql/internal/database/sqldb"
	"github.com/joacominatel/minasql/internal/database/target"
)

// NewDriver returns an unconnected driver for a resolved target driver name.
func NewDriver(name string) (database.Driver, error) {
	switch name {
	case target.Postgres:
		return postgres.New(), nil
	case target.SQLite, target.MySQL, target.SQLServer:
		return sqldb.New(name), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", name)
}
