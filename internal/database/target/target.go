// Package target resolves a connection URL and credentials into the
// driver and data source name used to open a database.
package target

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/xo/dburl"
)

// Driver names understood by the rest of the program.
const (
	Postgres  = "postgres"
	SQLite    = "sqlite"
	MySQL     = "mysql"
	SQLServer = "sqlserver"
)

// DefaultURL is the embedded database used when no URL is given.
const DefaultURL = "sqlite:~/default.db"

// Target is a resolved connection target.
type Target struct {
	Driver string
	DSN    string

	// Display is the URL with any password removed, safe for logs.
	Display string
}

// Parse resolves raw into a Target. A leading "jdbc:" is ignored.
// user and password are applied only when the URL carries no user of its own.
func Parse(raw, user, password string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultURL
	}
	raw = NormalizeURL(raw)

	if path, ok := sqlitePath(raw); ok {
		if path == "" {
			return Target{}, fmt.Errorf("invalid url %q: missing database path", raw)
		}
		expanded, err := expandHome(path)
		if err != nil {
			return Target{}, err
		}
		return Target{Driver: SQLite, DSN: expanded, Display: "sqlite:" + expanded}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" {
		return Target{}, fmt.Errorf("invalid url %q: missing scheme", raw)
	}
	if user != "" && (u.User == nil || u.User.Username() == "") {
		if password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}

	parsed, err := dburl.Parse(u.String())
	if err != nil {
		return Target{}, fmt.Errorf("invalid url: %w", err)
	}

	driver, err := driverName(parsed.Driver)
	if err != nil {
		return Target{}, err
	}

	return Target{
		Driver:  driver,
		DSN:     parsed.DSN,
		Display: u.Redacted(),
	}, nil
}

// NormalizeURL strips a "jdbc:" prefix and rewrites the JDBC SQL Server
// form "sqlserver://host:port;databaseName=db;user=u;password=p" into
// "sqlserver://u:p@host:port/db". Other properties become query
// parameters. Any other URL comes back without the prefix only.
func NormalizeURL(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "jdbc:")

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || !strings.EqualFold(scheme, "sqlserver") {
		return raw
	}
	host, props, ok := strings.Cut(rest, ";")
	if !ok {
		return raw
	}

	u := &url.URL{Scheme: scheme, Host: host}
	var instance, database, user, password string
	if h, inst, ok := strings.Cut(host, `\`); ok {
		u.Host, instance = h, inst
	}

	q := url.Values{}
	for _, prop := range strings.Split(props, ";") {
		k, v, _ := strings.Cut(prop, "=")
		k = strings.TrimSpace(k)
		switch strings.ToLower(k) {
		case "":
		case "databasename", "database":
			database = v
		case "instancename":
			instance = v
		case "user", "username":
			user = v
		case "password":
			password = v
		default:
			q.Set(k, v)
		}
	}

	switch {
	case user != "" && password != "":
		u.User = url.UserPassword(user, password)
	case user != "":
		u.User = url.User(user)
	}
	if instance != "" {
		u.Path = "/" + instance
	}
	if database != "" {
		u.Path += "/" + database
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func driverName(name string) (string, error) {
	switch name {
	case "postgres", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	case "sqlite3", "sqlite", "moderncsqlite":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", name)
}

// sqlitePath recognises "sqlite:path", "sqlite3:path" and "sqlite://path".
func sqlitePath(raw string) (string, bool) {
	scheme, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
	default:
		return "", false
	}
	return strings.TrimPrefix(rest, "//"), true
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
