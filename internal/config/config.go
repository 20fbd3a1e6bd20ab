package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joacominatel/minasql/internal/database/target"
)

// Config represents the application configuration.
type Config struct {
	URL         string        `mapstructure:"url" yaml:"url,omitempty"`
	Login       string        `mapstructure:"login" yaml:"login,omitempty"`
	Password    string        `mapstructure:"password" yaml:"password,omitempty"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
	Log         Log           `mapstructure:"log" yaml:"log"`
	Connections []Connection  `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences   `mapstructure:"preferences" yaml:"preferences"`
}

// Log configures diagnostic logging on stderr and, optionally, a file.
type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file,omitempty"`
}

// Connection represents a saved database connection profile.
type Connection struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	Path     string `mapstructure:"path" yaml:"path,omitempty"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode,omitempty"`
}

// Preferences holds user preferences.
type Preferences struct {
	DefaultConnection string `mapstructure:"default_connection" yaml:"default_connection"`
}

// URL builds a connection URL from the profile. Credentials are left out;
// they travel separately so they can be merged with command line values.
func (c Connection) URL() string {
	switch c.Driver {
	case "sqlite":
		return "sqlite:" + c.Path
	case "":
		return ""
	}

	u := url.URL{
		Scheme: c.Driver,
		Host:   c.Host,
		Path:   "/" + c.Database,
	}
	if c.Port > 0 {
		u.Host += ":" + strconv.Itoa(c.Port)
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
	}
	return u.String()
}

// DisplayString returns a human-readable summary of the connection.
func (c Connection) DisplayString() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return s
}

var defaultPorts = map[string]int{
	"postgres":  5432,
	"mysql":     3306,
	"sqlserver": 1433,
}

// ParseURL parses a connection URL into a Connection.
func ParseURL(raw string) (Connection, error) {
	raw = target.NormalizeURL(raw)

	if scheme, rest, ok := strings.Cut(raw, ":"); ok && (scheme == "sqlite" || scheme == "sqlite3") {
		path := strings.TrimPrefix(rest, "//")
		if path == "" {
			return Connection{}, fmt.Errorf("invalid url: missing database path")
		}
		return Connection{
			Name:   "sqlite-" + strings.TrimSuffix(lastElem(path), ".db"),
			Driver: "sqlite",
			Path:   path,
		}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid url: %w", err)
	}

	driver, err := normalizeDriver(u.Scheme)
	if err != nil {
		return Connection{}, err
	}

	conn := Connection{
		Driver:   driver,
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	if conn.Port == 0 {
		conn.Port = defaultPorts[driver]
	}

	// Auto-generate a name
	conn.Name = fmt.Sprintf("%s-%s-%d-%s", conn.Driver, conn.Host, conn.Port, conn.Database)

	return conn, nil
}

func normalizeDriver(scheme string) (string, error) {
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql", "pg", "pgx":
		return "postgres", nil
	case "mysql", "mariadb":
		return "mysql", nil
	case "sqlserver", "mssql":
		return "sqlserver", nil
	case "":
		return "", fmt.Errorf("invalid url: missing scheme")
	}
	return "", fmt.Errorf("unsupported database driver %q", scheme)
}

func lastElem(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// FindConnection returns the profile with the given name.
func (cfg *Config) FindConnection(name string) (*Connection, bool) {
	for i := range cfg.Connections {
		if cfg.Connections[i].Name == name {
			return &cfg.Connections[i], true
		}
	}
	return nil, false
}

// HasConnection checks if a connection with the given name already exists.
func (cfg *Config) HasConnection(name string) bool {
	_, ok := cfg.FindConnection(name)
	return ok
}

// AddConnection appends a connection, replacing any profile of the same name.
func (cfg *Config) AddConnection(conn Connection) {
	if existing, ok := cfg.FindConnection(conn.Name); ok {
		*existing = conn
		return
	}
	cfg.Connections = append(cfg.Connections, conn)
}
