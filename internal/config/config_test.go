package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/zalando/go-keyring"
)

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	dir := filepath.Join(home, configDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("url", "u", "sqlite:~/default.db", "")
	flags.StringP("login", "l", "", "")
	flags.StringP("password", "p", "", "")
	flags.Duration("timeout", 0, "")
	flags.String("log-level", "warn", "")
	return flags
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.URL != "sqlite:~/default.db" {
		t.Errorf("expected default url, got %q", cfg.URL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected default log level warn, got %q", cfg.Log.Level)
	}
	if len(cfg.Connections) != 0 {
		t.Errorf("expected no connections, got %d", len(cfg.Connections))
	}
}

func TestLoadPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, home, `
url: postgres://file-host/app
login: file-user
timeout: 5s
log:
  level: info
connections:
  - name: prod
    driver: postgres
    host: db.internal
    port: 5432
    database: app
    username: reader
`)
	t.Setenv("MINASQL_LOGIN", "env-user")

	flags := testFlags()
	if err := flags.Parse([]string{"--log-level", "debug"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.URL != "postgres://file-host/app" {
		t.Errorf("expected url from file, got %q", cfg.URL)
	}
	if cfg.Login != "env-user" {
		t.Errorf("expected login from env, got %q", cfg.Login)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level from flag, got %q", cfg.Log.Level)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.Timeout)
	}
	if len(cfg.Connections) != 1 || cfg.Connections[0].Host != "db.internal" {
		t.Fatalf("unexpected connections %+v", cfg.Connections)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, home, "url: [unterminated")

	if _, err := Load(nil); err == nil {
		t.Fatalf("expected an error for a malformed config file")
	}
}

func TestConnectionURLRoundTrip(t *testing.T) {
	tests := []struct {
		raw     string
		driver  string
		wantURL string
	}{
		{"postgresql://bob:pw@db:5433/app?sslmode=disable", "postgres", "postgres://db:5433/app?sslmode=disable"},
		{"jdbc:postgresql://db/app", "postgres", "postgres://db:5432/app"},
		{"mysql://root@localhost/shop", "mysql", "mysql://localhost:3306/shop"},
		{"sqlserver://sa@mssql:1433/dw", "sqlserver", "sqlserver://mssql:1433/dw"},
		{"sqlite:/var/data/app.db", "sqlite", "sqlite:/var/data/app.db"},
	}

	for _, tt := range tests {
		conn, err := ParseURL(tt.raw)
		if err != nil {
			t.Fatalf("ParseURL(%q) returned error: %v", tt.raw, err)
		}
		if conn.Driver != tt.driver {
			t.Errorf("ParseURL(%q): expected driver %q, got %q", tt.raw, tt.driver, conn.Driver)
		}
		if got := conn.URL(); got != tt.wantURL {
			t.Errorf("ParseURL(%q).URL() = %q, want %q", tt.raw, got, tt.wantURL)
		}
	}
}

func TestParseURLCredentialsAndName(t *testing.T) {
	conn, err := ParseURL("postgres://bob:pw@db:5433/app")
	if err != nil {
		t.Fatalf("ParseURL returned error: %v", err)
	}
	if conn.Username != "bob" || conn.Password != "pw" {
		t.Errorf("unexpected credentials %q/%q", conn.Username, conn.Password)
	}
	if conn.Name != "postgres-db-5433-app" {
		t.Errorf("unexpected generated name %q", conn.Name)
	}
	if conn.DisplayString() != "bob@db:5433/app" {
		t.Errorf("unexpected display string %q", conn.DisplayString())
	}
}

func TestParseURLJDBCSQLServer(t *testing.T) {
	conn, err := ParseURL("jdbc:sqlserver://sql1:1433;databaseName=warehouse;user=sa;password=pw")
	if err != nil {
		t.Fatalf("ParseURL returned error: %v", err)
	}
	if conn.Driver != "sqlserver" || conn.Host != "sql1" || conn.Port != 1433 || conn.Database != "warehouse" {
		t.Errorf("unexpected connection %+v", conn)
	}
	if conn.Username != "sa" || conn.Password != "pw" {
		t.Errorf("unexpected credentials %q/%q", conn.Username, conn.Password)
	}
}

func TestParseURLRejectsUnknownScheme(t *testing.T) {
	for _, raw := range []string{"h2:mem", "oracle://x/y", "sqlite:"} {
		if _, err := ParseURL(raw); err == nil {
			t.Errorf("ParseURL(%q): expected an error", raw)
		}
	}
}

func TestResolve(t *testing.T) {
	saved := passwordLookup
	t.Cleanup(func() { passwordLookup = saved })
	passwordLookup = func(profile string) (string, error) {
		if profile == "prod" {
			return "from-keyring", nil
		}
		return "", nil
	}

	cfg := &Config{
		URL: "sqlite:/tmp/x.db",
		Connections: []Connection{
			{Name: "local", Driver: "sqlite", Path: "/tmp/local.db"},
			{Name: "prod", Driver: "postgres", Host: "db", Port: 5432, Database: "app", Username: "reader"},
		},
		Preferences: Preferences{DefaultConnection: "prod"},
	}

	creds, err := cfg.Resolve("")
	if err != nil || creds.URL != "sqlite:/tmp/x.db" {
		t.Fatalf("expected top-level url, got %+v (%v)", creds, err)
	}

	creds, err = cfg.Resolve("prod")
	if err != nil {
		t.Fatalf("Resolve(prod) returned error: %v", err)
	}
	if creds.URL != "postgres://db:5432/app" || creds.Login != "reader" || creds.Password != "from-keyring" {
		t.Errorf("unexpected credentials %+v", creds)
	}

	creds, err = cfg.Resolve(DefaultProfile)
	if err != nil || creds.URL != "postgres://db:5432/app" {
		t.Errorf("expected the preferred profile, got %+v (%v)", creds, err)
	}

	cfg.Login, cfg.Password = "admin", "explicit"
	creds, _ = cfg.Resolve("prod")
	if creds.Login != "admin" || creds.Password != "explicit" {
		t.Errorf("explicit credentials should win, got %+v", creds)
	}

	if _, err := cfg.Resolve("missing"); err == nil {
		t.Errorf("expected an error for an unknown profile")
	}
}

func TestResolveKeyringFailure(t *testing.T) {
	saved := passwordLookup
	t.Cleanup(func() { passwordLookup = saved })
	passwordLookup = func(string) (string, error) { return "", errors.New("locked") }

	cfg := &Config{Connections: []Connection{{Name: "prod", Driver: "postgres", Host: "db"}}}
	if _, err := cfg.Resolve("prod"); err == nil {
		t.Fatalf("expected the keyring error to surface")
	}
}

func TestSaveConnection(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	keyring.MockInit()

	writeConfig(t, home, "login: keep-me\n")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	conn, err := ParseURL("postgres://bob:s3cret@db:5432/app")
	if err != nil {
		t.Fatalf("ParseURL returned error: %v", err)
	}
	conn.Name = "prod"

	if err := SaveConnection(cfg, conn); err != nil {
		t.Fatalf("SaveConnection returned error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(home, configDir, "config.yaml"))
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if strings.Contains(string(raw), "s3cret") {
		t.Errorf("password was written to the config file:\n%s", raw)
	}

	reloaded, err := Load(nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Login != "keep-me" {
		t.Errorf("existing settings were lost, login = %q", reloaded.Login)
	}
	saved, ok := reloaded.FindConnection("prod")
	if !ok {
		t.Fatalf("saved profile not found in %+v", reloaded.Connections)
	}
	if saved.Host != "db" || saved.Username != "bob" {
		t.Errorf("unexpected saved profile %+v", saved)
	}

	pw, err := LookupPassword("prod")
	if err != nil || pw != "s3cret" {
		t.Errorf("expected keyring password, got %q (%v)", pw, err)
	}
}

func TestAddConnectionReplaces(t *testing.T) {
	cfg := &Config{}
	cfg.AddConnection(Connection{Name: "a", Host: "one"})
	cfg.AddConnection(Connection{Name: "a", Host: "two"})
	if len(cfg.Connections) != 1 || cfg.Connections[0].Host != "two" {
		t.Fatalf("unexpected connections %+v", cfg.Connections)
	}
	if !cfg.HasConnection("a") || cfg.HasConnection("b") {
		t.Fatalf("HasConnection gave the wrong answer")
	}
}
