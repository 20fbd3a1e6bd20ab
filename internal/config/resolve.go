package config

import "fmt"

// Credentials is what a connection needs beyond its URL.
type Credentials struct {
	URL      string
	Login    string
	Password string
}

// passwordLookup is swapped in tests.
var passwordLookup = LookupPassword

// Resolve picks the URL and credentials to connect with. With an empty
// profile the top-level url/login/password settings are used. A profile
// supplies its own URL; explicit login and password settings still win,
// and a missing password falls back to the OS keyring.
func (cfg *Config) Resolve(profile string) (Credentials, error) {
	if profile == "" {
		return Credentials{URL: cfg.URL, Login: cfg.Login, Password: cfg.Password}, nil
	}

	var conn *Connection
	if profile == DefaultProfile {
		conn = DefaultConnection(cfg)
		if conn == nil {
			return Credentials{}, fmt.Errorf("no saved connections")
		}
	} else {
		var ok bool
		conn, ok = cfg.FindConnection(profile)
		if !ok {
			return Credentials{}, fmt.Errorf("unknown connection %q", profile)
		}
	}

	creds := Credentials{
		URL:      conn.URL(),
		Login:    conn.Username,
		Password: conn.Password,
	}
	if cfg.Login != "" {
		creds.Login = cfg.Login
	}
	if cfg.Password != "" {
		creds.Password = cfg.Password
	}

	if creds.Password == "" && conn.Driver != "sqlite" {
		pw, err := passwordLookup(conn.Name)
		if err != nil {
			return Credentials{}, fmt.Errorf("keyring: %w", err)
		}
		creds.Password = pw
	}

	return creds, nil
}
