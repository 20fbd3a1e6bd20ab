package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const (
	configDir  = ".minasql"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "MINASQL"

	keyringService = "minasql"
)

// DefaultProfile selects the preferred saved connection.
const DefaultProfile = "@default"

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"url":       "url",
	"login":     "login",
	"password":  "password",
	"timeout":   "timeout",
	"log-level": "log.level",
}

// Load reads the configuration from ~/.minasql/config.yaml, the MINASQL_*
// environment and, when flags is not nil, the command line.
// Returns a config holding only defaults if the file does not exist.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("url", "sqlite:~/default.db")
	v.SetDefault("login", "")
	v.SetDefault("password", "")
	v.SetDefault("timeout", "0s")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to ~/.minasql/config.yaml.
// Passwords are never written; use StorePassword.
func Save(cfg *Config) error {
	dir, err := configDirPath()
	if err != nil {
		return fmt.Errorf("config dir: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v, err := newViper()
	if err != nil {
		return err
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	connections := make([]Connection, len(cfg.Connections))
	for i, c := range cfg.Connections {
		c.Password = ""
		connections[i] = c
	}

	v.Set("connections", connections)
	v.Set("preferences", cfg.Preferences)

	path := filepath.Join(dir, configFile+"."+configType)
	return v.WriteConfigAs(path)
}

// SaveConnection adds conn to cfg, stores its password in the OS keyring
// and persists the profile.
func SaveConnection(cfg *Config, conn Connection) error {
	if conn.Password != "" {
		if err := StorePassword(conn.Name, conn.Password); err != nil {
			return fmt.Errorf("store password: %w", err)
		}
	}
	cfg.AddConnection(conn)
	return Save(cfg)
}

// DefaultConnection returns the default connection from config, or the first one.
func DefaultConnection(cfg *Config) *Connection {
	if len(cfg.Connections) == 0 {
		return nil
	}

	if cfg.Preferences.DefaultConnection != "" {
		if c, ok := cfg.FindConnection(cfg.Preferences.DefaultConnection); ok {
			return c
		}
	}

	return &cfg.Connections[0]
}

// LookupPassword fetches the keyring password saved for a profile.
// A missing entry is not an error.
func LookupPassword(profile string) (string, error) {
	pw, err := keyring.Get(keyringService, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return pw, err
}

// StorePassword saves a profile password in the OS keyring.
func StorePassword(profile, password string) error {
	return keyring.Set(keyringService, profile, password)
}

func newViper() (*viper.Viper, error) {
	dir, err := configDirPath()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	return v, nil
}

func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
