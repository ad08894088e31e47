// Package config loads settings for the rql command from an optional config
// file and RQL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load.
// RQL_LOG_LEVEL sets log.level.
const EnvPrefix = "RQL_"

// Config holds the command settings
type Config struct {
	Format string        `mapstructure:"format"` // empty picks table on a terminal, jsonl otherwise
	Limit  int           `mapstructure:"limit"`  // negative means no limit
	Log    LogConfig     `mapstructure:"log"`
	Tables []TableConfig `mapstructure:"tables"`
}

// LogConfig configures the diagnostics logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TableConfig binds a table name to a data file
type TableConfig struct {
	Name   string `mapstructure:"name"`
	Path   string `mapstructure:"path"`
	Filter string `mapstructure:"filter"` // optional prefilter expression
}

// Load reads configuration. An explicit path must exist; without one, rql.*
// in the working directory is read if present. Environment variables win
// over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("format", "")
	v.SetDefault("limit", -1)
	v.SetDefault("log.level", "WARN")
	v.SetDefault("log.format", "text")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("rql")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// RQL_LOG_LEVEL -> log.level
	for _, envStr := range os.Environ() {
		key, value, ok := strings.Cut(envStr, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		propKey := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "_", "."))
		if propKey == "" || propKey == "tables" {
			continue
		}
		v.Set(propKey, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every table has a name and a path and that names are
// unique.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Tables))
	for i, t := range c.Tables {
		if t.Name == "" {
			return fmt.Errorf("table %d: name is required", i)
		}
		if t.Path == "" {
			return fmt.Errorf("table %q: path is required", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("table %q is defined more than once", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// AddTable adds or replaces a table binding
func (c *Config) AddTable(t TableConfig) {
	for i := range c.Tables {
		if c.Tables[i].Name == t.Name {
			c.Tables[i] = t
			return
		}
	}
	c.Tables = append(c.Tables, t)
}

// ParseTable parses a name=path table binding
func ParseTable(s string) (TableConfig, error) {
	name, path, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	path = strings.TrimSpace(path)
	if !ok || name == "" || path == "" {
		return TableConfig{}, fmt.Errorf("invalid table binding %q, expected name=path", s)
	}
	return TableConfig{Name: name, Path: path}, nil
}
