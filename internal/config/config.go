// Package config handles resolving configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// LogLevel is the minimum level of log records emitted.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// DefaultSessionTTL is how long a session remains valid after it is issued.
const DefaultSessionTTL = 5 * time.Minute

// Config is the application configuration.
type Config struct {
	LogLevel   LogLevel      `yaml:"log_level"`
	WebAddress string        `yaml:"web_address"`
	DBFilepath string        `yaml:"db_filepath"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
	DevMode    bool          `yaml:"dev_mode"`
}

// Default returns a version of the config with all default values populated.
func Default() *Config {
	return &Config{
		LogLevel:   LogLevelInfo,
		WebAddress: "localhost:9999",
		DBFilepath: filepath.Join(xdg.DataHome, "wicket", "db.sqlite"),
		SessionTTL: DefaultSessionTTL,
		BcryptCost: bcrypt.DefaultCost,
		DevMode:    false,
	}
}

// Load loads a YAML configuration file from a path, merges it with defaults, and
// validates it for completeness.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // allow the config file to be loaded from anywhere
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}
	cfg.LogLevel = LogLevel(strings.ToUpper(string(cfg.LogLevel)))
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate reports every field holding an unusable value.
func (c *Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	if c.DBFilepath == "" {
		errs = append(errs, errors.New("db_filepath: must be set"))
	}
	if c.SessionTTL < time.Second {
		errs = append(errs, fmt.Errorf("session_ttl: must be at least 1s, got %s", c.SessionTTL))
	} else if c.SessionTTL%time.Second != 0 {
		errs = append(errs, fmt.Errorf("session_ttl: must be whole seconds, got %s", c.SessionTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt_cost: must be in [%d, %d], got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	return errors.Join(errs...)
}
