// Package config loads server configuration.
//
// Precedence: flags > environment > config file > defaults. Flags are applied
// by the command after Load returns.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Defaults.
const (
	DefaultPort           = 3000
	DefaultPageSize       = 5
	DefaultMaxBodyBytes   = 1 << 20
	DefaultSQLitePath     = "tmp/app.db"
	DefaultWeatherBaseURL = "https://api.open-meteo.com/v1/forecast"
	DefaultWeatherTimeout = 10 * time.Second
	DefaultReadTimeout    = 15 * time.Second
	DefaultWriteTimeout   = 15 * time.Second
)

type Config struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	API     APIConfig     `yaml:"api"`
	UI      UIConfig      `yaml:"ui"`
	Weather WeatherConfig `yaml:"weather"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	// Driver is one of memory, sqlite or postgres.
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
	// DatabaseURL is the postgres DSN.
	DatabaseURL string `yaml:"database_url"`
	// Seed fills a fresh store with the demo items.
	Seed bool `yaml:"seed"`
}

type APIConfig struct {
	// StrictNotFound reports 404 for update/delete of unknown ids and 400
	// for unreadable bodies instead of acknowledging them.
	StrictNotFound bool  `yaml:"strict_not_found"`
	MaxBodyBytes   int64 `yaml:"max_body_bytes"`
}

type UIConfig struct {
	PageSize int    `yaml:"page_size"`
	HTMXSrc  string `yaml:"htmx_src"`
	// ViewsDir loads templates from disk and reloads them on change.
	ViewsDir string `yaml:"views_dir"`
}

type WeatherConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Port:         DefaultPort,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Driver:     DriverMemory,
			SQLitePath: DefaultSQLitePath,
			Seed:       true,
		},
		API: APIConfig{
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		UI: UIConfig{
			PageSize: DefaultPageSize,
		},
		Weather: WeatherConfig{
			BaseURL: DefaultWeatherBaseURL,
			Timeout: DefaultWeatherTimeout,
		},
	}
}

// Error reports a problem with a config file or value.
type Error struct {
	Source  string
	Message string
}

func (e *Error) Error() string {
	return e.Source + ": " + e.Message
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &Error{Source: path, Message: err.Error()}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Source: "PORT", Message: fmt.Sprintf("invalid port %q", v)}
		}
		c.Port = port
	}
	if v, ok := lookup("HTMX_SRC"); ok {
		c.UI.HTMXSrc = v
	}
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.Store.DatabaseURL = v
	}
	if v, ok := lookup("STORE_DRIVER"); ok && v != "" {
		c.Store.Driver = v
	}
	if v, ok := lookup("SQLITE_PATH"); ok && v != "" {
		c.Store.SQLitePath = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate checks the values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, &Error{Source: "port", Message: fmt.Sprintf("out of range: %d", c.Port)})
	}
	if c.UI.PageSize <= 0 {
		errs = append(errs, &Error{Source: "ui.page_size", Message: "must be positive"})
	}
	if c.API.MaxBodyBytes <= 0 {
		errs = append(errs, &Error{Source: "api.max_body_bytes", Message: "must be positive"})
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, &Error{Source: "store.sqlite_path", Message: "required for sqlite"})
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, &Error{Source: "store.database_url", Message: "required for postgres"})
		}
	default:
		errs = append(errs, &Error{Source: "store.driver", Message: fmt.Sprintf("unknown driver %q", c.Store.Driver)})
	}

	if c.UI.HTMXSrc != "" {
		if _, err := os.Stat(c.UI.HTMXSrc); err != nil {
			errs = append(errs, &Error{Source: "HTMX_SRC", Message: err.Error()})
		}
	}

	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
