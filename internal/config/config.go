// Package config loads scrollviz settings from ~/.scrollviz/config.yaml, a
// storyboard-local overlay and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognised by New.
const (
	EnvHome        = "SCROLLVIZ_HOME"
	EnvConfig      = "SCROLLVIZ_CONFIG"
	EnvLogLevel    = "SCROLLVIZ_LOG_LEVEL"
	EnvLogFormat   = "SCROLLVIZ_LOG_FORMAT"
	EnvHTTPTimeout = "SCROLLVIZ_HTTP_TIMEOUT"
)

// Defaults.
const (
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultCheckConcurrency = 4
	DefaultExportWidth      = 960
	DefaultExportHeight     = 600
	DefaultExportDir        = "charts"
	DefaultTheme            = "auto"
	DefaultChartWidth       = 48
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Export  ExportConfig  `yaml:"export"`
	View    ViewConfig    `yaml:"view"`

	configPath string
	loadErr    error
}

// FetchConfig controls how data files are read.
type FetchConfig struct {
	HTTPTimeout      time.Duration `yaml:"http_timeout"`
	CheckConcurrency int           `yaml:"check_concurrency"`
}

// ExportConfig controls PNG export.
type ExportConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Dir    string `yaml:"dir"`
}

// ViewConfig controls the interactive reader.
type ViewConfig struct {
	// Theme is a glamour style name, or "auto".
	Theme      string `yaml:"theme"`
	ChartWidth int    `yaml:"chart_width"`
}

// Default returns a configuration with built-in defaults and no file.
func Default() *Config {
	return &Config{
		Logging: defaultLogging(),
		Fetch: FetchConfig{
			HTTPTimeout:      DefaultHTTPTimeout,
			CheckConcurrency: DefaultCheckConcurrency,
		},
		Export: ExportConfig{
			Width:  DefaultExportWidth,
			Height: DefaultExportHeight,
			Dir:    DefaultExportDir,
		},
		View: ViewConfig{
			Theme:      DefaultTheme,
			ChartWidth: DefaultChartWidth,
		},
	}
}

// New returns the configuration read from the default path (or
// SCROLLVIZ_CONFIG) with environment overrides applied. A missing file yields
// the defaults. A file that cannot be read or parsed also yields the defaults,
// but the failure is kept: LoadError reports it and Validate fails with it.
func New() *Config {
	path := os.Getenv(EnvConfig)
	if path == "" {
		path = DefaultPath()
	}

	cfg, err := Load(path)
	if err != nil {
		cfg = Default()
		cfg.configPath = path
		cfg.loadErr = err
	}
	cfg.ApplyEnv()
	return cfg
}

// LoadError returns why the config file could not be used, or nil.
func (c *Config) LoadError() error {
	return c.loadErr
}

// Load reads the file at path over the defaults. A missing file is not an
// error. Environment overrides are not applied.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.configPath = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies SCROLLVIZ_* overrides. Unparseable values are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		if d, err := parseDuration(v); err == nil {
			c.Fetch.HTTPTimeout = d
		}
	}
}

// parseDuration accepts a Go duration or a bare number of seconds.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate checks every section. A config whose file failed to load is
// invalid.
func (c *Config) Validate() error {
	if c.loadErr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, c.loadErr)
	}
	switch {
	case c.Fetch.HTTPTimeout <= 0:
		return fmt.Errorf("%w: fetch.http_timeout must be positive, got %s", ErrInvalidConfig, c.Fetch.HTTPTimeout)
	case c.Fetch.CheckConcurrency < 1:
		return fmt.Errorf("%w: fetch.check_concurrency must be >= 1, got %d", ErrInvalidConfig, c.Fetch.CheckConcurrency)
	case c.Export.Width < 1 || c.Export.Height < 1:
		return fmt.Errorf("%w: export size must be positive, got %dx%d", ErrInvalidConfig, c.Export.Width, c.Export.Height)
	case c.View.ChartWidth < 1:
		return fmt.Errorf("%w: view.chart_width must be >= 1, got %d", ErrInvalidConfig, c.View.ChartWidth)
	}
	return c.Logging.Validate()
}

// ConfigPath returns the file the configuration was read from or will be
// saved to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes where Save writes.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("no config path set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", c.configPath, err)
	}
	return nil
}

// GetConfigDir returns the scrollviz configuration directory: SCROLLVIZ_HOME
// or ~/.scrollviz.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".scrollviz"), nil
}

// DefaultPath returns the global config file path. It falls back to a path
// relative to the working directory when no home directory is known.
func DefaultPath() string {
	dir, err := GetConfigDir()
	if err != nil {
		return filepath.Join(".scrollviz", "config.yaml")
	}
	return filepath.Join(dir, "config.yaml")
}
