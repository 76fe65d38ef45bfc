package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	goalps "github.com/reoring/goalps"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = ".alps.yaml"

// Config holds CLI defaults. Flags given on the command line override it.
// Files ending in .toml are read as TOML, everything else as YAML.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`
	// Lang selects issue titles ("en" or "ja").
	Lang     string         `yaml:"lang" toml:"lang"`
	Convert  ConvertConfig  `yaml:"convert" toml:"convert"`
	Validate ValidateConfig `yaml:"validate" toml:"validate"`
}

// ConvertConfig configures the convert command.
type ConvertConfig struct {
	// Target is the default output type (json, xml, yaml or a media type).
	Target  string `yaml:"target" toml:"target"`
	Pretty  bool   `yaml:"pretty" toml:"pretty"`
	Verbose bool   `yaml:"verbose" toml:"verbose"`
}

// ValidateConfig configures the validate command.
type ValidateConfig struct {
	// Strict rejects duplicate object keys.
	Strict   bool  `yaml:"strict" toml:"strict"`
	MaxDepth int   `yaml:"max_depth" toml:"max_depth"`
	MaxBytes int64 `yaml:"max_bytes" toml:"max_bytes"`
	// Debounce is how long --watch waits for more changes before re-validating.
	Debounce Duration `yaml:"debounce" toml:"debounce"`
}

// Duration is a time.Duration written as "300ms" or "1s" in config files.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Lang:     "en",
		Validate: ValidateConfig{
			MaxDepth: 256,
			MaxBytes: 16 << 20,
			Debounce: Duration(300 * time.Millisecond),
		},
	}
}

// Check verifies that the configuration is valid
func (c *Config) Check() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error but was %q", c.LogLevel)
	}
	switch c.Lang {
	case "en", "ja":
	default:
		return fmt.Errorf("lang must be en or ja but was %q", c.Lang)
	}
	if c.Validate.MaxDepth < 0 {
		return errors.New("validate.max_depth must not be negative")
	}
	if c.Validate.MaxBytes < 0 {
		return errors.New("validate.max_bytes must not be negative")
	}
	if c.Validate.Debounce < 0 {
		return errors.New("validate.debounce must not be negative")
	}
	return nil
}

// LoadConfig reads path over the defaults. An empty path falls back to
// .alps.yaml in the working directory, which may be absent.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := decodeConfig(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// decodeConfig decodes data over cfg, rejecting unknown keys.
func decodeConfig(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ParseOpt projects the validate settings onto parse options.
func (c *Config) ParseOpt() goalps.ParseOpt {
	opt := goalps.ParseOpt{MaxDepth: c.Validate.MaxDepth, MaxBytes: c.Validate.MaxBytes}
	if c.Validate.Strict {
		opt.Strictness.OnDuplicateKey = goalps.Error
	} else {
		opt.Strictness.OnDuplicateKey = goalps.Warn
	}
	return opt
}
