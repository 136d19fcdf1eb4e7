// Package config loads the optional vpnurl configuration file.
//
// The file is chosen explicitly, by the --config flag or the VPNURL_CONFIG
// environment variable. There is no search path: without either, the
// built-in defaults apply. Command-line flags override file values.
//
// Example:
//
//	log:
//	  level: debug
//	output:
//	  format: yaml
//	  indent: 4
//	input:
//	  comments: true
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vpnurl/vpnurl/internal/vfs"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "VPNURL_CONFIG"

// MaxIndent is the widest indentation output.indent accepts.
const MaxIndent = 8

// Output formats for decoded documents.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

type Config struct {
	// Log configures the command logger.
	Log LogConfig `yaml:"log"`

	// Output configures how decoded documents are written.
	Output OutputConfig `yaml:"output"`

	// Input configures how documents are read for encoding.
	Input InputConfig `yaml:"input"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`
}

type OutputConfig struct {
	// Format is json, yaml or toml.
	// Default: json
	Format string `yaml:"format"`

	// Indent is the number of spaces per JSON nesting level, 0-8.
	// Tokens are always encoded with two spaces regardless.
	// Default: 2
	Indent int `yaml:"indent"`
}

type InputConfig struct {
	// Comments lets autodetected input carry JSONC comments and trailing
	// commas.
	// Default: false
	Comments bool `yaml:"comments"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info"},
		Output: OutputConfig{Format: FormatJSON, Indent: 2},
	}
}

// Resolve picks the config file path: flagPath when set, otherwise the
// VPNURL_CONFIG variable read through getenv. An empty result means no
// file.
func Resolve(flagPath string, getenv func(string) string) string {
	if flagPath != "" {
		return flagPath
	}
	if getenv == nil {
		return ""
	}
	return getenv(EnvVar)
}

// Load reads the file at path over the defaults and validates the result.
// An empty path returns Default().
func Load(fsys vfs.FileSystem, path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := vfs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	switch c.Output.Format {
	case FormatJSON, FormatYAML, FormatTOML:
	default:
		errs = append(errs, fmt.Errorf("output.format must be one of %s, %s, %s, got %q", FormatJSON, FormatYAML, FormatTOML, c.Output.Format))
	}

	if c.Output.Indent < 0 || c.Output.Indent > MaxIndent {
		errs = append(errs, fmt.Errorf("output.indent must be between 0 and %d, got %d", MaxIndent, c.Output.Indent))
	}

	return errors.Join(errs...)
}

// IndentString returns the per-level JSON indentation.
func (c *Config) IndentString() string {
	return strings.Repeat(" ", c.Output.Indent)
}

// ParseLevel maps a log.level value to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", level)
}
