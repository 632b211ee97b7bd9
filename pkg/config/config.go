// Package config loads the project configuration file, .mapcheck.yaml or
// .mapcheck.toml, found in or above the checked directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

// FileNames are the configuration files looked for, in order of preference.
var FileNames = []string{".mapcheck.yaml", ".mapcheck.yml", ".mapcheck.toml"}

// Formats are the accepted output formats.
var Formats = []string{"text", "json", "yaml", "msgpack"}

// Config is the project configuration. Every field is optional; command
// line flags override file values.
type Config struct {
	// Path is the file the configuration was loaded from, if any.
	Path string `yaml:"-" toml:"-"`

	// Disabled lists check IDs, or category prefixes ending in "/", to skip.
	Disabled []string `yaml:"disabled,omitempty" toml:"disabled,omitempty"`
	// Only restricts the run to these check IDs or prefixes.
	Only []string `yaml:"only,omitempty" toml:"only,omitempty"`

	// MinSeverity drops issues below this severity from reports.
	MinSeverity *issue.Severity `yaml:"min_severity,omitempty" toml:"min_severity,omitempty"`
	// Difficulty shows only issues that apply to this tier.
	Difficulty *beatmap.Difficulty `yaml:"difficulty,omitempty" toml:"difficulty,omitempty"`
	// Where is an expression issues must satisfy to be reported.
	Where string `yaml:"where,omitempty" toml:"where,omitempty"`

	Format string `yaml:"format,omitempty" toml:"format,omitempty"`
	// Jobs bounds how many sets are checked at once. Zero means one per CPU.
	Jobs int `yaml:"jobs,omitempty" toml:"jobs,omitempty"`
}

// Find walks up from dir looking for a configuration file. It returns the
// empty string when there is none.
func Find(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("stat %s: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Discover loads the configuration file found from dir, or returns an empty
// configuration when there is none.
func Discover(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates a configuration file. The format follows the
// file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg *Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err = LoadTOML(data)
	} else {
		cfg, err = LoadYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// LoadYAML decodes a YAML configuration, rejecting unknown keys.
func LoadYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadTOML decodes a TOML configuration, rejecting unknown keys.
func LoadTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that the decoders cannot.
func (c *Config) Validate() error {
	if c.Format != "" && !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("format %q: must be one of %s", c.Format, strings.Join(Formats, ", "))
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs: must not be negative, got %d", c.Jobs)
	}
	for _, id := range slices.Concat(c.Disabled, c.Only) {
		if strings.TrimSpace(id) == "" {
			return errors.New("check IDs must not be empty")
		}
	}
	return nil
}

// OutputFormat returns the configured format, defaulting to text.
func (c *Config) OutputFormat() string {
	if c.Format == "" {
		return "text"
	}
	return c.Format
}
