package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// File names searched for when discovering a project.
const (
	JSONFileName = "specoracle.json"
	TOMLFileName = "specoracle.toml"
)

// Load reads and parses a configuration file without applying defaults.
func Load(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

// LoadWithDefaults reads a config file and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

// LoadAndValidate reads a config file, applies defaults, validates, and returns warnings.
func LoadAndValidate(path string) (*Config, []string, error) {
	cfg, unknownWarnings, err := load(path)
	if err != nil {
		return nil, nil, err
	}

	applyDefaults(cfg)

	validationWarnings, err := Validate(cfg)

	allWarnings := make([]string, 0, len(unknownWarnings)+len(validationWarnings))
	allWarnings = append(allWarnings, unknownWarnings...)
	allWarnings = append(allWarnings, validationWarnings...)

	if err != nil {
		return nil, allWarnings, err
	}

	return cfg, allWarnings, nil
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadWithWarnings(path, data)
}

// LoadWithWarnings parses config data and returns any unknown field warnings.
// The format follows the file extension: .toml is TOML, anything else JSON.
func LoadWithWarnings(path string, data []byte) (*Config, []string, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return loadTOML(data)
	}
	return loadJSON(data)
}

func loadTOML(data []byte) (*Config, []string, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown field %q (ignored)", key.String()))
	}
	return &cfg, warnings, nil
}

// RootDir resolves the corpus root against dir, the directory holding the
// config file.
func (c *Config) RootDir(dir string) string {
	return resolvePath(dir, c.Root)
}

// SuitesPath resolves the suite-definition file, which is relative to the root.
func (c *Config) SuitesPath(dir string) string {
	return resolvePath(c.RootDir(dir), c.Suites)
}

// SnapshotPath resolves the snapshot file against dir.
func (c *Config) SnapshotPath(dir string) string {
	return resolvePath(dir, c.Snapshot)
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	if c.Watch == nil || c.Watch.DebounceMs <= 0 {
		return DefaultDebounceMs * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}
