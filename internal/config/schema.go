// Package config loads and validates specoracle.json and specoracle.toml.
package config

import "log/slog"

// Config is the complete project configuration.
type Config struct {
	Root           string       `json:"root,omitempty" toml:"root"`
	Suites         string       `json:"suites,omitempty" toml:"suites"`
	Workers        int          `json:"workers,omitempty" toml:"workers"`
	FloatTolerance float64      `json:"float_tolerance,omitempty" toml:"float_tolerance"`
	Snapshot       string       `json:"snapshot,omitempty" toml:"snapshot"`
	LogLevel       string       `json:"log_level,omitempty" toml:"log_level"`
	Watch          *WatchConfig `json:"watch,omitempty" toml:"watch"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	DebounceMs int `json:"debounce_ms,omitempty" toml:"debounce_ms"`
}

// SlogLevel maps LogLevel to a slog level. Unknown names read as info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
