package config

import (
	"fmt"
	"math"
	"slices"
)

// LogLevels lists the accepted log_level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration with defaults applied and returns warnings
// for non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if cfg.Workers < 0 {
		return nil, &ValidationError{Field: "workers", Message: "must be 0 (one per CPU) or positive"}
	}
	if cfg.Workers > MaxWorkers {
		warnings = append(warnings, fmt.Sprintf("workers = %d exceeds %d and will be capped", cfg.Workers, MaxWorkers))
	}

	if cfg.FloatTolerance <= 0 || math.IsNaN(cfg.FloatTolerance) || math.IsInf(cfg.FloatTolerance, 0) {
		return nil, &ValidationError{Field: "float_tolerance", Message: "must be a positive finite number"}
	}
	if cfg.FloatTolerance >= 1 {
		warnings = append(warnings, fmt.Sprintf("float_tolerance = %g accepts values differing by 100%% or more", cfg.FloatTolerance))
	}

	if !slices.Contains(LogLevels, cfg.LogLevel) {
		return nil, &ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error (got %q)", cfg.LogLevel),
		}
	}

	if cfg.Watch != nil && cfg.Watch.DebounceMs < 0 {
		return nil, &ValidationError{Field: "watch.debounce_ms", Message: "must not be negative"}
	}

	return warnings, nil
}
