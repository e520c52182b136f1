package config

// Default configuration values.
const (
	DefaultRoot           = "."
	DefaultSuites         = "suites.yml"
	DefaultFloatTolerance = 1e-6
	DefaultSnapshot       = "corpus.json"
	DefaultLogLevel       = "info"
	DefaultDebounceMs     = 200

	// MaxWorkers caps the ingestion worker pool.
	MaxWorkers = 256
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in default values for unset configuration fields.
// Workers stays 0, which means one worker per CPU.
func applyDefaults(cfg *Config) {
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}
	if cfg.Suites == "" {
		cfg.Suites = DefaultSuites
	}
	if cfg.FloatTolerance == 0 {
		cfg.FloatTolerance = DefaultFloatTolerance
	}
	if cfg.Snapshot == "" {
		cfg.Snapshot = DefaultSnapshot
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	applyWatchDefaults(cfg)
}

func applyWatchDefaults(cfg *Config) {
	if cfg.Watch == nil {
		cfg.Watch = &WatchConfig{}
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = DefaultDebounceMs
	}
}
