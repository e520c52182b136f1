package specoracle

// Exit codes returned by the specoracle CLI.
const (
	// ExitSuccess indicates the command completed and every check passed.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure or a failed check.
	ExitFailure = 1

	// ExitConfigError indicates an invalid configuration, a usage error or
	// a fatal ingestion error.
	ExitConfigError = 2

	// ExitEnvError indicates an environment error (unreadable root, no file watcher).
	ExitEnvError = 3
)
