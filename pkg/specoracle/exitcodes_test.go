package specoracle_test

import (
	"testing"

	"github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/pkg/specoracle"
)

// TestExitCodeConsistency keeps the public exit codes in line with the
// ones the CLI returns.
func TestExitCodeConsistency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		public   int
		internal int
	}{
		{"Success", specoracle.ExitSuccess, errors.ExitSuccess},
		{"Failure/RuntimeError", specoracle.ExitFailure, errors.ExitRuntimeError},
		{"ConfigError", specoracle.ExitConfigError, errors.ExitConfigError},
		{"EnvError/EnvironmentError", specoracle.ExitEnvError, errors.ExitEnvironmentError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.public != tt.internal {
				t.Errorf("exit code mismatch: public %d, internal %d", tt.public, tt.internal)
			}
		})
	}
}
