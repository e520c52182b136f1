package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Message: "something failed"},
			expected: "something failed",
		},
		{
			name:     "with suite",
			err:      &Error{Suite: "default", Message: "no files"},
			expected: "[default] no files",
		},
		{
			name:     "with file and document",
			err:      &Error{File: "a.mzn", Document: 2, Message: "missing expected"},
			expected: "a.mzn (document 2): missing expected",
		},
		{
			name:     "with file line and cause",
			err:      &Error{File: "a.mzn", Line: 7, Message: "bad tag", Cause: errors.New("unknown tag !Foo")},
			expected: "a.mzn:7: bad tag: unknown tag !Foo",
		},
		{
			name:     "cause only",
			err:      &Error{Cause: errors.New("boom")},
			expected: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &Error{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see the cause")
	}

	errNoCause := &Error{Message: "no cause"}
	if got := errNoCause.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestError_ExitCode(t *testing.T) {
	tests := []struct {
		name     string
		kind     ErrorKind
		expected int
	}{
		{"runtime", KindRuntime, ExitRuntimeError},
		{"config", KindConfig, ExitConfigError},
		{"environment", KindEnvironment, ExitEnvironmentError},
		{"spec", KindSpec, ExitRuntimeError},
		{"not found", KindNotFound, ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &Error{Kind: tt.kind}
			if got := err.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestError_At(t *testing.T) {
	base := Specf("missing required field %q", "expected")
	located := base.At("models/a.mzn", 3, 0).InSuite("default")

	if base.File != "" || base.Suite != "" {
		t.Error("At/InSuite must not mutate the receiver")
	}
	if located.Kind != KindSpec {
		t.Errorf("Kind = %v, want %v", located.Kind, KindSpec)
	}
	want := `[default] models/a.mzn (document 3): missing required field "expected"`
	if located.Error() != want {
		t.Errorf("Error() = %q, want %q", located.Error(), want)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind ErrorKind
		msg  string
	}{
		{"New", New("test error"), KindRuntime, "test error"},
		{"Newf", Newf("error %d: %s", 42, "details"), KindRuntime, "error 42: details"},
		{"Configf", Configf("field %q: %s", "root", "is required"), KindConfig, `field "root": is required`},
		{"Environmentf", Environmentf("no %s", "watcher"), KindEnvironment, "no watcher"},
		{"Parsef", Parsef("unknown tag %s", "!Foo"), KindParse, "unknown tag !Foo"},
		{"Extraction", Extraction("unterminated comment"), KindExtraction, "unterminated comment"},
		{"Globf", Globf("pattern %q matched no files", "*.mzn"), KindGlob, `pattern "*.mzn" matched no files`},
		{"NotFound", NotFound("suite", "x"), KindNotFound, "suite not found: x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Message != tt.msg {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.msg)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("original error")
	err := Wrap(cause, "wrapped message")

	if err.Kind != KindRuntime {
		t.Errorf("Kind = %v, want %v", err.Kind, KindRuntime)
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() should return original cause")
	}
	if err.Error() != "wrapped message: original error" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", Parsef("bad"))

	if !IsKind(wrapped, KindParse) {
		t.Error("IsKind(wrapped, KindParse) = false, want true")
	}
	if IsKind(wrapped, KindSpec) {
		t.Error("IsKind(wrapped, KindSpec) = true, want false")
	}
	if IsKind(errors.New("plain"), KindRuntime) {
		t.Error("IsKind(plain error) = true, want false")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitSuccess},
		{"runtime", New("runtime"), ExitRuntimeError},
		{"config", Config("config"), ExitConfigError},
		{"wrapped config", fmt.Errorf("ctx: %w", Config("config")), ExitConfigError},
		{"generic error", errors.New("generic"), ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}
