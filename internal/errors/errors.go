// Package errors provides structured error types and exit codes for specoracle.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess          = 0 // Success
	ExitRuntimeError     = 1 // Runtime error or failed check
	ExitConfigError      = 2 // Configuration error or fatal ingestion error
	ExitEnvironmentError = 3 // Environment error (unreadable root, watcher unavailable, etc.)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindParse
	KindExtraction
	KindSpec
	KindGlob
	KindEnvironment
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not found"
	case KindParse:
		return "parse"
	case KindExtraction:
		return "extraction"
	case KindSpec:
		return "spec"
	case KindGlob:
		return "glob"
	case KindEnvironment:
		return "environment"
	default:
		return "runtime"
	}
}

// Error is the base error type for specoracle.
//
// File, Document and Line locate the error when it concerns one input.
// Document and Line are 1-based; zero means unknown.
type Error struct {
	Kind     ErrorKind
	Message  string
	Suite    string // Suite name if applicable
	File     string // Source file if applicable
	Document int    // Document number within File
	Line     int    // Line within File
	Cause    error  // Underlying error
}

func (e *Error) Error() string {
	var loc []string
	if e.Suite != "" {
		loc = append(loc, "["+e.Suite+"]")
	}
	if e.File != "" {
		pos := e.File
		if e.Line > 0 {
			pos = fmt.Sprintf("%s:%d", pos, e.Line)
		}
		if e.Document > 0 {
			pos = fmt.Sprintf("%s (document %d)", pos, e.Document)
		}
		loc = append(loc, pos+":")
	}
	msg := e.Message
	if e.Cause != nil {
		if msg == "" {
			msg = e.Cause.Error()
		} else {
			msg = msg + ": " + e.Cause.Error()
		}
	}
	if len(loc) == 0 {
		return msg
	}
	return strings.Join(loc, " ") + " " + msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// At returns a copy of e located in file.
func (e *Error) At(file string, document, line int) *Error {
	c := *e
	c.File = file
	c.Document = document
	c.Line = line
	return &c
}

// InSuite returns a copy of e attributed to suite.
func (e *Error) InSuite(suite string) *Error {
	c := *e
	c.Suite = suite
	return &c
}

// New creates a new runtime error.
func New(message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *Error {
	return Config(fmt.Sprintf(format, args...))
}

// Environment creates a new environment error.
func Environment(message string) *Error {
	return &Error{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *Error {
	return Environment(fmt.Sprintf(format, args...))
}

// Parse creates an error for a malformed document or unresolvable tag.
func Parse(cause error) *Error {
	return &Error{Kind: KindParse, Cause: cause}
}

// Parsef creates a parse error with formatting.
func Parsef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf(format, args...)}
}

// Extraction creates an error for a malformed documentation comment.
func Extraction(message string) *Error {
	return &Error{Kind: KindExtraction, Message: message}
}

// Specf creates an error for a structurally invalid test case.
func Specf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindSpec, Message: fmt.Sprintf(format, args...)}
}

// Globf creates an error for an include pattern that resolved badly.
func Globf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindGlob, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return ExitRuntimeError
}
