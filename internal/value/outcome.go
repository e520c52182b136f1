package value

import (
	"fmt"
	"regexp"
	"strings"
)

// Outcome is an expected outcome of a solve attempt: *Result or *ErrorExpectation.
type Outcome interface {
	Value
	isOutcome()
}

// DefaultStatus is the status assumed by a Result that names none.
const DefaultStatus = "SATISFIED"

// Result describes an expected successful solve.
// Optional parts are nil when absent.
type Result struct {
	Status     string
	Solution   *Map
	Objective  Value
	OutputText Value
}

// ErrorExpectation describes an expected solver error.
type ErrorExpectation struct {
	Type    string // error kind reported by the solver
	Message string
	Regex   string
}

func (*Result) Kind() Kind           { return KindResult }
func (*ErrorExpectation) Kind() Kind { return KindError }
func (*Result) isValue()             {}
func (*ErrorExpectation) isValue()   {}
func (*Result) isOutcome()           {}
func (*ErrorExpectation) isOutcome() {}

func (r *Result) String() string {
	var b strings.Builder
	b.WriteString("!Result{status: ")
	b.WriteString(r.Status)
	if r.Solution != nil {
		b.WriteString(", solution: ")
		b.WriteString(r.Solution.String())
	}
	if r.Objective != nil {
		b.WriteString(", objective: ")
		b.WriteString(r.Objective.String())
	}
	if r.OutputText != nil {
		b.WriteString(", output: ")
		b.WriteString(r.OutputText.String())
	}
	b.WriteString("}")
	return b.String()
}

func (e *ErrorExpectation) String() string {
	s := fmt.Sprintf("!Error{type: %s", e.Type)
	if e.Message != "" {
		s += fmt.Sprintf(", message: %q", e.Message)
	}
	if e.Regex != "" {
		s += fmt.Sprintf(", regex: %q", e.Regex)
	}
	return s + "}"
}

// Equal reports structural equality.
func (r *Result) Equal(other *Result) bool { return Equal(r, other) }

// Equal reports structural equality.
func (e *ErrorExpectation) Equal(other *ErrorExpectation) bool { return Equal(e, other) }

// CompileRegex compiles e.Regex for matching at the start of an error
// message. "." matches newlines and "^"/"$" match at line boundaries.
// It returns nil when e has no regex.
func (e *ErrorExpectation) CompileRegex() (*regexp.Regexp, error) {
	if e.Regex == "" {
		return nil, nil
	}
	if _, err := regexp.Compile(`(?ms)` + e.Regex); err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", e.Regex, err)
	}
	return regexp.Compile(`\A(?ms:` + e.Regex + `)`)
}
