// Package oracle decides whether an actual solver run satisfies the
// expectations of a test case.
//
// Matching is pure and never blocks; the same case may be checked from any
// number of goroutines.
package oracle

import (
	"fmt"
	"strings"

	"github.com/AndreyAkinshin/specoracle/internal/tests"
	"github.com/AndreyAkinshin/specoracle/internal/value"
)

// Options tune a match.
type Options struct {
	// Strict rejects actual solution variables absent from the expected solution.
	Strict bool
	// FloatTolerance is the epsilon for float comparison; <= 0 means DefaultFloatTolerance.
	FloatTolerance float64
}

// Diagnostic explains why one expectation did not match.
type Diagnostic struct {
	Expectation int    // index into the case's expectations
	Expected    string // rendering of the expectation
	Message     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("expected[%d] %s: %s", d.Expectation, d.Expected, d.Message)
}

// Result is the verdict of a match.
type Result struct {
	Passed      bool
	Matched     int // index of the first matching expectation, -1 on failure
	Diagnostics []Diagnostic
}

func (r Result) String() string {
	if r.Passed {
		return fmt.Sprintf("PASS (expected[%d])", r.Matched)
	}
	lines := make([]string, 0, len(r.Diagnostics)+1)
	lines = append(lines, "FAIL")
	for _, d := range r.Diagnostics {
		lines = append(lines, "  "+d.String())
	}
	return strings.Join(lines, "\n")
}

// Match checks actual against the expectations of tc in order. The case
// passes on the first matching expectation; otherwise the result carries
// one diagnostic per expectation.
func Match(tc *tests.TestCase, actual *Actual, opts Options) Result {
	return MatchOutcomes(tc.Expectations, actual, opts)
}

// MatchOutcomes is Match over a bare expectation list.
func MatchOutcomes(expectations []value.Outcome, actual *Actual, opts Options) Result {
	tol := opts.FloatTolerance
	if tol <= 0 {
		tol = DefaultFloatTolerance
	}
	m := matcher{comparer: comparer{tolerance: tol}, strict: opts.Strict}

	res := Result{Matched: -1}
	for i, exp := range expectations {
		var ok bool
		var msg string
		switch e := exp.(type) {
		case *value.Result:
			ok, msg = m.matchResult(e, actual)
		case *value.ErrorExpectation:
			ok, msg = m.matchError(e, actual)
		default:
			msg = fmt.Sprintf("unsupported expectation %s", exp.Kind())
		}
		if ok {
			return Result{Passed: true, Matched: i}
		}
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Expectation: i, Expected: exp.String(), Message: msg})
	}
	return res
}

type matcher struct {
	comparer
	strict bool
}

func (m matcher) matchError(e *value.ErrorExpectation, actual *Actual) (bool, string) {
	if !actual.IsError() {
		return false, fmt.Sprintf("expected error %s, got status %s", e.Type, actual.Status)
	}
	got := actual.Error
	if got.Kind != e.Type {
		return false, fmt.Sprintf("error kind: expected %q, got %q", e.Type, got.Kind)
	}
	if e.Message != "" && got.Message != e.Message {
		return false, fmt.Sprintf("error message: expected %q, got %q", e.Message, got.Message)
	}
	if e.Regex != "" {
		re, err := e.CompileRegex()
		if err != nil {
			return false, err.Error()
		}
		if !re.MatchString(got.Message) {
			return false, fmt.Sprintf("error message %q does not match %q", got.Message, e.Regex)
		}
	}
	return true, ""
}

func (m matcher) matchResult(r *value.Result, actual *Actual) (bool, string) {
	if actual.IsError() {
		return false, fmt.Sprintf("expected status %s, got %s", r.Status, actual)
	}
	if !StatusAccepts(r.Status, actual.Status) {
		return false, fmt.Sprintf("status: expected %s, got %s", r.Status, NormalizeStatus(actual.Status))
	}

	if r.Objective != nil {
		if actual.Objective == nil {
			return false, "objective: expected " + r.Objective.String() + ", got none"
		}
		if ok, diff := m.compare(r.Objective, actual.Objective, "objective"); !ok {
			return false, diff
		}
	}

	if r.Solution != nil {
		if actual.Solution == nil {
			return false, "solution: expected " + r.Solution.String() + ", got none"
		}
		if ok, diff := m.compareEntries(r.Solution, actual.Solution, "solution", m.strict); !ok {
			return false, diff
		}
	}

	if r.OutputText != nil {
		return m.matchOutput(r.OutputText, actual)
	}
	return true, ""
}

func (m matcher) matchOutput(expected value.Value, actual *Actual) (bool, string) {
	if actual.Output == nil {
		return false, "output: expected text, got none"
	}
	got := *actual.Output
	var want string
	switch e := expected.(type) {
	case value.Trimmed:
		want, got = e.Text(), value.TrimLines(got)
	case value.String:
		want = string(e)
	default:
		return m.compare(expected, value.String(got), "output")
	}
	if want == got {
		return true, ""
	}
	return false, "output: text differs:\n" + lineDiff(want, got)
}

// Oracle checks cases of one corpus, taking strictness from the owning suite.
type Oracle struct {
	corpus    *tests.Corpus
	tolerance float64
}

// New creates an Oracle. A tolerance <= 0 selects DefaultFloatTolerance.
func New(corpus *tests.Corpus, tolerance float64) *Oracle {
	return &Oracle{corpus: corpus, tolerance: tolerance}
}

// Check matches actual against tc.
func (o *Oracle) Check(tc *tests.TestCase, actual *Actual) Result {
	return Match(tc, actual, Options{
		Strict:         o.corpus.Strict(tc),
		FloatTolerance: o.tolerance,
	})
}
