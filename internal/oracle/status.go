package oracle

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Solve statuses reported by solvers.
const (
	StatusSatisfied        = "SATISFIED"
	StatusAllSolutions     = "ALL_SOLUTIONS"
	StatusOptimalSolution  = "OPTIMAL_SOLUTION"
	StatusUnsatisfiable    = "UNSATISFIABLE"
	StatusUnbounded        = "UNBOUNDED"
	StatusUnsatOrUnbounded = "UNSAT_OR_UNBOUNDED"
	StatusUnknown          = "UNKNOWN"
	StatusError            = "ERROR"
)

// accepted lists, per expected status, the actual statuses satisfying it.
// Statuses not listed only accept themselves.
var accepted = map[string][]string{
	StatusSatisfied:        {StatusSatisfied, StatusAllSolutions, StatusOptimalSolution},
	StatusUnsatisfiable:    {StatusUnsatisfiable, StatusUnsatOrUnbounded},
	StatusUnbounded:        {StatusUnbounded, StatusUnsatOrUnbounded},
	StatusUnsatOrUnbounded: {StatusUnsatisfiable, StatusUnbounded, StatusUnsatOrUnbounded},
}

// NormalizeStatus upper-cases a status name and joins words with '_',
// so "optimal solution" and "Optimal-Solution" both read OPTIMAL_SOLUTION.
// A Caser is stateful, so one is made per call.
func NormalizeStatus(s string) string {
	s = cases.Upper(language.Und).String(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, s)
}

// StatusAccepts reports whether an actual status satisfies an expected one.
func StatusAccepts(expected, actual string) bool {
	expected, actual = NormalizeStatus(expected), NormalizeStatus(actual)
	if expected == "" {
		expected = StatusSatisfied
	}
	if ok, listed := accepted[expected]; listed {
		return slices.Contains(ok, actual)
	}
	return expected == actual
}
