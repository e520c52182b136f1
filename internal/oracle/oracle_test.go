package oracle

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/AndreyAkinshin/specoracle/internal/docparser"
	"github.com/AndreyAkinshin/specoracle/internal/tests"
	"github.com/AndreyAkinshin/specoracle/internal/value"
)

// outcomes parses a YAML sequence of !Result/!Error nodes.
func outcomes(t *testing.T, doc string) []value.Outcome {
	t.Helper()
	v, err := docparser.ParseDocument(doc)
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	seq, ok := v.(value.Seq)
	if !ok {
		t.Fatalf("document is %s, want sequence", v.Kind())
	}
	out := make([]value.Outcome, len(seq))
	for i, item := range seq {
		out[i] = item.(value.Outcome)
	}
	return out
}

func actual(t *testing.T, data string) *Actual {
	t.Helper()
	a, err := DecodeActual([]byte(data))
	if err != nil {
		t.Fatalf("DecodeActual(%s) error = %v", data, err)
	}
	return a
}

func check(t *testing.T, expected, got string, opts Options) Result {
	t.Helper()
	return MatchOutcomes(outcomes(t, expected), actual(t, got), opts)
}

func TestMatch_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected string
		actual   string
		strict   bool
		pass     bool
	}{
		{"A equal solution", "[!Result {solution: !Solution {x: 5}}]", `{"status": "SATISFIED", "solution": {"x": 5}}`, false, true},
		{"A different solution", "[!Result {solution: !Solution {x: 5}}]", `{"status": "SATISFIED", "solution": {"x": 6}}`, false, false},
		{"B first ranges", "[!Result {solution: {x: [!Range 1..2, !Range 3..4]}}]", `{"solution": {"x": [1, 3]}}`, false, true},
		{"B upper bounds", "[!Result {solution: {x: [!Range 1..2, !Range 3..4]}}]", `{"solution": {"x": [2, 4]}}`, false, true},
		{"B out of range", "[!Result {solution: {x: [!Range 1..2, !Range 3..4]}}]", `{"solution": {"x": [5, 3]}}`, false, false},
		{"C regex matches", `[!Error {type: TypeError, regex: ".*type-inst must be par set.*"}]`, `{"error": {"kind": "TypeError", "message": "Type error: type-inst must be par set of int"}}`, false, true},
		{"C regex fails", `[!Error {type: TypeError, regex: ".*type-inst must be par set.*"}]`, `{"error": {"kind": "TypeError", "message": "Syntax error"}}`, false, false},
		{"D strict extra key", "[!Result {solution: {x: 1}}]", `{"solution": {"x": 1, "y": 2}}`, true, false},
		{"D lenient extra key", "[!Result {solution: {x: 1}}]", `{"solution": {"x": 1, "y": 2}}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := check(t, tt.expected, tt.actual, Options{Strict: tt.strict})
			if res.Passed != tt.pass {
				t.Errorf("Passed = %v, want %v\n%s", res.Passed, tt.pass, res)
			}
		})
	}
}

func TestMatch_FailureDiagnostics(t *testing.T) {
	t.Parallel()

	res := check(t, "[!Result {solution: {x: 5}}, !Error {type: E}]", `{"solution": {"x": 6}}`, Options{})
	if res.Passed || res.Matched != -1 {
		t.Fatalf("Result = %+v, want failure", res)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("len(Diagnostics) = %d, want 2", len(res.Diagnostics))
	}
	if d := res.Diagnostics[0]; d.Expectation != 0 || !strings.Contains(d.Message, "solution.x") {
		t.Errorf("Diagnostics[0] = %v, want path solution.x", d)
	}
	if d := res.Diagnostics[1]; d.Expectation != 1 || !strings.Contains(d.Message, "expected error E") {
		t.Errorf("Diagnostics[1] = %v", d)
	}
	if s := res.String(); !strings.HasPrefix(s, "FAIL\n") {
		t.Errorf("String() = %q", s)
	}
}

func TestMatch_FirstMatchWins(t *testing.T) {
	t.Parallel()

	res := check(t, "[!Result {status: UNSATISFIABLE}, !Result {solution: {x: 1}}, !Result {}]", `{"solution": {"x": 1}}`, Options{})
	if !res.Passed || res.Matched != 1 || len(res.Diagnostics) != 0 {
		t.Errorf("Result = %+v, want pass on expectation 1", res)
	}
}

func TestMatch_RangeContainment(t *testing.T) {
	t.Parallel()

	c := comparer{tolerance: DefaultFloatTolerance}
	for _, r := range []value.Range{{Lo: 0, Hi: 0}, {Lo: -3, Hi: 2}, {Lo: 5, Hi: 9}} {
		for v := r.Lo - 2; v <= r.Hi+2; v++ {
			ok, _ := c.compare(r, value.Int(v), "x")
			if want := r.Lo <= v && v <= r.Hi; ok != want {
				t.Errorf("match(%s, %d) = %v, want %v", r, v, ok, want)
			}
		}
	}
	if ok, _ := c.compare(value.Range{Lo: 1, Hi: 2}, value.Float(1.5), "x"); ok {
		t.Error("a range must not match a float")
	}
}

func permutations(s value.Seq) []value.Seq {
	if len(s) <= 1 {
		return []value.Seq{append(value.Seq(nil), s...)}
	}
	var out []value.Seq
	for i := range s {
		rest := append(append(value.Seq(nil), s[:i]...), s[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append(value.Seq{s[i]}, p...))
		}
	}
	return out
}

func TestMatch_UnorderedPermutations(t *testing.T) {
	t.Parallel()

	c := comparer{tolerance: DefaultFloatTolerance}
	s := value.Seq{value.Int(1), value.Int(2), value.Int(2), value.String("a")}
	for _, p := range permutations(s) {
		if ok, diff := c.compare(value.Unordered{Items: s}, p, "x"); !ok {
			t.Errorf("Unordered%s vs %s: %s", s, p, diff)
		}
		ordered, _ := c.compare(s, p, "x")
		if want := value.Equal(s, p); ordered != want {
			t.Errorf("ordered %s vs %s = %v, want %v", s, p, ordered, want)
		}
	}
}

func TestMatch_Unordered(t *testing.T) {
	t.Parallel()

	c := comparer{tolerance: DefaultFloatTolerance}
	tests := []struct {
		name     string
		expected value.Seq
		actual   value.Value
		pass     bool
	}{
		{"multiplicity differs", value.Seq{value.Int(1), value.Int(1), value.Int(2)}, value.Seq{value.Int(1), value.Int(2), value.Int(2)}, false},
		{"length differs", value.Seq{value.Int(1)}, value.Seq{value.Int(1), value.Int(1)}, false},
		{"range needs reassignment", value.Seq{value.Range{Lo: 1, Hi: 5}, value.Int(1)}, value.Seq{value.Int(1), value.Int(3)}, true},
		{"not a sequence", value.Seq{value.Int(1)}, value.Int(1), false},
		{"empty", value.Seq{}, value.Seq{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, diff := c.compare(value.Unordered{Items: tt.expected}, tt.actual, "x")
			if ok != tt.pass {
				t.Errorf("compare() = %v (%s), want %v", ok, diff, tt.pass)
			}
		})
	}
}

func TestMatch_Set(t *testing.T) {
	t.Parallel()

	c := comparer{tolerance: DefaultFloatTolerance}
	set := value.NewSet(value.Int(1), value.Int(2))
	tests := []struct {
		name   string
		actual value.Value
		pass   bool
	}{
		{"same order", value.Seq{value.Int(1), value.Int(2)}, true},
		{"duplicates and order ignored", value.Seq{value.Int(2), value.Int(1), value.Int(1)}, true},
		{"set", value.NewSet(value.Int(2), value.Int(1)), true},
		{"missing element", value.Seq{value.Int(1)}, false},
		{"extra element", value.Seq{value.Int(1), value.Int(2), value.Int(3)}, false},
		{"scalar", value.Int(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if ok, diff := c.compare(set, tt.actual, "s"); ok != tt.pass {
				t.Errorf("compare() = %v (%s), want %v", ok, diff, tt.pass)
			}
		})
	}
}

func TestMatch_Scalars(t *testing.T) {
	t.Parallel()

	c := comparer{tolerance: 1e-6}
	tests := []struct {
		name     string
		expected value.Value
		actual   value.Value
		pass     bool
	}{
		{"int", value.Int(3), value.Int(3), true},
		{"int vs float", value.Int(3), value.Float(3), false},
		{"float within tolerance", value.Float(1), value.Float(1 + 1e-9), true},
		{"float outside tolerance", value.Float(1), value.Float(1.1), false},
		{"float accepts int", value.Float(2), value.Int(2), true},
		{"relative tolerance", value.Float(1e9), value.Float(1e9 + 1), true},
		{"bool", value.Bool(true), value.Bool(true), true},
		{"bool vs string", value.Bool(true), value.String("true"), false},
		{"string", value.String("a"), value.String("a"), true},
		{"null", value.Null{}, value.Null{}, true},
		{"duration", value.Duration{Millis: 1500}, value.Duration{Millis: 1500}, true},
		{"duration as millis", value.Duration{Millis: 1500}, value.Int(1500), true},
		{"trimmed", value.NewTrimmed("a\nb"), value.String("  a  \n b\n\n"), true},
		{"trimmed differs", value.NewTrimmed("a\nb"), value.String("a\nc"), false},
		{"nested map same keys", mustMap(t, "a", value.Int(1)), mustMap(t, "a", value.Int(1)), true},
		{"nested map extra key", mustMap(t, "a", value.Int(1)), mustMap(t, "a", value.Int(1), "b", value.Int(2)), false},
		{"sequence order", value.Seq{value.Int(1), value.Int(2)}, value.Seq{value.Int(2), value.Int(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if ok, diff := c.compare(tt.expected, tt.actual, "v"); ok != tt.pass {
				t.Errorf("compare(%s, %s) = %v (%s), want %v", tt.expected, tt.actual, ok, diff, tt.pass)
			}
		})
	}
}

func mustMap(t *testing.T, kv ...any) *value.Map {
	t.Helper()
	var entries []value.Entry
	for i := 0; i+1 < len(kv); i += 2 {
		entries = append(entries, value.Entry{Key: kv[i].(string), Value: kv[i+1].(value.Value)})
	}
	m, err := value.NewMap(entries...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMatch_Objective(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected string
		actual   string
		pass     bool
	}{
		{"equal", "[!Result {status: OPTIMAL_SOLUTION, objective: 10}]", `{"status": "OPTIMAL_SOLUTION", "objective": 10}`, true},
		{"different", "[!Result {status: OPTIMAL_SOLUTION, objective: 10}]", `{"status": "OPTIMAL_SOLUTION", "objective": 11}`, false},
		{"missing", "[!Result {objective: 10}]", `{"status": "SATISFIED"}`, false},
		{"float", "[!Result {objective: 0.5}]", `{"status": "SATISFIED", "objective": 0.5000000001}`, true},
		{"range", "[!Result {objective: !Range 10..20}]", `{"status": "SATISFIED", "objective": 15}`, true},
		{"status class too weak", "[!Result {status: OPTIMAL_SOLUTION}]", `{"status": "SATISFIED"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if res := check(t, tt.expected, tt.actual, Options{}); res.Passed != tt.pass {
				t.Errorf("Passed = %v, want %v\n%s", res.Passed, tt.pass, res)
			}
		})
	}
}

func TestMatch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected string
		actual   string
		pass     bool
	}{
		{"kind only", "[!Error {type: TypeError}]", `{"error": {"kind": "TypeError", "message": "anything"}}`, true},
		{"kind is case sensitive", "[!Error {type: TypeError}]", `{"error": {"kind": "typeerror"}}`, false},
		{"exact message", `[!Error {type: E, message: "boom"}]`, `{"error": {"kind": "E", "message": "boom"}}`, true},
		{"message differs", `[!Error {type: E, message: "boom"}]`, `{"error": {"kind": "E", "message": "boom!"}}`, false},
		{"regex anchored at start", `[!Error {type: E, regex: "par set"}]`, `{"error": {"kind": "E", "message": "must be par set"}}`, false},
		{"regex prefix", `[!Error {type: E, regex: "must"}]`, `{"error": {"kind": "E", "message": "must be par set"}}`, true},
		{"regex dot matches newline", `[!Error {type: E, regex: "a.b"}]`, `{"error": {"kind": "E", "message": "a\nb"}}`, true},
		{"regex caret per line", `[!Error {type: E, regex: ".*^second"}]`, `{"error": {"kind": "E", "message": "first\nsecond"}}`, true},
		{"message and regex both hold", `[!Error {type: E, message: "x1", regex: "x\\d"}]`, `{"error": {"kind": "E", "message": "x1"}}`, true},
		{"message holds regex fails", `[!Error {type: E, message: "x1", regex: "y"}]`, `{"error": {"kind": "E", "message": "x1"}}`, false},
		{"error vs solve", "[!Error {type: E}]", `{"status": "SATISFIED"}`, false},
		{"solve vs error", "[!Result {}]", `{"error": {"kind": "E"}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if res := check(t, tt.expected, tt.actual, Options{}); res.Passed != tt.pass {
				t.Errorf("Passed = %v, want %v\n%s", res.Passed, tt.pass, res)
			}
		})
	}
}

func TestMatch_OutputText(t *testing.T) {
	t.Parallel()

	exp := `[!Result {output: !Trim "  x = 1;\n  y = 2;\n"}]`
	if res := check(t, exp, `{"status": "SATISFIED", "output": "x = 1;   \ny = 2;\n\n----------\n"}`, Options{}); res.Passed {
		t.Errorf("trailing separator should not match: %s", res)
	}
	if res := check(t, exp, `{"status": "SATISFIED", "output": "\n x = 1;\ny = 2;  \n"}`, Options{}); !res.Passed {
		t.Errorf("trimmed output should match: %s", res)
	}

	res := check(t, exp, `{"status": "SATISFIED", "output": "x = 1;\ny = 3;"}`, Options{})
	if res.Passed {
		t.Fatal("different output should not match")
	}
	msg := res.Diagnostics[0].Message
	if !strings.Contains(msg, "- y = 2;") || !strings.Contains(msg, "+ y = 3;") || !strings.Contains(msg, "  x = 1;") {
		t.Errorf("diagnostic lacks a line diff:\n%s", msg)
	}

	if res := check(t, exp, `{"status": "SATISFIED"}`, Options{}); res.Passed {
		t.Error("missing output should not match")
	}
}

func TestStatusAccepts(t *testing.T) {
	t.Parallel()

	all := []string{
		StatusSatisfied, StatusAllSolutions, StatusOptimalSolution, StatusUnsatisfiable,
		StatusUnbounded, StatusUnsatOrUnbounded, StatusUnknown, StatusError,
	}
	want := map[string][]string{
		StatusSatisfied:        {StatusSatisfied, StatusAllSolutions, StatusOptimalSolution},
		StatusAllSolutions:     {StatusAllSolutions},
		StatusOptimalSolution:  {StatusOptimalSolution},
		StatusUnsatisfiable:    {StatusUnsatisfiable, StatusUnsatOrUnbounded},
		StatusUnbounded:        {StatusUnbounded, StatusUnsatOrUnbounded},
		StatusUnsatOrUnbounded: {StatusUnsatisfiable, StatusUnbounded, StatusUnsatOrUnbounded},
		StatusUnknown:          {StatusUnknown},
		StatusError:            {StatusError},
	}

	for _, exp := range all {
		for _, act := range all {
			accept := false
			for _, s := range want[exp] {
				accept = accept || s == act
			}
			if got := StatusAccepts(exp, act); got != accept {
				t.Errorf("StatusAccepts(%s, %s) = %v, want %v", exp, act, got, accept)
			}
		}
	}

	if !StatusAccepts("satisfied", "Optimal Solution") {
		t.Error("status names should be case-normalized")
	}
	if !StatusAccepts("", StatusOptimalSolution) {
		t.Error("an empty expected status should default to SATISFIED")
	}
}

func TestOracle_CheckUsesSuiteStrictness(t *testing.T) {
	t.Parallel()

	exps := outcomes(t, "[!Result {solution: {x: 1}}]")
	strictCase := &tests.TestCase{Suite: "strict", Expectations: exps}
	lenientCase := &tests.TestCase{Suite: "lenient", Expectations: exps}
	corpus := &tests.Corpus{
		Suites: []*tests.TestSuite{{Name: "strict", Strict: true}, {Name: "lenient"}},
		Cases:  []*tests.TestCase{strictCase, lenientCase},
	}
	o := New(corpus, 0)
	got := actual(t, `{"solution": {"x": 1, "y": 2}}`)

	if res := o.Check(strictCase, got); res.Passed {
		t.Errorf("strict suite: %s", res)
	}
	if res := o.Check(lenientCase, got); !res.Passed {
		t.Errorf("lenient suite: %s", res)
	}
}

func TestMatch_Concurrent(t *testing.T) {
	t.Parallel()

	tc := &tests.TestCase{Expectations: outcomes(t, "[!Result {status: satisfied, solution: {x: !Unordered [1, 2, 3]}}]")}
	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := range 64 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := Solved(StatusOptimalSolution, mustMap(t, "x", value.Seq{value.Int(3), value.Int(int64(i % 3)), value.Int(1)}))
			res := Match(tc, a, Options{})
			if want := i%3 == 2; res.Passed != want {
				errs <- fmt.Sprintf("goroutine %d: Passed = %v, want %v", i, res.Passed, want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestDecodeActual(t *testing.T) {
	t.Parallel()

	a := actual(t, `{"solution": {"x": 1, "f": 0.5, "xs": [1, 2]}, "output": "x = 1;"}`)
	if a.Status != StatusSatisfied || a.Solution.Len() != 3 || *a.Output != "x = 1;" {
		t.Errorf("DecodeActual() = %+v", a)
	}
	if f, _ := a.Solution.Get("f"); f != value.Float(0.5) {
		t.Errorf("f = %v, want 0.5", f)
	}

	if a := actual(t, `{}`); a.Status != StatusUnknown || a.IsError() {
		t.Errorf("empty outcome = %+v, want UNKNOWN", a)
	}

	e := actual(t, `{"error": {"kind": "TypeError", "message": "bad", "location": {"file": "m.mzn", "line": 3, "column": 7}}}`)
	if !e.IsError() || e.Error.Location.Line != 3 {
		t.Errorf("error outcome = %+v", e)
	}
	if s := e.String(); s != "error TypeError: bad (m.mzn:3.7)" {
		t.Errorf("String() = %q", s)
	}

	for _, bad := range []string{`[]`, `{"status": 1}`, `{"error": {}}`, `{"unknown": true}`, `not json`} {
		if _, err := DecodeActual([]byte(bad)); err == nil {
			t.Errorf("DecodeActual(%s) error = nil, want error", bad)
		}
	}
}
