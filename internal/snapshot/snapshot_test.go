package snapshot

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/tests"
	"github.com/AndreyAkinshin/specoracle/internal/value"
)

var corpusOpts = []cmp.Option{
	cmpopts.IgnoreFields(tests.Corpus{}, "Root", "Errors"),
}

func mustMap(t *testing.T, kv ...any) *value.Map {
	t.Helper()
	entries := make([]value.Entry, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		entries = append(entries, value.Entry{Key: kv[i].(string), Value: kv[i+1].(value.Value)})
	}
	m, err := value.NewMap(entries...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// richCorpus exercises every value variant.
func richCorpus(t *testing.T) *tests.Corpus {
	t.Helper()
	opts := mustMap(t, "timeout", value.Duration{Millis: 1500}, "all", value.Bool(true))
	tc := &tests.TestCase{
		Suite:        "models",
		SourceFile:   "dir/a.mzn",
		Index:        2,
		Name:         "a",
		Type:         "output_model",
		Solvers:      []string{"gecode", "chuffed"},
		Options:      opts,
		Includes:     []string{"dir/a.dzn"},
		CheckAgainst: []string{"cbc"},
		Markers:      []string{"slow"},
		Expectations: []value.Outcome{
			&value.Result{
				Status: "OPTIMAL_SOLUTION",
				Solution: mustMap(t,
					"x", value.Range{Lo: -3, Hi: 1 << 60},
					"y", value.Seq{value.Int(1), value.Float(2.5), value.Null{}},
					"z", value.Unordered{Items: value.Seq{value.String("a"), value.String("b")}},
					"s", value.NewSet(value.Int(1), value.Int(2)),
					"big", value.Int(math.MaxInt64),
					"neg", value.Int(math.MinInt64),
					"inf", value.Float(math.Inf(-1)),
					"nested", mustMap(t, "k", value.Seq{}),
				),
				Objective:  value.Float(1e-7),
				OutputText: value.NewTrimmed("  x = 1;\n  y = 2;  "),
			},
			&value.ErrorExpectation{Type: "TypeError", Message: "m", Regex: "type.*"},
			&value.Result{Status: "UNSATISFIABLE"},
		},
	}
	suite := &tests.TestSuite{
		Name:         "models",
		Strict:       true,
		Options:      mustMap(t, "all", value.Bool(false)),
		Solvers:      []string{"gecode", "chuffed"},
		IncludeGlobs: []string{"dir/*.mzn"},
		IncludeFiles: []string{"dir/a.mzn"},
		TestCases:    []*tests.TestCase{tc},
	}
	empty := &tests.TestSuite{Name: "empty", Options: value.EmptyMap()}
	return &tests.Corpus{
		Suites: []*tests.TestSuite{suite, empty},
		Cases:  []*tests.TestCase{tc},
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	want := richCorpus(t)
	data, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v\n%s", err, data)
	}
	if diff := cmp.Diff(want, got, corpusOpts...); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	again, err := Encode(got)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("re-encoding differs:\n%s\n%s", data, again)
	}
}

func TestRoundTrip_NaN(t *testing.T) {
	t.Parallel()

	tc := &tests.TestCase{
		Suite:        "s",
		SourceFile:   "a",
		Expectations: []value.Outcome{&value.Result{Status: "SATISFIED", Objective: value.Float(math.NaN())}},
	}
	c := &tests.Corpus{
		Suites: []*tests.TestSuite{{Name: "s", TestCases: []*tests.TestCase{tc}}},
		Cases:  []*tests.TestCase{tc},
	}
	data, err := Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"NaN"`) {
		t.Errorf("snapshot = %s, want NaN as string", data)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(tc.Expectations[0], got.Cases[0].Expectations[0]) {
		t.Errorf("decoded %v, want %v", got.Cases[0].Expectations[0], tc.Expectations[0])
	}
}

func TestEncode_Canonical(t *testing.T) {
	t.Parallel()

	tc := &tests.TestCase{
		Suite:        "s",
		SourceFile:   "a.mzn",
		Expectations: []value.Outcome{&value.ErrorExpectation{Type: "E"}},
	}
	c := &tests.Corpus{Suites: []*tests.TestSuite{{Name: "s", TestCases: []*tests.TestCase{tc}}}}

	data, err := Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"suites":[{"name":"s","test_cases":[{"expected":[{"error":{"kind":"E"}}],"index":0,"source_file":"a.mzn","suite":"s"}]}],"version":1}`
	if string(data) != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", data, want)
	}
}

func TestEncode_BigIntsAsStrings(t *testing.T) {
	t.Parallel()

	tc := &tests.TestCase{
		Suite:      "s",
		SourceFile: "a",
		Expectations: []value.Outcome{&value.Result{
			Status:    "SATISFIED",
			Objective: value.Int(1<<53 + 1),
		}},
	}
	c := &tests.Corpus{Suites: []*tests.TestSuite{{Name: "s", TestCases: []*tests.TestCase{tc}}}}
	data, err := Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `{"int":"9007199254740993"}`) {
		t.Errorf("snapshot = %s", data)
	}
}

func TestRoundTrip_BuiltCorpus(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{
		"a.mzn": "/***\n!Test\nsolvers: [gecode]\noptions: {all_solutions: true}\nexpected:\n" +
			"  - !Result\n    solution: !Solution {x: !Range 1..3, s: !!set {1, 2}}\n" +
			"    output: !Trim \"x = 1\"\n" +
			"  - !Error {type: TypeError, regex: 'bad.*'}\n***/\nvar 1..3: x;\n",
		"b.mzn": "/***\n!Test\nexpected: !Result {status: UNSATISFIABLE}\n---\n!Test\n" +
			"expected: [!Result {solution: !Solution {xs: !Unordered [1, 2]}, objective: 1.5}]\n" +
			"options: {timeout: !Duration 10s}\n***/\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	defs, err := tests.LoadSuiteDefinitions([]byte("models:\n  solvers: [gecode, chuffed]\n  includes: ['*.mzn']\n  strict: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	b := &tests.Builder{Root: root, Definitions: defs, Workers: 2, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	want, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(want.Errors) != 0 || len(want.Cases) != 3 {
		t.Fatalf("corpus: %d cases, errors %v", len(want.Cases), want.Errors)
	}

	path := filepath.Join(t.TempDir(), "corpus.json")
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if diff := cmp.Diff(want, got, corpusOpts...); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_EmptyLists(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	doc := "/***\n!Test\nsolvers: []\nmarkers: []\ncheck_against: []\nexpected: !Result {status: SATISFIED}\n***/\n"
	if err := os.WriteFile(filepath.Join(root, "a.mzn"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	defs, err := tests.LoadSuiteDefinitions([]byte("plain:\n  solvers: []\n  includes: ['*.mzn']\n"))
	if err != nil {
		t.Fatal(err)
	}
	b := &tests.Builder{Root: root, Definitions: defs, Workers: 1, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	want, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(want.Errors) != 0 || len(want.Cases) != 1 {
		t.Fatalf("corpus: %d cases, errors %v", len(want.Cases), want.Errors)
	}
	tc := want.Cases[0]
	if want.Suites[0].Solvers != nil || tc.Solvers != nil || tc.Markers != nil || tc.CheckAgainst != nil {
		t.Fatalf("empty lists not nil: suite %#v, case %#v %#v %#v",
			want.Suites[0].Solvers, tc.Solvers, tc.Markers, tc.CheckAgainst)
	}

	data, err := Encode(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v\n%s", err, data)
	}
	if diff := cmp.Diff(want, got, corpusOpts...); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
	}{
		{"malformed", `{"version":1,`},
		{"wrong version", `{"suites":[],"version":2}`},
		{"unknown value tag", `{"suites":[{"name":"s","options":{"map":[{"key":"k","value":{"tuple":[]}}]}}],"version":1}`},
		{"non-outcome expectation", `{"suites":[{"name":"s","test_cases":[{"expected":[{"int":1}],"index":0,"source_file":"a","suite":"s"}]}],"version":1}`},
		{"int out of range", `{"suites":[{"name":"s","options":{"map":[{"key":"k","value":{"int":"99999999999999999999"}}]}}],"version":1}`},
		{"duplicate map key", `{"suites":[{"name":"s","options":{"map":[{"key":"k","value":{"null":true}},{"key":"k","value":{"null":true}}]}}],"version":1}`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tt.data))
			if err == nil {
				t.Fatal("Decode() error = nil")
			}
			if !oerrors.IsKind(err, oerrors.KindParse) {
				t.Errorf("Decode() error kind = %v, want parse", err)
			}
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "none.json"))
	if !oerrors.IsKind(err, oerrors.KindNotFound) {
		t.Errorf("ReadFile() error = %v, want not found", err)
	}
}
