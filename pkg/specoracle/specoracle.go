// Package specoracle lets Go code that drives a solver load a specoracle
// test corpus and check actual outcomes against it.
//
// Example usage in a Go test:
//
//	func TestModels(t *testing.T) {
//	    corpus, err := specoracle.Load(context.Background(), ".")
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    for _, tc := range corpus.Cases("models") {
//	        t.Run(tc.ID(), func(t *testing.T) {
//	            out := runSolver(tc.File) // JSON actual outcome
//	            v, err := corpus.Check(tc, out)
//	            if err != nil {
//	                t.Fatal(err)
//	            }
//	            if !v.Passed {
//	                t.Error(v)
//	            }
//	        })
//	    }
//	}
package specoracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/AndreyAkinshin/specoracle/internal/config"
	"github.com/AndreyAkinshin/specoracle/internal/oracle"
	"github.com/AndreyAkinshin/specoracle/internal/project"
	"github.com/AndreyAkinshin/specoracle/internal/snapshot"
	"github.com/AndreyAkinshin/specoracle/internal/tests"
)

// ErrProjectNotFound is returned by FindProjectRoot when no config file
// exists in the directory or its parents.
var ErrProjectNotFound = project.ErrNoProjectRoot

// ErrUnknownCase is returned by Check for a Case not obtained from the corpus.
var ErrUnknownCase = errors.New("specoracle: case does not belong to this corpus")

// Case describes one test case of a corpus.
type Case struct {
	Suite   string
	File    string // slash path relative to the corpus root
	Index   int    // document index within File
	Name    string
	Type    string
	Solvers []string // empty means any solver
	Markers []string

	tc *tests.TestCase
}

// ID returns the identifier of the case within its suite.
func (c Case) ID() string {
	return fmt.Sprintf("%s[%d]", c.File, c.Index)
}

// Verdict is the outcome of a check.
type Verdict struct {
	Passed      bool
	Matched     int      // index of the matching expectation, -1 on failure
	Diagnostics []string // one line per expectation when the check failed
}

func (v Verdict) String() string {
	if v.Passed {
		return fmt.Sprintf("PASS (expected[%d])", v.Matched)
	}
	return "FAIL\n  " + strings.Join(v.Diagnostics, "\n  ")
}

// Corpus is an ingested test corpus. It is safe for concurrent use.
type Corpus struct {
	corpus *tests.Corpus
	oracle *oracle.Oracle
	cases  []Case
}

// FindProjectRoot walks up from dir to the directory holding
// specoracle.json or specoracle.toml.
func FindProjectRoot(dir string) (string, error) {
	return project.FindRootFrom(dir)
}

// Load ingests the corpus of the project containing dir. Without a config
// file in dir or its parents, dir is used with the default configuration.
func Load(ctx context.Context, dir string) (*Corpus, error) {
	p, err := loadProject(dir)
	if err != nil {
		return nil, err
	}
	corpus, err := p.Build(ctx, slog.New(slog.DiscardHandler))
	if err != nil {
		return nil, err
	}
	return newCorpus(corpus, p.Config.FloatTolerance), nil
}

// LoadSnapshot reads a corpus from a snapshot written by "specoracle snapshot".
// Floats are compared with the default tolerance.
func LoadSnapshot(path string) (*Corpus, error) {
	corpus, err := snapshot.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newCorpus(corpus, config.DefaultFloatTolerance), nil
}

func loadProject(dir string) (*project.Project, error) {
	root, err := project.FindRootFrom(dir)
	if errors.Is(err, project.ErrNoProjectRoot) {
		return project.Default(dir)
	}
	if err != nil {
		return nil, err
	}
	return project.LoadProjectFrom(root)
}

func newCorpus(corpus *tests.Corpus, tolerance float64) *Corpus {
	c := &Corpus{
		corpus: corpus,
		oracle: oracle.New(corpus, tolerance),
		cases:  make([]Case, len(corpus.Cases)),
	}
	for i, tc := range corpus.Cases {
		c.cases[i] = Case{
			Suite:   tc.Suite,
			File:    tc.SourceFile,
			Index:   tc.Index,
			Name:    tc.Name,
			Type:    tc.Type,
			Solvers: tc.Solvers,
			Markers: tc.Markers,
			tc:      tc,
		}
	}
	return c
}

// Suites returns the suite names in definition order.
func (c *Corpus) Suites() []string {
	names := make([]string, len(c.corpus.Suites))
	for i, s := range c.corpus.Suites {
		names[i] = s.Name
	}
	return names
}

// Cases returns the cases of suite, or all cases when suite is empty.
func (c *Corpus) Cases(suite string) []Case {
	var out []Case
	for _, tc := range c.cases {
		if suite == "" || tc.Suite == suite {
			out = append(out, tc)
		}
	}
	return out
}

// Case finds the case built from document index of file. An empty suite
// matches the first suite that has such a case.
func (c *Corpus) Case(suite, file string, index int) (Case, bool) {
	for _, tc := range c.cases {
		if tc.File == file && tc.Index == index && (suite == "" || tc.Suite == suite) {
			return tc, true
		}
	}
	return Case{}, false
}

// Errors returns the non-fatal ingestion errors.
func (c *Corpus) Errors() []error {
	return c.corpus.Errors
}

// Check matches an actual outcome, given as JSON, against the case.
func (c *Corpus) Check(tc Case, actualJSON []byte) (Verdict, error) {
	if tc.tc == nil || !c.owns(tc.tc) {
		return Verdict{}, ErrUnknownCase
	}
	actual, err := oracle.DecodeActual(actualJSON)
	if err != nil {
		return Verdict{}, err
	}
	res := c.oracle.Check(tc.tc, actual)
	v := Verdict{Passed: res.Passed, Matched: res.Matched}
	for _, d := range res.Diagnostics {
		v.Diagnostics = append(v.Diagnostics, d.String())
	}
	return v, nil
}

func (c *Corpus) owns(tc *tests.TestCase) bool {
	return slices.Contains(c.corpus.Cases, tc)
}
