// Package tests builds the test corpus: suites from a suite-definition
// document, and test cases from the test documents embedded in the files
// each suite includes.
package tests

import (
	"fmt"
	"slices"

	"github.com/AndreyAkinshin/specoracle/internal/value"
)

// Default values for optional case fields.
const (
	DefaultCaseType = "solve"
)

// TestSuite is a named group of cases sharing solver, option and
// inclusion defaults.
type TestSuite struct {
	Name         string
	Strict       bool       // reject actual solution variables absent from the expected solution
	Options      *value.Map // suite-level option defaults
	Solvers      []string   // allowed solvers; empty means unrestricted
	IncludeGlobs []string   // patterns in declaration order
	IncludeFiles []string   // resolved slash paths relative to the corpus root
	TestCases    []*TestCase
}

// TestCase is one test bound to a source file.
//
// Solvers and Options hold effective values: the suite defaults with the
// case overrides applied.
type TestCase struct {
	Suite        string // name of the owning suite
	SourceFile   string // slash path relative to the corpus root
	Index        int    // document index within SourceFile
	Name         string
	Type         string
	Solvers      []string
	Options      *value.Map
	Includes     []string // auxiliary data files
	CheckAgainst []string
	Markers      []string
	Expectations []value.Outcome // non-empty; the case passes if any matches
}

// ID returns a stable identifier of the case within its suite.
func (tc *TestCase) ID() string {
	return fmt.Sprintf("%s[%d]", tc.SourceFile, tc.Index)
}

// AllowsSolver reports whether the case may run with solver.
func (tc *TestCase) AllowsSolver(solver string) bool {
	return len(tc.Solvers) == 0 || slices.Contains(tc.Solvers, solver)
}

// Corpus is the result of ingestion.
// It is not modified after Build returns and may be shared between goroutines.
type Corpus struct {
	Root   string
	Suites []*TestSuite
	Cases  []*TestCase // all cases in suite, file and document order
	Errors []error     // non-fatal ingestion errors in deterministic order
}

// Suite looks up a suite by name.
func (c *Corpus) Suite(name string) (*TestSuite, bool) {
	for _, s := range c.Suites {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// SuiteOf returns the suite owning tc.
func (c *Corpus) SuiteOf(tc *TestCase) (*TestSuite, bool) {
	return c.Suite(tc.Suite)
}

// Strict reports whether the suite owning tc is strict.
func (c *Corpus) Strict(tc *TestCase) bool {
	s, ok := c.SuiteOf(tc)
	return ok && s.Strict
}

// Case finds the case built from document index of file in the named suite.
// An empty suite name matches the first suite that has such a case.
func (c *Corpus) Case(suite, file string, index int) (*TestCase, bool) {
	for _, tc := range c.Cases {
		if tc.SourceFile == file && tc.Index == index && (suite == "" || tc.Suite == suite) {
			return tc, true
		}
	}
	return nil, false
}
