package tests

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/AndreyAkinshin/specoracle/internal/docparser"
	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/value"
)

// Suite definition fields.
const (
	fieldStrict   = "strict"
	fieldOptions  = "options"
	fieldSolvers  = "solvers"
	fieldIncludes = "includes"
)

var knownSuiteFields = map[string]bool{
	fieldStrict:   true,
	fieldOptions:  true,
	fieldSolvers:  true,
	fieldIncludes: true,
}

// Definitions is a parsed suite-definition document.
type Definitions struct {
	Suites   []*TestSuite
	Warnings []string // unknown fields
	Errors   []error  // suites that could not be defined and were skipped
}

// LoadSuiteFile reads and parses a suite-definition file.
func LoadSuiteFile(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oerrors.Configf("failed to read suite definitions: %v", err)
	}
	defs, err := LoadSuiteDefinitions(data)
	if err != nil {
		var e *oerrors.Error
		if errors.As(err, &e) && e.File == "" {
			err = e.At(path, e.Document, e.Line)
		}
		return nil, err
	}
	for i, err := range defs.Errors {
		if e, ok := err.(*oerrors.Error); ok && e.File == "" {
			defs.Errors[i] = e.At(path, e.Document, e.Line)
		}
	}
	return defs, nil
}

// LoadSuiteDefinitions parses a suite-definition document: a mapping from suite name
// to a suite node with the optional fields strict, options, solvers and
// includes.
//
// Only an unparseable document or a root that is not a mapping is fatal.
// A malformed suite is skipped and reported in Definitions.Errors; unknown
// fields produce warnings.
func LoadSuiteDefinitions(data []byte) (*Definitions, error) {
	root, err := docparser.ParseDocument(string(data))
	if err != nil {
		return nil, &oerrors.Error{Kind: oerrors.KindConfig, Message: "invalid suite definitions", Cause: err}
	}
	m, ok := root.(*value.Map)
	if !ok {
		return nil, oerrors.Configf("suite definitions must be a mapping of suite names, got %s", root.Kind())
	}

	defs := &Definitions{Suites: make([]*TestSuite, 0, m.Len())}
	for name, node := range m.All() {
		s, w, err := parseSuite(name, node)
		defs.Warnings = append(defs.Warnings, w...)
		if err != nil {
			defs.Errors = append(defs.Errors, err)
			continue
		}
		defs.Suites = append(defs.Suites, s)
	}
	return defs, nil
}

func parseSuite(name string, node value.Value) (*TestSuite, []string, error) {
	s := &TestSuite{
		Name:    name,
		Options: value.EmptyMap(),
	}
	if _, isNull := node.(value.Null); isNull {
		return s, nil, nil
	}
	fields, ok := node.(*value.Map)
	if !ok {
		return nil, nil, oerrors.Specf("suite must be a mapping, got %s", node.Kind()).InSuite(name)
	}

	var warnings []string
	var unknown []string
	for key := range fields.All() {
		if !knownSuiteFields[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		warnings = append(warnings, fmt.Sprintf("unknown field %q in suite %q (ignored)", key, name))
	}

	var err error
	if v, ok := fields.Get(fieldStrict); ok {
		b, isBool := v.(value.Bool)
		if !isBool {
			return nil, warnings, oerrors.Specf("strict must be a boolean, got %s", v.Kind()).InSuite(name)
		}
		s.Strict = bool(b)
	}
	if v, ok := fields.Get(fieldOptions); ok {
		if s.Options, err = optionsOf(v); err != nil {
			return nil, warnings, oerrors.Specf("%v", err).InSuite(name)
		}
	}
	if v, ok := fields.Get(fieldSolvers); ok {
		if s.Solvers, err = stringList(fieldSolvers, v); err != nil {
			return nil, warnings, oerrors.Specf("%v", err).InSuite(name)
		}
	}
	if v, ok := fields.Get(fieldIncludes); ok {
		if s.IncludeGlobs, err = stringList(fieldIncludes, v); err != nil {
			return nil, warnings, oerrors.Specf("%v", err).InSuite(name)
		}
	}
	return s, warnings, nil
}

// stringList accepts a sequence or set of scalars, or a single scalar,
// and returns the de-duplicated strings in order. An empty list yields nil.
func stringList(field string, v value.Value) ([]string, error) {
	var items []value.Value
	switch x := v.(type) {
	case value.Null:
		return nil, nil
	case value.Seq:
		items = x
	case *value.Set:
		items = x.Elems()
	case value.Unordered:
		items = x.Items
	case value.String:
		items = []value.Value{x}
	default:
		return nil, fmt.Errorf("%s must be a list of strings, got %s", field, v.Kind())
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		var s string
		switch x := item.(type) {
		case value.String:
			s = string(x)
		case value.Int, value.Float, value.Bool:
			s = x.String()
		default:
			return nil, fmt.Errorf("%s must be a list of strings, got element %s", field, item.Kind())
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func optionsOf(v value.Value) (*value.Map, error) {
	switch x := v.(type) {
	case value.Null:
		return value.EmptyMap(), nil
	case *value.Map:
		return x, nil
	}
	return nil, fmt.Errorf("options must be a mapping, got %s", v.Kind())
}
