package tests

import (
	"fmt"
	"sort"

	"github.com/AndreyAkinshin/specoracle/internal/docparser"
	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/value"
)

// Case document fields.
const (
	fieldName         = "name"
	fieldType         = "type"
	fieldExtraFiles   = "extra_files"
	fieldCheckAgainst = "check_against"
	fieldMarkers      = "markers"
	fieldExpected     = "expected"
)

var knownCaseFields = map[string]bool{
	fieldName:         true,
	fieldType:         true,
	fieldSolvers:      true,
	fieldOptions:      true,
	fieldExtraFiles:   true,
	fieldIncludes:     true,
	fieldCheckAgainst: true,
	fieldMarkers:      true,
	fieldExpected:     true,
}

// buildCase turns one embedded document into a test case of suite.
// Errors are spec errors located at the document.
func buildCase(suite *TestSuite, file string, doc docparser.Document) (*TestCase, []string, error) {
	fail := func(format string, args ...any) error {
		return oerrors.Specf(format, args...).InSuite(suite.Name).At(file, doc.Index+1, doc.Line)
	}

	fields, ok := doc.Value.(*value.Map)
	if !ok {
		return nil, nil, fail("test document must be a mapping, got %s", doc.Value.Kind())
	}

	var warnings []string
	var unknown []string
	for key := range fields.All() {
		if !knownCaseFields[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		warnings = append(warnings, fmt.Sprintf("%s (document %d): unknown field %q (ignored)", file, doc.Index+1, key))
	}

	tc := &TestCase{
		Suite:      suite.Name,
		SourceFile: file,
		Index:      doc.Index,
		Name:       fmt.Sprintf("%s#%d", file, doc.Index),
		Type:       DefaultCaseType,
		Solvers:    suite.Solvers,
		Options:    suite.Options,
	}

	var err error
	if tc.Name, err = stringField(fields, fieldName, tc.Name); err != nil {
		return nil, warnings, fail("%v", err)
	}
	if tc.Type, err = stringField(fields, fieldType, tc.Type); err != nil {
		return nil, warnings, fail("%v", err)
	}

	if v, ok := fields.Get(fieldSolvers); ok {
		solvers, err := stringList(fieldSolvers, v)
		if err != nil {
			return nil, warnings, fail("%v", err)
		}
		if len(solvers) > 0 {
			tc.Solvers = solvers
		}
	}

	if v, ok := fields.Get(fieldOptions); ok {
		opts, err := optionsOf(v)
		if err != nil {
			return nil, warnings, fail("%v", err)
		}
		tc.Options = suite.Options.Merge(opts)
	}

	extra, hasExtra := fields.Get(fieldExtraFiles)
	incl, hasIncl := fields.Get(fieldIncludes)
	switch {
	case hasExtra && hasIncl:
		return nil, warnings, fail("%s and %s are mutually exclusive", fieldExtraFiles, fieldIncludes)
	case hasExtra:
		tc.Includes, err = stringList(fieldExtraFiles, extra)
	case hasIncl:
		tc.Includes, err = stringList(fieldIncludes, incl)
	}
	if err != nil {
		return nil, warnings, fail("%v", err)
	}

	if v, ok := fields.Get(fieldCheckAgainst); ok {
		if tc.CheckAgainst, err = stringList(fieldCheckAgainst, v); err != nil {
			return nil, warnings, fail("%v", err)
		}
	}
	if v, ok := fields.Get(fieldMarkers); ok {
		if tc.Markers, err = stringList(fieldMarkers, v); err != nil {
			return nil, warnings, fail("%v", err)
		}
	}

	v, ok := fields.Get(fieldExpected)
	if !ok {
		return nil, warnings, fail("missing required field %q", fieldExpected)
	}
	if tc.Expectations, err = expectations(v); err != nil {
		return nil, warnings, fail("%v", err)
	}
	return tc, warnings, nil
}

// expectations accepts a single outcome or a non-empty sequence of them.
func expectations(v value.Value) ([]value.Outcome, error) {
	var items []value.Value
	switch x := v.(type) {
	case value.Outcome:
		items = []value.Value{x}
	case value.Seq:
		items = x
	case value.Unordered:
		items = x.Items
	case value.Null:
	default:
		return nil, fmt.Errorf("%s must be a list of !Result or !Error, got %s", fieldExpected, v.Kind())
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s must not be empty", fieldExpected)
	}

	out := make([]value.Outcome, 0, len(items))
	for i, item := range items {
		o, ok := item.(value.Outcome)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be !Result or !Error, got %s", fieldExpected, i, item.Kind())
		}
		if e, isErr := o.(*value.ErrorExpectation); isErr {
			if _, err := e.CompileRegex(); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", fieldExpected, i, err)
			}
		}
		out = append(out, o)
	}
	return out, nil
}

func stringField(fields *value.Map, key, def string) (string, error) {
	v, ok := fields.Get(key)
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case value.Null:
		return def, nil
	case value.String:
		return string(x), nil
	}
	return "", fmt.Errorf("%s must be a string, got %s", key, v.Kind())
}
