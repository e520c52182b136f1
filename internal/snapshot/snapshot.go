// Package snapshot encodes a corpus as canonical JSON and decodes it back.
//
// Values are written as single-key tagged objects so that every variant of
// the value model survives the round trip. Mappings are written as entry
// arrays to keep their order. The output is canonicalized per RFC 8785, so
// equal corpora always produce identical bytes.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	jsoncanonicalizer "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/schema"
	"github.com/AndreyAkinshin/specoracle/internal/tests"
)

// Version is the snapshot format version.
const Version = 1

type document struct {
	Version int         `json:"version"`
	Suites  []suiteJSON `json:"suites"`
}

type suiteJSON struct {
	Name         string     `json:"name"`
	Strict       bool       `json:"strict,omitempty"`
	Options      any        `json:"options,omitempty"`
	Solvers      []string   `json:"solvers,omitempty"`
	IncludeGlobs []string   `json:"include_globs,omitempty"`
	IncludeFiles []string   `json:"include_files,omitempty"`
	TestCases    []caseJSON `json:"test_cases,omitempty"`
}

type caseJSON struct {
	Suite        string   `json:"suite"`
	SourceFile   string   `json:"source_file"`
	Index        int      `json:"index"`
	Name         string   `json:"name,omitempty"`
	Type         string   `json:"type,omitempty"`
	Solvers      []string `json:"solvers,omitempty"`
	Options      any      `json:"options,omitempty"`
	Includes     []string `json:"includes,omitempty"`
	CheckAgainst []string `json:"check_against,omitempty"`
	Markers      []string `json:"markers,omitempty"`
	Expected     []any    `json:"expected"`
}

// Encode renders corpus as canonical JSON. The corpus root and its
// ingestion errors are not part of the snapshot.
func Encode(corpus *tests.Corpus) ([]byte, error) {
	doc := document{Version: Version, Suites: make([]suiteJSON, 0, len(corpus.Suites))}
	for _, s := range corpus.Suites {
		sj := suiteJSON{
			Name:         s.Name,
			Strict:       s.Strict,
			Solvers:      s.Solvers,
			IncludeGlobs: s.IncludeGlobs,
			IncludeFiles: s.IncludeFiles,
		}
		if s.Options != nil {
			opts, err := encodeMap(s.Options)
			if err != nil {
				return nil, fmt.Errorf("suite %q options: %w", s.Name, err)
			}
			sj.Options = opts
		}
		for _, tc := range s.TestCases {
			cj, err := encodeCase(tc)
			if err != nil {
				return nil, err
			}
			sj.TestCases = append(sj.TestCases, cj)
		}
		doc.Suites = append(doc.Suites, sj)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize snapshot: %w", err)
	}
	return out, nil
}

func encodeCase(tc *tests.TestCase) (caseJSON, error) {
	cj := caseJSON{
		Suite:        tc.Suite,
		SourceFile:   tc.SourceFile,
		Index:        tc.Index,
		Name:         tc.Name,
		Type:         tc.Type,
		Solvers:      tc.Solvers,
		Includes:     tc.Includes,
		CheckAgainst: tc.CheckAgainst,
		Markers:      tc.Markers,
		Expected:     make([]any, 0, len(tc.Expectations)),
	}
	if tc.Options != nil {
		opts, err := encodeMap(tc.Options)
		if err != nil {
			return caseJSON{}, fmt.Errorf("%s options: %w", tc.ID(), err)
		}
		cj.Options = opts
	}
	for _, exp := range tc.Expectations {
		v, err := encodeValue(exp)
		if err != nil {
			return caseJSON{}, fmt.Errorf("%s: %w", tc.ID(), err)
		}
		cj.Expected = append(cj.Expected, v)
	}
	return cj, nil
}

// Decode validates data against the snapshot schema and rebuilds the corpus.
// Cases are listed per suite and, flattened in suite order, in Corpus.Cases.
func Decode(data []byte) (*tests.Corpus, error) {
	if err := schema.ValidateSnapshot(data); err != nil {
		return nil, oerrors.Parse(err)
	}

	var doc struct {
		Suites []struct {
			suiteJSON
			Options   json.RawMessage `json:"options"`
			TestCases []struct {
				caseJSON
				Options  json.RawMessage   `json:"options"`
				Expected []json.RawMessage `json:"expected"`
			} `json:"test_cases"`
		} `json:"suites"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, oerrors.Parse(err)
	}

	corpus := &tests.Corpus{}
	for _, sj := range doc.Suites {
		s := &tests.TestSuite{
			Name:         sj.Name,
			Strict:       sj.Strict,
			Solvers:      sj.Solvers,
			IncludeGlobs: sj.IncludeGlobs,
			IncludeFiles: sj.IncludeFiles,
		}
		var err error
		if s.Options, err = decodeOptions(sj.Options); err != nil {
			return nil, oerrors.Parsef("suite %q options: %v", sj.Name, err)
		}
		for _, cj := range sj.TestCases {
			tc := &tests.TestCase{
				Suite:        cj.Suite,
				SourceFile:   cj.SourceFile,
				Index:        cj.Index,
				Name:         cj.Name,
				Type:         cj.Type,
				Solvers:      cj.Solvers,
				Includes:     cj.Includes,
				CheckAgainst: cj.CheckAgainst,
				Markers:      cj.Markers,
			}
			if tc.Options, err = decodeOptions(cj.Options); err != nil {
				return nil, oerrors.Parsef("%s options: %v", tc.ID(), err)
			}
			for i, raw := range cj.Expected {
				out, err := decodeOutcome(raw)
				if err != nil {
					return nil, oerrors.Parsef("%s expected[%d]: %v", tc.ID(), i, err)
				}
				tc.Expectations = append(tc.Expectations, out)
			}
			s.TestCases = append(s.TestCases, tc)
			corpus.Cases = append(corpus.Cases, tc)
		}
		corpus.Suites = append(corpus.Suites, s)
	}
	return corpus, nil
}

// WriteFile encodes corpus and writes it to path.
func WriteFile(path string, corpus *tests.Corpus) error {
	data, err := Encode(corpus)
	if err != nil {
		return oerrors.Wrap(err, "encode snapshot")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return oerrors.Wrap(err, "write snapshot")
	}
	return nil
}

// ReadFile reads and decodes a snapshot file.
func ReadFile(path string) (*tests.Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NotFound("snapshot", path)
		}
		return nil, oerrors.Wrap(err, "read snapshot")
	}
	corpus, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return corpus, nil
}
