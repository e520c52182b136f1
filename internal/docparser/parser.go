// Package docparser parses the extended YAML dialect used by test specs.
//
// Input is split into documents on lines consisting solely of "---". Each
// document is decoded with gopkg.in/yaml.v3 into a node tree and then
// resolved into a value.Value in a single pass that interprets the custom
// tags (!Result, !Error, !Range, !Unordered, !!set, ...). Documents are
// independent: a malformed one is reported and its siblings still parse.
package docparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"gopkg.in/yaml.v3"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/value"
)

// Document is one successfully parsed document.
type Document struct {
	Index int // position among all documents of the input, failed ones included
	Line  int // 1-based input line on which the document starts
	Value value.Value
}

// Result holds the parsed documents and the errors of the ones that failed.
type Result struct {
	Documents []Document
	Errors    []error
}

// All iterates over the parsed documents in input order.
// The sequence can be ranged over any number of times.
func (r Result) All() iter.Seq2[int, value.Value] {
	return func(yield func(int, value.Value) bool) {
		for _, d := range r.Documents {
			if !yield(d.Index, d.Value) {
				return
			}
		}
	}
}

// Values returns the document values in order.
func (r Result) Values() []value.Value {
	out := make([]value.Value, len(r.Documents))
	for i, d := range r.Documents {
		out[i] = d.Value
	}
	return out
}

// Parse parses every document in text.
//
// Errors are *errors.Error values of kind KindParse whose Document field is
// the 1-based document number and whose Line is relative to text.
func Parse(text string) Result {
	return ParseSegments(Split(text))
}

// ParseSegments parses pre-split documents. A segment that itself holds
// several YAML documents (e.g. "--- !Test" start markers) yields one
// Document per YAML document. The decoder cannot resume after a syntax
// error, so the documents following a malformed one in the same segment
// are skipped; the recorded error says how many.
func ParseSegments(segments []Segment) Result {
	var res Result
	index := 0
	for _, seg := range segments {
		dec := yaml.NewDecoder(bytes.NewReader([]byte(seg.Text)))
		decoded := 0
		for {
			var root yaml.Node
			err := dec.Decode(&root)
			if errors.Is(err, io.EOF) {
				break
			}
			decoded++
			if err != nil {
				skipped := max(countDocuments(seg.Text)-decoded, 0)
				if skipped > 0 {
					err = fmt.Errorf("%w (%d later document(s) in this block skipped)", err, skipped)
				}
				res.Errors = append(res.Errors, parseError(err, index, seg.Line))
				index += 1 + skipped
				break
			}
			v, err := Resolve(&root)
			if err != nil {
				res.Errors = append(res.Errors, parseError(err, index, seg.Line))
			} else {
				res.Documents = append(res.Documents, Document{
					Index: index,
					Line:  seg.Line + max(root.Line-1, 0),
					Value: v,
				})
			}
			index++
		}
	}
	return res
}

// ParseDocument parses text as a single document.
func ParseDocument(text string) (value.Value, error) {
	res := Parse(text)
	if len(res.Errors) > 0 {
		return nil, res.Errors[0]
	}
	switch len(res.Documents) {
	case 0:
		return value.Null{}, nil
	case 1:
		return res.Documents[0].Value, nil
	default:
		return nil, oerrors.Parsef("expected a single document, found %d", len(res.Documents))
	}
}

func parseError(err error, index, segLine int) *oerrors.Error {
	pe := oerrors.Parse(err)
	pe.Document = index + 1
	var ne *NodeError
	if errors.As(err, &ne) && ne.Line > 0 {
		pe.Line = segLine + ne.Line - 1
	} else {
		pe.Line = segLine
	}
	return pe
}
