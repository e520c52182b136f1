// Package value defines the tagged values produced by the extended document parser.
//
// Value is a closed set of variants. Every variant lives in this package and
// implements the unexported isValue marker, so a type switch over Value is
// exhaustive once it handles each Kind below.
package value

import (
	"fmt"
	"strconv"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSeq
	KindMap
	KindSet
	KindRange
	KindDuration
	KindUnordered
	KindTrimmed
	KindResult
	KindError
)

var kindNames = [...]string{
	KindNull:      "null",
	KindBool:      "bool",
	KindInt:       "int",
	KindFloat:     "float",
	KindString:    "string",
	KindSeq:       "sequence",
	KindMap:       "mapping",
	KindSet:       "set",
	KindRange:     "range",
	KindDuration:  "duration",
	KindUnordered: "unordered",
	KindTrimmed:   "trimmed string",
	KindResult:    "result",
	KindError:     "error expectation",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a tagged value.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

// Null is the YAML null.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Int is an integer scalar.
type Int int64

// Float is a floating point scalar.
type Float float64

// String is a plain string scalar.
type String string

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (String) Kind() Kind { return KindString }

func (Null) String() string     { return "null" }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (i Int) String() string    { return strconv.FormatInt(int64(i), 10) }
func (f Float) String() string  { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (s String) String() string { return strconv.Quote(string(s)) }

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (String) isValue() {}

// IsScalar reports whether v is one of the scalar variants.
func IsScalar(v Value) bool {
	switch v.Kind() {
	case KindNull, KindBool, KindInt, KindFloat, KindString:
		return true
	}
	return false
}
