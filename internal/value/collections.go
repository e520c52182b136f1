package value

import (
	"fmt"
	"iter"
	"strings"
)

// Seq is an ordered sequence.
type Seq []Value

// Unordered is a sequence compared with bag semantics.
type Unordered struct {
	Items Seq
}

func (Seq) Kind() Kind       { return KindSeq }
func (Unordered) Kind() Kind { return KindUnordered }
func (Seq) isValue()         {}
func (Unordered) isValue()   {}

func (s Seq) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (u Unordered) String() string { return "!Unordered " + u.Items.String() }

// Equal reports structural equality.
func (u Unordered) Equal(other Unordered) bool { return Equal(u, other) }

// Entry is a single key/value pair of a Map.
type Entry struct {
	Key   string
	Value Value
}

// Map is a string-keyed mapping that keeps insertion order.
// A Map is immutable once constructed.
type Map struct {
	entries []Entry
	index   map[string]int
}

// DuplicateKeyError is returned when a mapping repeats a key.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate mapping key %q", e.Key)
}

// NewMap builds a Map from entries in order.
func NewMap(entries ...Entry) (*Map, error) {
	m := &Map{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if _, dup := m.index[e.Key]; dup {
			return nil, &DuplicateKeyError{Key: e.Key}
		}
		if e.Value == nil {
			e.Value = Null{}
		}
		m.index[e.Key] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return m, nil
}

// EmptyMap returns a Map with no entries.
func EmptyMap() *Map {
	return &Map{index: map[string]int{}}
}

func (*Map) Kind() Kind { return KindMap }
func (*Map) isValue()   {}

// Len returns the number of entries. A nil Map is empty.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, m.Len())
	for i := range keys {
		keys[i] = m.entries[i].Key
	}
	return keys
}

// Entries returns a copy of the entries in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// All iterates over the entries in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, e := range m.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Merge returns a new Map holding m's entries overridden by over's.
// Keys of m keep their position; keys only present in over are appended.
func (m *Map) Merge(over *Map) *Map {
	out := &Map{
		entries: make([]Entry, 0, m.Len()+over.Len()),
		index:   make(map[string]int, m.Len()+over.Len()),
	}
	for k, v := range m.All() {
		if ov, ok := over.Get(k); ok {
			v = ov
		}
		out.index[k] = len(out.entries)
		out.entries = append(out.entries, Entry{Key: k, Value: v})
	}
	for k, v := range over.All() {
		if _, ok := out.index[k]; ok {
			continue
		}
		out.index[k] = len(out.entries)
		out.entries = append(out.entries, Entry{Key: k, Value: v})
	}
	return out
}

func (m *Map) String() string {
	parts := make([]string, 0, m.Len())
	for k, v := range m.All() {
		parts = append(parts, k+": "+v.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Equal reports structural equality, including entry order.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i := range m.Len() {
		a, b := m.entries[i], other.entries[i]
		if a.Key != b.Key || !Equal(a.Value, b.Value) {
			return false
		}
	}
	return true
}

// Set is an order-insensitive collection without duplicates.
type Set struct {
	elems []Value
}

// NewSet builds a Set, silently collapsing duplicate elements.
// The first occurrence of each element determines its position.
func NewSet(elems ...Value) *Set {
	s := &Set{elems: make([]Value, 0, len(elems))}
	for _, e := range elems {
		if !s.Contains(e) {
			s.elems = append(s.elems, e)
		}
	}
	return s
}

func (*Set) Kind() Kind { return KindSet }
func (*Set) isValue()   {}

// Len returns the number of distinct elements.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.elems)
}

// Elems returns a copy of the elements.
func (s *Set) Elems() []Value {
	if s == nil {
		return nil
	}
	out := make([]Value, len(s.elems))
	copy(out, s.elems)
	return out
}

// Contains reports whether an element structurally equal to v is present.
func (s *Set) Contains(v Value) bool {
	if s == nil {
		return false
	}
	for _, e := range s.elems {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

func (s *Set) String() string {
	parts := make([]string, s.Len())
	for i, e := range s.Elems() {
		parts[i] = e.String()
	}
	return "!!set {" + strings.Join(parts, ", ") + "}"
}

// Equal reports set equality, ignoring order.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, e := range s.Elems() {
		if !other.Contains(e) {
			return false
		}
	}
	return true
}
