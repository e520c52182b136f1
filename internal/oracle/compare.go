package oracle

import (
	"fmt"
	"math"

	"github.com/AndreyAkinshin/specoracle/internal/value"
)

// DefaultFloatTolerance is the epsilon used for float comparison.
const DefaultFloatTolerance = 1e-6

// comparer matches an expected value against an actual one. Messages carry
// the dotted path of the first mismatch.
type comparer struct {
	tolerance float64
}

func (c comparer) compare(expected, actual value.Value, path string) (bool, string) {
	if actual == nil {
		return false, fmt.Sprintf("%s: expected %s, got nothing", pathStr(path), expected)
	}

	switch exp := expected.(type) {
	case value.Null:
		if _, ok := actual.(value.Null); ok {
			return true, ""
		}
	case value.Bool, value.String:
		if exp == actual {
			return true, ""
		}
	case value.Int:
		if act, ok := actual.(value.Int); ok && act == exp {
			return true, ""
		}
	case value.Float:
		return c.compareFloat(float64(exp), actual, path)
	case value.Range:
		if act, ok := actual.(value.Int); ok {
			if exp.Contains(int64(act)) {
				return true, ""
			}
			return false, fmt.Sprintf("%s: %d is outside %s", pathStr(path), act, exp)
		}
		if act, ok := actual.(value.Range); ok && act == exp {
			return true, ""
		}
	case value.Duration:
		switch act := actual.(type) {
		case value.Duration:
			if act == exp {
				return true, ""
			}
		case value.Int:
			if int64(act) == exp.Millis {
				return true, ""
			}
		}
	case value.Trimmed:
		if act, ok := actual.(value.String); ok {
			if value.TrimLines(string(act)) == exp.Text() {
				return true, ""
			}
			return false, fmt.Sprintf("%s: trimmed text differs:\n%s", pathStr(path), lineDiff(exp.Text(), value.TrimLines(string(act))))
		}
		if act, ok := actual.(value.Trimmed); ok && act.Text() == exp.Text() {
			return true, ""
		}
	case value.Seq:
		return c.compareSeq(exp, actual, path)
	case value.Unordered:
		return c.compareUnordered(exp.Items, actual, path)
	case *value.Set:
		return c.compareSet(exp, actual, path)
	case *value.Map:
		return c.compareMap(exp, actual, path)
	default:
		return false, fmt.Sprintf("%s: %s cannot be compared", pathStr(path), expected.Kind())
	}
	return false, fmt.Sprintf("%s: expected %s, got %s", pathStr(path), expected, actual)
}

func (c comparer) compareFloat(expected float64, actual value.Value, path string) (bool, string) {
	var act float64
	switch v := actual.(type) {
	case value.Float:
		act = float64(v)
	case value.Int:
		act = float64(v)
	default:
		return false, fmt.Sprintf("%s: expected float, got %s", pathStr(path), actual.Kind())
	}

	switch {
	case math.IsNaN(expected) && math.IsNaN(act):
		return true, ""
	case math.IsInf(expected, 1) && math.IsInf(act, 1):
		return true, ""
	case math.IsInf(expected, -1) && math.IsInf(act, -1):
		return true, ""
	case isWithinTolerance(expected, act, c.tolerance):
		return true, ""
	}
	return false, fmt.Sprintf("%s: expected %v, got %v (tolerance: %v)", pathStr(path), expected, act, c.tolerance)
}

// isWithinTolerance compares absolutely near zero and relatively elsewhere.
func isWithinTolerance(expected, actual, tolerance float64) bool {
	return math.Abs(expected-actual) <= tolerance*max(1, math.Abs(expected))
}

func (c comparer) compareSeq(expected value.Seq, actual value.Value, path string) (bool, string) {
	act, ok := asSeq(actual)
	if !ok {
		return false, fmt.Sprintf("%s: expected sequence, got %s", pathStr(path), actual.Kind())
	}
	if len(expected) != len(act) {
		return false, fmt.Sprintf("%s: expected %d elements, got %d", pathStr(path), len(expected), len(act))
	}
	for i := range expected {
		if ok, diff := c.compare(expected[i], act[i], fmt.Sprintf("%s[%d]", path, i)); !ok {
			return false, diff
		}
	}
	return true, ""
}

// compareUnordered checks bag equality: there must be a one-to-one pairing
// of expected and actual elements. Pairing is a bipartite matching, so an
// element matching several candidates (e.g. a Range) cannot steal the only
// partner of another.
func (c comparer) compareUnordered(expected value.Seq, actual value.Value, path string) (bool, string) {
	act, ok := asSeq(actual)
	if !ok {
		return false, fmt.Sprintf("%s: expected sequence, got %s", pathStr(path), actual.Kind())
	}
	if len(expected) != len(act) {
		return false, fmt.Sprintf("%s: expected %d elements, got %d", pathStr(path), len(expected), len(act))
	}

	edges := make([][]int, len(expected))
	for i, e := range expected {
		for j, a := range act {
			if ok, _ := c.compare(e, a, ""); ok {
				edges[i] = append(edges[i], j)
			}
		}
	}
	partner := make([]int, len(act))
	for j := range partner {
		partner[j] = -1
	}
	for i := range expected {
		if !augment(i, edges, partner, make([]bool, len(act))) {
			return false, fmt.Sprintf("%s[%d]: no matching element found for %s", pathStr(path), i, expected[i])
		}
	}
	return true, ""
}

// augment finds an augmenting path from expected element i (Kuhn's algorithm).
func augment(i int, edges [][]int, partner []int, visited []bool) bool {
	for _, j := range edges[i] {
		if visited[j] {
			continue
		}
		visited[j] = true
		if partner[j] < 0 || augment(partner[j], edges, partner, visited) {
			partner[j] = i
			return true
		}
	}
	return false
}

// compareSet checks that every expected element matches some actual element
// and every actual element matches some expected one. Duplicates on either
// side are irrelevant.
func (c comparer) compareSet(expected *value.Set, actual value.Value, path string) (bool, string) {
	var act []value.Value
	switch a := actual.(type) {
	case *value.Set:
		act = a.Elems()
	default:
		s, ok := asSeq(actual)
		if !ok {
			return false, fmt.Sprintf("%s: expected set, got %s", pathStr(path), actual.Kind())
		}
		act = s
	}

	covers := func(xs []value.Value, y value.Value, swap bool) bool {
		for _, x := range xs {
			e, a := x, y
			if swap {
				e, a = y, x
			}
			if ok, _ := c.compare(e, a, ""); ok {
				return true
			}
		}
		return false
	}
	for _, e := range expected.Elems() {
		if !covers(act, e, true) {
			return false, fmt.Sprintf("%s: missing element %s", pathStr(path), e)
		}
	}
	for _, a := range act {
		if !covers(expected.Elems(), a, false) {
			return false, fmt.Sprintf("%s: unexpected element %s", pathStr(path), a)
		}
	}
	return true, ""
}

func (c comparer) compareMap(expected *value.Map, actual value.Value, path string) (bool, string) {
	act, ok := actual.(*value.Map)
	if !ok {
		return false, fmt.Sprintf("%s: expected mapping, got %s", pathStr(path), actual.Kind())
	}
	return c.compareEntries(expected, act, path, true)
}

// compareEntries matches expected's entries in order. Keys missing from
// actual always fail; extra actual keys fail only when strict.
func (c comparer) compareEntries(expected, actual *value.Map, path string, strict bool) (bool, string) {
	for key := range expected.All() {
		if !actual.Has(key) {
			return false, fmt.Sprintf("%s: missing key %q", pathStr(path), key)
		}
	}
	if strict {
		for key := range actual.All() {
			if !expected.Has(key) {
				return false, fmt.Sprintf("%s: unexpected key %q", pathStr(path), key)
			}
		}
	}
	for key, exp := range expected.All() {
		act, _ := actual.Get(key)
		if ok, diff := c.compare(exp, act, joinPath(path, key)); !ok {
			return false, diff
		}
	}
	return true, ""
}

func asSeq(v value.Value) (value.Seq, bool) {
	switch x := v.(type) {
	case value.Seq:
		return x, true
	case value.Unordered:
		return x.Items, true
	}
	return nil, false
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// pathStr formats a path for diagnostics; "root" stands for the top level.
func pathStr(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
