package value

import "math"

// Equal reports structural equality of two values: same variant, same
// content. It is exact (no float tolerance) and treats NaN as equal to NaN.
// Oracle matching with tolerances and tag semantics lives elsewhere.
func Equal(a, b Value) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Null:
		return true
	case Bool:
		return x == b.(Bool)
	case Int:
		return x == b.(Int)
	case Float:
		y := b.(Float)
		return x == y || (math.IsNaN(float64(x)) && math.IsNaN(float64(y)))
	case String:
		return x == b.(String)
	case Seq:
		return seqEqual(x, b.(Seq))
	case Unordered:
		return bagEqual(x.Items, b.(Unordered).Items)
	case *Map:
		return x.Equal(b.(*Map))
	case *Set:
		return x.Equal(b.(*Set))
	case Range:
		return x == b.(Range)
	case Duration:
		return x == b.(Duration)
	case Trimmed:
		return x.text == b.(Trimmed).text
	case *Result:
		y := b.(*Result)
		return x.Status == y.Status &&
			(x.Solution == nil) == (y.Solution == nil) && x.Solution.Equal(y.Solution) &&
			Equal(x.Objective, y.Objective) &&
			Equal(x.OutputText, y.OutputText)
	case *ErrorExpectation:
		return *x == *b.(*ErrorExpectation)
	}
	return false
}

func seqEqual(a, b Seq) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// bagEqual reports whether a and b hold the same elements with the same
// multiplicities. Equal is an equivalence, so greedy pairing suffices.
func bagEqual(a, b Seq) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, x := range a {
		for j, y := range b {
			if !used[j] && Equal(x, y) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// isNil reports whether v is nil or a typed nil pointer variant.
func isNil(v Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *Map:
		return x == nil
	case *Set:
		return x == nil
	case *Result:
		return x == nil
	case *ErrorExpectation:
		return x == nil
	}
	return false
}
