package value

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// FromAny converts a decoded JSON or YAML Go value into a Value.
//
// Supported inputs are nil, bool, all Go integer kinds, float32/float64,
// json.Number, string, []any, map[string]any and existing Values.
// JSON objects carry no key order; their keys are sorted so the result is
// deterministic. Floats with no fractional part stay floats.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", x)
		}
		return Int(x), nil
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", x)
		}
		return Int(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return Int(i), nil
		}
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", x)
		}
		return Float(f), nil
	case string:
		return String(x), nil
	case []any:
		seq := make(Seq, len(x))
		for i, item := range x {
			iv, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq[i] = iv
		}
		return seq, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			kv, err := FromAny(x[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			entries[i] = Entry{Key: k, Value: kv}
		}
		return NewMap(entries...)
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// MapFromAny converts a decoded object into a Map.
func MapFromAny(m map[string]any) (*Map, error) {
	if m == nil {
		return EmptyMap(), nil
	}
	v, err := FromAny(m)
	if err != nil {
		return nil, err
	}
	return v.(*Map), nil
}
