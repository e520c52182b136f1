package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/AndreyAkinshin/specoracle/internal/value"
)

// maxExactInt is the largest magnitude a JSON number holds without loss
// once canonicalized to an IEEE 754 double.
const maxExactInt = 1 << 53

func encodeInt(i int64) any {
	if i > maxExactInt || i < -maxExactInt {
		return strconv.FormatInt(i, 10)
	}
	return i
}

func encodeFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

func encodeMap(m *value.Map) (map[string]any, error) {
	entries := make([]any, 0, m.Len())
	for k, v := range m.All() {
		ev, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		entries = append(entries, map[string]any{"key": k, "value": ev})
	}
	return map[string]any{"map": entries}, nil
}

func encodeResult(r *value.Result) (map[string]any, error) {
	out := map[string]any{"status": r.Status}
	if r.Solution != nil {
		sol, err := encodeMap(r.Solution)
		if err != nil {
			return nil, fmt.Errorf("solution: %w", err)
		}
		out["solution"] = sol
	}
	if r.Objective != nil {
		v, err := encodeValue(r.Objective)
		if err != nil {
			return nil, err
		}
		out["objective"] = v
	}
	if r.OutputText != nil {
		v, err := encodeValue(r.OutputText)
		if err != nil {
			return nil, err
		}
		out["output_text"] = v
	}
	return out, nil
}

func encodeItems(items []value.Value) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, it := range items {
		v, err := encodeValue(it)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func encodeValue(v value.Value) (any, error) {
	tagged := func(tag string, payload any) map[string]any {
		return map[string]any{tag: payload}
	}

	switch x := v.(type) {
	case nil, value.Null:
		return tagged("null", true), nil
	case value.Bool:
		return tagged("bool", bool(x)), nil
	case value.Int:
		return tagged("int", encodeInt(int64(x))), nil
	case value.Float:
		return tagged("float", encodeFloat(float64(x))), nil
	case value.String:
		return tagged("string", string(x)), nil
	case value.Range:
		return tagged("range", map[string]any{"lo": encodeInt(x.Lo), "hi": encodeInt(x.Hi)}), nil
	case value.Duration:
		return tagged("duration", encodeInt(x.Millis)), nil
	case value.Trimmed:
		return tagged("trim", x.Text()), nil
	case value.Seq:
		items, err := encodeItems(x)
		return tagged("seq", items), err
	case value.Unordered:
		items, err := encodeItems(x.Items)
		return tagged("unordered", items), err
	case *value.Set:
		items, err := encodeItems(x.Elems())
		return tagged("set", items), err
	case *value.Map:
		return encodeMap(x)
	case *value.Result:
		r, err := encodeResult(x)
		return tagged("result", r), err
	case *value.ErrorExpectation:
		e := map[string]any{"kind": x.Type}
		if x.Message != "" {
			e["message"] = x.Message
		}
		if x.Regex != "" {
			e["regex"] = x.Regex
		}
		return tagged("error", e), nil
	}
	return nil, fmt.Errorf("cannot encode %s value", v.Kind())
}

func decodeInt(raw json.RawMessage) (int64, error) {
	var n any
	if err := unmarshal(raw, &n); err != nil {
		return 0, err
	}
	switch x := n.(type) {
	case json.Number:
		return strconv.ParseInt(x.String(), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	return 0, fmt.Errorf("expected integer, got %s", raw)
}

func decodeFloat(raw json.RawMessage) (float64, error) {
	var n any
	if err := unmarshal(raw, &n); err != nil {
		return 0, err
	}
	switch x := n.(type) {
	case json.Number:
		return x.Float64()
	case string:
		switch x {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
	}
	return 0, fmt.Errorf("expected float, got %s", raw)
}

func decodeOptions(raw json.RawMessage) (*value.Map, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var obj struct {
		Map json.RawMessage `json:"map"`
	}
	if err := unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	return decodeEntries(obj.Map)
}

func decodeEntries(raw json.RawMessage) (*value.Map, error) {
	var entries []struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	if err := unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	out := make([]value.Entry, 0, len(entries))
	for _, e := range entries {
		v, err := decodeValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Key, err)
		}
		out = append(out, value.Entry{Key: e.Key, Value: v})
	}
	return value.NewMap(out...)
}

func decodeItems(raw json.RawMessage) ([]value.Value, error) {
	var items []json.RawMessage
	if err := unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, len(items))
	for i, it := range items {
		v, err := decodeValue(it)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeOutcome(raw json.RawMessage) (value.Outcome, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}
	out, ok := v.(value.Outcome)
	if !ok {
		return nil, fmt.Errorf("expected outcome, got %s", v.Kind())
	}
	return out, nil
}

func decodeResult(raw json.RawMessage) (*value.Result, error) {
	var obj struct {
		Status     string          `json:"status"`
		Solution   json.RawMessage `json:"solution"`
		Objective  json.RawMessage `json:"objective"`
		OutputText json.RawMessage `json:"output_text"`
	}
	if err := unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	r := &value.Result{Status: obj.Status}
	var err error
	if r.Solution, err = decodeOptions(obj.Solution); err != nil {
		return nil, fmt.Errorf("solution: %w", err)
	}
	if len(obj.Objective) > 0 {
		if r.Objective, err = decodeValue(obj.Objective); err != nil {
			return nil, fmt.Errorf("objective: %w", err)
		}
	}
	if len(obj.OutputText) > 0 {
		if r.OutputText, err = decodeValue(obj.OutputText); err != nil {
			return nil, fmt.Errorf("output_text: %w", err)
		}
	}
	return r, nil
}

// decodeValue rebuilds a value from its single-key tagged object.
func decodeValue(raw json.RawMessage) (value.Value, error) {
	var obj map[string]json.RawMessage
	if err := unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if len(obj) != 1 {
		return nil, fmt.Errorf("value must have exactly one tag, got %d", len(obj))
	}

	for tag, payload := range obj {
		switch tag {
		case "null":
			return value.Null{}, nil
		case "bool":
			var b bool
			err := unmarshal(payload, &b)
			return value.Bool(b), err
		case "int":
			i, err := decodeInt(payload)
			return value.Int(i), err
		case "float":
			f, err := decodeFloat(payload)
			return value.Float(f), err
		case "string":
			var s string
			err := unmarshal(payload, &s)
			return value.String(s), err
		case "trim":
			var s string
			err := unmarshal(payload, &s)
			return value.NewTrimmed(s), err
		case "duration":
			ms, err := decodeInt(payload)
			return value.Duration{Millis: ms}, err
		case "range":
			var r struct {
				Lo json.RawMessage `json:"lo"`
				Hi json.RawMessage `json:"hi"`
			}
			if err := unmarshal(payload, &r); err != nil {
				return nil, err
			}
			lo, err := decodeInt(r.Lo)
			if err != nil {
				return nil, err
			}
			hi, err := decodeInt(r.Hi)
			if err != nil {
				return nil, err
			}
			return value.Range{Lo: lo, Hi: hi}, nil
		case "seq":
			items, err := decodeItems(payload)
			return value.Seq(items), err
		case "unordered":
			items, err := decodeItems(payload)
			return value.Unordered{Items: items}, err
		case "set":
			items, err := decodeItems(payload)
			if err != nil {
				return nil, err
			}
			return value.NewSet(items...), nil
		case "map":
			return decodeEntries(payload)
		case "result":
			return decodeResult(payload)
		case "error":
			var e struct {
				Kind    string `json:"kind"`
				Message string `json:"message"`
				Regex   string `json:"regex"`
			}
			if err := unmarshal(payload, &e); err != nil {
				return nil, err
			}
			return &value.ErrorExpectation{Type: e.Kind, Message: e.Message, Regex: e.Regex}, nil
		default:
			return nil, fmt.Errorf("unknown value tag %q", tag)
		}
	}
	return nil, nil
}

func unmarshal(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
