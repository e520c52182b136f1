package docparser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/specoracle/internal/value"
)

// Tags understood by the resolver.
const (
	TagTest      = "!Test"
	TagSuite     = "!Suite"
	TagResult    = "!Result"
	TagError     = "!Error"
	TagSolution  = "!Solution"
	TagRange     = "!Range"
	TagSet       = "!!set"
	TagUnordered = "!Unordered"
	TagDuration  = "!Duration"
	TagTrim      = "!Trim"
)

// maxDepth bounds nesting, including alias expansion.
const maxDepth = 512

// NodeError is a resolution failure located at a node.
// Line is relative to the document text the node was decoded from.
type NodeError struct {
	Line int
	Msg  string
	Err  error
}

func (e *NodeError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *NodeError) Unwrap() error { return e.Err }

func nodeErrorf(n *yaml.Node, format string, args ...any) *NodeError {
	return &NodeError{Line: n.Line, Msg: fmt.Sprintf(format, args...)}
}

func nodeWrap(n *yaml.Node, err error) *NodeError {
	return &NodeError{Line: n.Line, Err: err}
}

// Resolve maps a decoded YAML node tree to a tagged value.
func Resolve(n *yaml.Node) (value.Value, error) {
	return resolve(n, 0)
}

func resolve(n *yaml.Node, depth int) (value.Value, error) {
	if depth > maxDepth {
		return nil, nodeErrorf(n, "document nested deeper than %d levels", maxDepth)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Null{}, nil
		}
		return resolve(n.Content[0], depth+1)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nodeErrorf(n, "unresolved alias %q", n.Value)
		}
		return resolve(n.Alias, depth+1)
	}

	switch n.Tag {
	case TagResult:
		return resolveResult(n, depth)
	case TagError:
		return resolveError(n, depth)
	case TagSolution:
		if n.Kind != yaml.MappingNode {
			return nil, nodeErrorf(n, "%s must be a mapping", TagSolution)
		}
		return resolveMapping(n, depth)
	case TagRange:
		lit, err := scalarOf(n, TagRange)
		if err != nil {
			return nil, err
		}
		r, err := value.ParseRange(lit)
		if err != nil {
			return nil, nodeWrap(n, err)
		}
		return r, nil
	case TagSet:
		return resolveSet(n, depth)
	case TagUnordered:
		if n.Kind != yaml.SequenceNode {
			return nil, nodeErrorf(n, "%s must be a sequence", TagUnordered)
		}
		items, err := resolveSequence(n, depth)
		if err != nil {
			return nil, err
		}
		return value.Unordered{Items: items}, nil
	case TagDuration:
		lit, err := scalarOf(n, TagDuration)
		if err != nil {
			return nil, err
		}
		d, err := value.ParseDuration(lit)
		if err != nil {
			return nil, nodeWrap(n, err)
		}
		return d, nil
	case TagTrim:
		lit, err := scalarOf(n, TagTrim)
		if err != nil {
			return nil, err
		}
		return value.NewTrimmed(lit), nil
	case TagTest, TagSuite:
		return resolveNative(untagged(n), depth)
	}

	if n.Style&yaml.TaggedStyle != 0 && !isCoreTag(n.Tag) {
		return nil, nodeErrorf(n, "unknown tag %s", n.Tag)
	}
	return resolveNative(n, depth)
}

// untagged returns a shallow copy of n with its explicit tag removed so the
// scalar type is inferred from the text again.
func untagged(n *yaml.Node) *yaml.Node {
	c := *n
	c.Tag = ""
	c.Style &^= yaml.TaggedStyle
	c.Tag = c.ShortTag()
	return &c
}

func isCoreTag(tag string) bool {
	switch tag {
	case "!!null", "!!bool", "!!int", "!!float", "!!str", "!!seq", "!!map", "!!timestamp", "!!binary":
		return true
	}
	return false
}

func resolveNative(n *yaml.Node, depth int) (value.Value, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		return resolveSequence(n, depth)
	case yaml.MappingNode:
		return resolveMapping(n, depth)
	case yaml.ScalarNode:
		return resolveScalar(n)
	}
	return nil, nodeErrorf(n, "unexpected node kind %d", n.Kind)
}

func resolveScalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, nodeWrap(n, err)
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, nodeWrap(n, err)
		}
		return value.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, nodeWrap(n, err)
		}
		return value.Float(f), nil
	default:
		return value.String(n.Value), nil
	}
}

func resolveSequence(n *yaml.Node, depth int) (value.Seq, error) {
	seq := make(value.Seq, 0, len(n.Content))
	for _, c := range n.Content {
		v, err := resolve(c, depth+1)
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
	return seq, nil
}

func resolveMapping(n *yaml.Node, depth int) (*value.Map, error) {
	entries := make([]value.Entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.AliasNode && k.Alias != nil {
			k = k.Alias
		}
		if k.Kind != yaml.ScalarNode {
			return nil, nodeErrorf(k, "mapping keys must be scalars")
		}
		val, err := resolve(v, depth+1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, value.Entry{Key: k.Value, Value: val})
	}
	m, err := value.NewMap(entries...)
	if err != nil {
		return nil, nodeWrap(n, err)
	}
	return m, nil
}

// resolveSet accepts the YAML set notation (a mapping with null values,
// e.g. !!set {a, b}) as well as a plain sequence.
func resolveSet(n *yaml.Node, depth int) (value.Value, error) {
	var elems []value.Value
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if v.ShortTag() != "!!null" {
				return nil, nodeErrorf(v, "%s entries must not carry values", TagSet)
			}
			e, err := resolve(k, depth+1)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
	case yaml.SequenceNode:
		seq, err := resolveSequence(n, depth)
		if err != nil {
			return nil, err
		}
		elems = seq
	default:
		return nil, nodeErrorf(n, "%s must be a mapping or a sequence", TagSet)
	}
	return value.NewSet(elems...), nil
}

func scalarOf(n *yaml.Node, tag string) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", nodeErrorf(n, "%s must be a scalar", tag)
	}
	return n.Value, nil
}

func resolveResult(n *yaml.Node, depth int) (value.Value, error) {
	fields, err := fieldsOf(n, TagResult, "status", "solution", "objective", "output", "output_text")
	if err != nil {
		return nil, err
	}
	r := &value.Result{Status: value.DefaultStatus}
	if f, ok := fields["status"]; ok {
		if f.Kind != yaml.ScalarNode {
			return nil, nodeErrorf(f, "%s status must be a scalar", TagResult)
		}
		r.Status = f.Value
	}
	if f, ok := fields["solution"]; ok {
		v, err := resolve(f, depth+1)
		if err != nil {
			return nil, err
		}
		switch sol := v.(type) {
		case *value.Map:
			r.Solution = sol
		case value.Null:
		default:
			return nil, nodeErrorf(f, "%s solution must be a mapping, got %s", TagResult, v.Kind())
		}
	}
	if f, ok := fields["objective"]; ok {
		if r.Objective, err = resolve(f, depth+1); err != nil {
			return nil, err
		}
	}
	for _, key := range []string{"output", "output_text"} {
		if f, ok := fields[key]; ok {
			if r.OutputText != nil {
				return nil, nodeErrorf(f, "%s sets both output and output_text", TagResult)
			}
			if r.OutputText, err = resolve(f, depth+1); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func resolveError(n *yaml.Node, depth int) (value.Value, error) {
	fields, err := fieldsOf(n, TagError, "type", "kind", "message", "regex")
	if err != nil {
		return nil, err
	}
	e := &value.ErrorExpectation{}
	for key, dst := range map[string]*string{
		"type":    &e.Type,
		"kind":    &e.Type,
		"message": &e.Message,
		"regex":   &e.Regex,
	} {
		f, ok := fields[key]
		if !ok {
			continue
		}
		if f.Kind != yaml.ScalarNode {
			return nil, nodeErrorf(f, "%s %s must be a scalar", TagError, key)
		}
		*dst = f.Value
	}
	if _, ok := fields["type"]; ok {
		if _, dup := fields["kind"]; dup {
			return nil, nodeErrorf(n, "%s sets both type and kind", TagError)
		}
	}
	if e.Type == "" {
		return nil, nodeErrorf(n, "%s requires a type", TagError)
	}
	return e, nil
}

// fieldsOf indexes the value nodes of a tagged mapping, rejecting unknown
// and repeated keys.
func fieldsOf(n *yaml.Node, tag string, known ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeErrorf(n, "%s must be a mapping", tag)
	}
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if !allowed[k.Value] {
			return nil, nodeErrorf(k, "%s has unknown field %q", tag, k.Value)
		}
		if _, dup := fields[k.Value]; dup {
			return nil, nodeErrorf(k, "%s repeats field %q", tag, k.Value)
		}
		if v.Kind == yaml.AliasNode && v.Alias != nil {
			v = v.Alias
		}
		fields[k.Value] = v
	}
	return fields, nil
}
