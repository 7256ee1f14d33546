package resolver

import (
	"fmt"
	json "github.com/goccy/go-json"
	"sort"
	"strconv"
)

type Kind uint8

const (
	Null Kind = iota
	Map
	Seq
	Scalar
)

func (k Kind) String() string {
	switch k {
	case Map:
		return "map"
	case Seq:
		return "seq"
	case Scalar:
		return "scalar"
	default:
		return "null"
	}
}

// Node is one value of a decoded JSON document. The zero Node is Null.
// Map keys are kept sorted so every walk over a Map visits children in the same order.
type Node struct {
	kind   Kind
	keys   []string
	fields map[string]Node
	items  []Node
	value  any
}

func NewMap(fields map[string]Node) Node {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Node{kind: Map, keys: keys, fields: fields}
}

func NewSeq(items ...Node) Node {
	if items == nil {
		items = []Node{}
	}
	return Node{kind: Seq, items: items}
}

func NewString(s string) Node {
	return Node{kind: Scalar, value: s}
}

func NewNumber(f float64) Node {
	return Node{kind: Scalar, value: f}
}

func NewBool(b bool) Node {
	return Node{kind: Scalar, value: b}
}

// FromValue converts the generic output of a JSON decoder into a Node.
// Unsupported Go types become Null.
func FromValue(v any) Node {
	switch val := v.(type) {
	case nil:
		return Node{}
	case Node:
		return val
	case map[string]any:
		fields := make(map[string]Node, len(val))
		for k, child := range val {
			fields[k] = FromValue(child)
		}
		return NewMap(fields)
	case []any:
		items := make([]Node, len(val))
		for i, child := range val {
			items[i] = FromValue(child)
		}
		return NewSeq(items...)
	case string:
		return NewString(val)
	case bool:
		return NewBool(val)
	case float64:
		return NewNumber(val)
	case float32:
		return NewNumber(float64(val))
	case int:
		return NewNumber(float64(val))
	case int64:
		return NewNumber(float64(val))
	}
	return Node{}
}

// Parse decodes a JSON document into a Node tree.
func Parse(data []byte) (Node, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Node{}, fmt.Errorf("decode document: %w", err)
	}
	return FromValue(raw), nil
}

func (n Node) Kind() Kind { return n.kind }

func (n Node) IsNull() bool { return n.kind == Null }

// Get returns the direct child stored under key of a Map node.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != Map {
		return Node{}, false
	}
	child, ok := n.fields[key]
	return child, ok
}

func (n Node) Keys() []string {
	return append([]string(nil), n.keys...)
}

func (n Node) Items() []Node {
	if n.kind != Seq {
		return nil
	}
	return n.items
}

// Len reports the number of children of a Map or Seq and 0 otherwise.
func (n Node) Len() int {
	switch n.kind {
	case Map:
		return len(n.fields)
	case Seq:
		return len(n.items)
	}
	return 0
}

func (n Node) AsString() (string, bool) {
	if n.kind != Scalar {
		return "", false
	}
	switch v := n.value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

func (n Node) AsFloat() (float64, bool) {
	if n.kind != Scalar {
		return 0, false
	}
	switch v := n.value.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func (n Node) AsBool() (bool, bool) {
	if n.kind != Scalar {
		return false, false
	}
	b, ok := n.value.(bool)
	return b, ok
}

func (n Node) isFalse() bool {
	b, ok := n.AsBool()
	return ok && !b
}

func (n Node) isEmptyContainer() bool {
	return (n.kind == Map || n.kind == Seq) && n.Len() == 0
}

// Flatten returns every non-null leaf of n, descending through nested sequences
// at any depth. A non-sequence node flattens to itself.
func (n Node) Flatten() []Node {
	switch n.kind {
	case Null:
		return nil
	case Seq:
		var out []Node
		for _, item := range n.items {
			out = append(out, item.Flatten()...)
		}
		return out
	}
	return []Node{n}
}

// Strings collects the string form of every scalar leaf.
func (n Node) Strings() []string {
	var out []string
	for _, leaf := range n.Flatten() {
		if s, ok := leaf.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

// First returns the first non-null leaf, or Null.
func (n Node) First() Node {
	leaves := n.Flatten()
	if len(leaves) == 0 {
		return Node{}
	}
	return leaves[0]
}

// Equal reports deep equality of two nodes.
func (n Node) Equal(other Node) bool {
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case Null:
		return true
	case Scalar:
		return n.value == other.value
	case Seq:
		if len(n.items) != len(other.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case Map:
		if len(n.fields) != len(other.fields) {
			return false
		}
		for k, v := range n.fields {
			ov, ok := other.fields[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}
