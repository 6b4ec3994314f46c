package eon

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Node. It never changes after construction.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindArray
	KindSet
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Node is one element of an immutable value tree. Nodes are built once by a
// parser or bridge and only read afterwards, so they are safe for concurrent
// readers. Children may be shared between trees.
type Node struct {
	kind  Kind
	text  string
	items []*Node // array and set children; map values in key order
	keys  []string
	index map[string]int
}

// ErrDuplicateKey is returned by NewMap when a key appears twice.
var ErrDuplicateKey = errors.New("eon: duplicate map key")

// Null is the shared null node.
var Null = &Node{kind: KindNull}

// Entry is one (key, value) pair of a map node.
type Entry struct {
	Key   string
	Value *Node
}

// KV builds an Entry.
func KV(key string, value *Node) Entry { return Entry{Key: key, Value: value} }

// Scalar returns a scalar node holding the literal text.
func Scalar(text string) *Node { return &Node{kind: KindScalar, text: text} }

// Array returns an array node. Order and duplicates are kept.
func Array(items ...*Node) *Node {
	return &Node{kind: KindArray, items: cloneItems(items)}
}

// Set returns a set node. Structurally equal items collapse into the first
// occurrence, so iteration follows first-seen order.
func Set(items ...*Node) *Node {
	seen := make(map[string]struct{}, len(items))
	out := make([]*Node, 0, len(items))
	for _, it := range cloneItems(items) {
		c := it.canonical()
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, it)
	}
	return &Node{kind: KindSet, items: out}
}

// NewMap returns a map node with entries in the given order. Keys must be
// unique; they are not checked for identifier syntax here because the engine
// does that while iterating.
func NewMap(entries ...Entry) (*Node, error) {
	n := &Node{
		kind:  KindMap,
		items: make([]*Node, 0, len(entries)),
		keys:  make([]string, 0, len(entries)),
		index: make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if _, dup := n.index[e.Key]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateKey, e.Key)
		}
		v := e.Value
		if v == nil {
			v = Null
		}
		n.index[e.Key] = len(n.keys)
		n.keys = append(n.keys, e.Key)
		n.items = append(n.items, v)
	}
	return n, nil
}

// MustMap is like NewMap but panics on duplicate keys.
func MustMap(entries ...Entry) *Node {
	n, err := NewMap(entries...)
	if err != nil {
		panic(err)
	}
	return n
}

func cloneItems(items []*Node) []*Node {
	out := make([]*Node, len(items))
	for i, it := range items {
		if it == nil {
			it = Null
		}
		out[i] = it
	}
	return out
}

// Kind returns the node variant. A nil *Node reports KindNull.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// IsNull reports whether the node is null.
func (n *Node) IsNull() bool { return n.Kind() == KindNull }

// Text returns the literal of a scalar node.
func (n *Node) Text() (string, bool) {
	if n.Kind() != KindScalar {
		return "", false
	}
	return n.text, true
}

// Len returns the number of children of a container node, 0 otherwise.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.items)
}

// At returns the i-th child of an array or set node.
func (n *Node) At(i int) (*Node, bool) {
	switch n.Kind() {
	case KindArray, KindSet:
		if i < 0 || i >= len(n.items) {
			return nil, false
		}
		return n.items[i], true
	}
	return nil, false
}

// Get returns the value stored under key in a map node.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind() != KindMap {
		return nil, false
	}
	i, ok := n.index[key]
	if !ok {
		return nil, false
	}
	return n.items[i], true
}

// Keys returns a copy of the keys of a map node in tree order.
func (n *Node) Keys() []string {
	if n.Kind() != KindMap {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Items iterates the children of a container in tree order. For maps it
// yields the values.
func (n *Node) Items() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		if n == nil {
			return
		}
		for i, it := range n.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

// Entries iterates the (key, value) pairs of a map node in tree order.
func (n *Node) Entries() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		if n.Kind() != KindMap {
			return
		}
		for i, k := range n.keys {
			if !yield(k, n.items[i]) {
				return
			}
		}
	}
}

// Equal reports structural equality. Arrays compare in order; maps ignore key
// order; sets ignore order and duplicates.
func (n *Node) Equal(o *Node) bool {
	if n.Kind() != o.Kind() {
		return false
	}
	switch n.Kind() {
	case KindNull:
		return true
	case KindScalar:
		return n.text == o.text
	case KindArray:
		if len(n.items) != len(o.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindSet:
		return n.canonical() == o.canonical()
	case KindMap:
		if len(n.keys) != len(o.keys) {
			return false
		}
		for i, k := range n.keys {
			ov, ok := o.Get(k)
			if !ok || !n.items[i].Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the node in a compact EON-like notation for diagnostics.
func (n *Node) String() string {
	b := &strings.Builder{}
	n.write(b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Kind() {
	case KindNull:
		b.WriteString("null")
	case KindScalar:
		b.WriteString(strconv.Quote(n.text))
	case KindArray, KindSet:
		open, end := "[", "]"
		if n.kind == KindSet {
			open, end = "#{", "}"
		}
		b.WriteString(open)
		for i, it := range n.items {
			if i > 0 {
				b.WriteString(", ")
			}
			it.write(b)
		}
		b.WriteString(end)
	case KindMap:
		b.WriteString("{")
		for i, k := range n.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			n.items[i].write(b)
		}
		b.WriteString("}")
	}
}

// canonical returns an order-insensitive (for sets and maps) encoding used to
// detect structural duplicates.
func (n *Node) canonical() string {
	b := &strings.Builder{}
	n.writeCanonical(b)
	return b.String()
}

func (n *Node) writeCanonical(b *strings.Builder) {
	switch n.Kind() {
	case KindNull:
		b.WriteByte('n')
	case KindScalar:
		b.WriteByte('s')
		b.WriteString(strconv.Itoa(len(n.text)))
		b.WriteByte(':')
		b.WriteString(n.text)
	case KindArray:
		b.WriteByte('a')
		b.WriteString(strconv.Itoa(len(n.items)))
		b.WriteByte('[')
		for _, it := range n.items {
			it.writeCanonical(b)
		}
		b.WriteByte(']')
	case KindSet:
		parts := make([]string, len(n.items))
		for i, it := range n.items {
			parts[i] = it.canonical()
		}
		sort.Strings(parts)
		b.WriteByte('t')
		b.WriteString(strconv.Itoa(len(parts)))
		b.WriteByte('[')
		for _, p := range parts {
			b.WriteString(p)
		}
		b.WriteByte(']')
	case KindMap:
		idx := make([]int, len(n.keys))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, c int) bool { return n.keys[idx[a]] < n.keys[idx[c]] })
		b.WriteByte('m')
		b.WriteString(strconv.Itoa(len(idx)))
		b.WriteByte('{')
		for _, i := range idx {
			b.WriteString(strconv.Itoa(len(n.keys[i])))
			b.WriteByte(':')
			b.WriteString(n.keys[i])
			n.items[i].writeCanonical(b)
		}
		b.WriteByte('}')
	}
}
