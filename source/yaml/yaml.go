// Package yamlsrc builds eon value trees from YAML documents using
// gopkg.in/yaml.v3.
//
// Scalars keep their source text, `~`/null become eon.Null, `!!set` mappings
// become set nodes, aliases share the anchored subtree, and merge keys (`<<`)
// are expanded. Duplicate mapping keys are rejected with their positions.
package yamlsrc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/eon"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

func (e *DuplicateKeyError) Unwrap() error { return eon.ErrDuplicateKey }

// Options controls tree building. When several are passed the last one wins.
type Options struct {
	// MaxDepth bounds container nesting (0 means unbounded).
	MaxDepth int
}

// Parse builds a tree from the first document of b. An empty stream is a
// parse error.
func Parse(b []byte, opts ...Options) (*eon.Node, error) {
	r := NewReader(bytes.NewReader(b), opts...)
	n, err := r.Next()
	if errors.Is(err, io.EOF) {
		return nil, eon.ParseError(eon.Root, "empty document", nil)
	}
	return n, err
}

// Reader decodes a multi-document YAML stream, one tree per document.
type Reader struct {
	dec *yaml.Decoder
	opt Options
}

// NewReader constructs a Reader.
func NewReader(r io.Reader, opts ...Options) *Reader {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return &Reader{dec: yaml.NewDecoder(r), opt: opt}
}

// Next returns the next document as a tree. It returns (nil, io.EOF) when the
// stream is exhausted. An empty document is eon.Null.
func (r *Reader) Next() (*eon.Node, error) {
	var root yaml.Node
	if err := r.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, eon.ParseError(eon.Root, "", err)
	}
	b := &builder{opt: r.opt, seen: map[*yaml.Node]*eon.Node{}, open: map[*yaml.Node]bool{}}
	return b.node(&root, eon.Root, 0)
}

// ReadAll reads all documents from the YAML stream.
func (r *Reader) ReadAll() ([]*eon.Node, error) {
	var out []*eon.Node
	for {
		n, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, n)
	}
}

type builder struct {
	opt Options
	// anchored nodes already built, so aliases share one subtree
	seen map[*yaml.Node]*eon.Node
	// anchored nodes still being built; an alias to one is a cycle
	open map[*yaml.Node]bool
}

func (b *builder) node(n *yaml.Node, p eon.Path, depth int) (*eon.Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return eon.Null, nil
		}
		return b.node(n.Content[0], p, depth)
	case yaml.AliasNode:
		return b.node(n.Alias, p, depth)
	}
	if out, ok := b.seen[n]; ok {
		return out, nil
	}
	if b.open[n] {
		return nil, eon.ParseError(p, fmt.Sprintf("recursive alias to &%s at %d:%d", n.Anchor, n.Line, n.Column), nil)
	}
	if n.Anchor != "" {
		b.open[n] = true
		defer delete(b.open, n)
	}
	out, err := b.build(n, p, depth)
	if err != nil {
		return nil, err
	}
	if n.Anchor != "" {
		b.seen[n] = out
	}
	return out, nil
}

func (b *builder) build(n *yaml.Node, p eon.Path, depth int) (*eon.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return eon.Null, nil
		}
		return eon.Scalar(n.Value), nil
	case yaml.SequenceNode:
		if err := b.enter(p, depth); err != nil {
			return nil, err
		}
		items := make([]*eon.Node, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := b.node(c, p.Index(i), depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return eon.Array(items...), nil
	case yaml.MappingNode:
		if err := b.enter(p, depth); err != nil {
			return nil, err
		}
		if n.Tag == "!!set" {
			return b.set(n, p, depth+1)
		}
		return b.mapping(n, p, depth+1)
	}
	return nil, eon.ParseError(p, fmt.Sprintf("unsupported YAML node at %d:%d", n.Line, n.Column), nil)
}

func (b *builder) enter(p eon.Path, depth int) error {
	if b.opt.MaxDepth > 0 && depth+1 > b.opt.MaxDepth {
		return eon.ParseError(p, "max depth exceeded", nil)
	}
	return nil
}

// set keeps the keys of a `!!set` mapping; values must be null.
func (b *builder) set(n *yaml.Node, p eon.Path, depth int) (*eon.Node, error) {
	items := make([]*eon.Node, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if v := resolve(n.Content[i+1]); v.Kind != yaml.ScalarNode || v.Tag != "!!null" {
			return nil, eon.ParseError(p, fmt.Sprintf("set member at %d:%d has a value", v.Line, v.Column), nil)
		}
		k, err := b.node(n.Content[i], p.Index(len(items)), depth)
		if err != nil {
			return nil, err
		}
		items = append(items, k)
	}
	return eon.Set(items...), nil
}

type pos struct{ line, col int }

func (b *builder) mapping(n *yaml.Node, p eon.Path, depth int) (*eon.Node, error) {
	var entries []eon.Entry
	first := map[string]pos{}
	index := map[string]int{}
	var merged []eon.Entry
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolve(n.Content[i])
		v := n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, eon.ParseError(p, fmt.Sprintf("non-scalar key at %d:%d", k.Line, k.Column), nil)
		}
		if k.Tag == "!!merge" {
			m, err := b.merge(v, p, depth)
			if err != nil {
				return nil, err
			}
			merged = append(merged, m...)
			continue
		}
		key := k.Value
		if at, dup := first[key]; dup {
			return nil, eon.ParseError(p.Key(key), "", &DuplicateKeyError{Key: key, FirstLine: at.line, FirstCol: at.col, Line: k.Line, Col: k.Column})
		}
		first[key] = pos{k.Line, k.Column}
		val, err := b.node(v, p.Key(key), depth)
		if err != nil {
			return nil, err
		}
		index[key] = len(entries)
		entries = append(entries, eon.KV(key, val))
	}
	// explicit keys win over merged ones; earlier merge sources win over later
	for _, e := range merged {
		if _, ok := index[e.Key]; ok {
			continue
		}
		index[e.Key] = len(entries)
		entries = append(entries, e)
	}
	return eon.NewMap(entries...)
}

// merge returns the entries contributed by a `<<` value: a mapping, an alias
// to one, or a sequence of those.
func (b *builder) merge(v *yaml.Node, p eon.Path, depth int) ([]eon.Entry, error) {
	v = resolve(v)
	var sources []*yaml.Node
	switch v.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{v}
	case yaml.SequenceNode:
		for _, c := range v.Content {
			sources = append(sources, resolve(c))
		}
	}
	var out []eon.Entry
	for _, s := range sources {
		if s.Kind != yaml.MappingNode {
			return nil, eon.ParseError(p, fmt.Sprintf("merge source at %d:%d is not a mapping", s.Line, s.Column), nil)
		}
		m, err := b.node(s, p, depth-1)
		if err != nil {
			return nil, err
		}
		for k, val := range m.Entries() {
			out = append(out, eon.KV(k, val))
		}
	}
	if len(sources) == 0 {
		return nil, eon.ParseError(p, fmt.Sprintf("merge value at %d:%d is not a mapping", v.Line, v.Column), nil)
	}
	return out, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
