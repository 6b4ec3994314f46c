package eon

import (
	"reflect"
	"strings"
	"sync"
)

// Schema is the set of adapters that populates one destination type. It is
// declared once, typically at startup, and reused.
type Schema[T any] struct {
	rec *recordSchema
}

// recordSchema is the type-erased schema of a struct (or any) type.
type recordSchema struct {
	typ      reflect.Type
	bindings []*binding
}

// NewSchema builds a schema from adapters. Two adapters bound to the same
// member are rejected.
func NewSchema[T any](adapters ...Adapter[T]) (*Schema[T], error) {
	rec := &recordSchema{typ: reflect.TypeFor[T]()}
	type member struct {
		off uintptr
		typ reflect.Type
	}
	seen := make(map[member]string, len(adapters))
	for _, a := range adapters {
		if a.b == nil {
			return nil, schemaError("zero Adapter in schema for %s", rec.typ)
		}
		m := member{off: a.b.offset, typ: a.b.field}
		if prev, dup := seen[m]; dup {
			return nil, schemaError("%q and %q bind the same member of %s", prev, a.b.name, rec.typ)
		}
		seen[m] = a.b.name
		rec.bindings = append(rec.bindings, a.b)
	}
	return &Schema[T]{rec: rec}, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema[T any](adapters ...Adapter[T]) *Schema[T] {
	s, err := NewSchema(adapters...)
	if err != nil {
		panic(err)
	}
	return s
}

// SchemaOf derives a schema for struct type T from its fields.
//
// Keys resolve as `eon:"key"` > `json:"key"` > field name, and may be paths
// ("window.width"). Options follow the key: `eon:"tags,tag=set,optional"`.
// A json ",omitempty" field is optional. "-" skips the field.
func SchemaOf[T any]() (*Schema[T], error) {
	rec, err := deriveSchema(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return &Schema[T]{rec: rec}, nil
}

// MustSchemaOf is like SchemaOf but panics on error.
func MustSchemaOf[T any]() *Schema[T] {
	s, err := SchemaOf[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// Extract populates dst with every adapter in declaration order, stopping at
// the first error. Writes made before the error are kept.
func (s *Schema[T]) Extract(root *Node, dst *T, opts ...ExtractOpt) error {
	if dst == nil {
		return schemaError("nil destination")
	}
	x := newExtractor(opts)
	return s.rec.extract(x, root, Root, reflect.ValueOf(dst).Elem(), 0)
}

// ExtractWithMeta is Extract that also reports, per adapter path, whether
// the value was seen, null, or skipped as an optional.
func (s *Schema[T]) ExtractWithMeta(root *Node, dst *T, opts ...ExtractOpt) (PresenceMap, error) {
	if dst == nil {
		return nil, schemaError("nil destination")
	}
	x := newExtractor(opts)
	x.presence = PresenceMap{}
	err := s.rec.extract(x, root, Root, reflect.ValueOf(dst).Elem(), 0)
	return x.presence, err
}

// Decode extracts into a fresh T and returns it only when every adapter
// succeeded, so callers that need all-or-nothing semantics never observe a
// partial value.
func (s *Schema[T]) Decode(root *Node, opts ...ExtractOpt) (T, error) {
	var out T
	if err := s.Extract(root, &out, opts...); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Len returns the number of adapters.
func (s *Schema[T]) Len() int { return len(s.rec.bindings) }

func (rs *recordSchema) extract(x *extractor, n *Node, base Path, v reflect.Value, depth int) error {
	for _, b := range rs.bindings {
		if err := x.bind(b, n, base, v, depth); err != nil {
			return err
		}
	}
	return nil
}

var (
	recordsMu sync.RWMutex
	records   = map[reflect.Type]*recordSchema{}
	derived   = map[reflect.Type]*recordSchema{}
)

// Register makes s the schema used whenever a value of type T is populated
// from a map node below another destination (slice elements, map values,
// nested struct members). Types without a registered schema use SchemaOf.
func Register[T any](s *Schema[T]) {
	if s == nil {
		return
	}
	recordsMu.Lock()
	records[s.rec.typ] = s.rec
	recordsMu.Unlock()
}

// Unregister removes the schema registered for T.
func Unregister[T any]() {
	recordsMu.Lock()
	delete(records, reflect.TypeFor[T]())
	recordsMu.Unlock()
}

func recordFor(rt reflect.Type) (*recordSchema, error) {
	recordsMu.RLock()
	rs, ok := records[rt]
	if !ok {
		rs, ok = derived[rt]
	}
	recordsMu.RUnlock()
	if ok {
		return rs, nil
	}
	rs, err := deriveSchema(rt)
	if err != nil {
		return nil, err
	}
	recordsMu.Lock()
	derived[rt] = rs
	recordsMu.Unlock()
	return rs, nil
}

func deriveSchema(rt reflect.Type) (*recordSchema, error) {
	if rt.Kind() != reflect.Struct {
		return nil, schemaError("SchemaOf requires a struct type, got %s", rt)
	}
	rec := &recordSchema{typ: rt}
	if err := deriveFields(rec, rt, nil); err != nil {
		return nil, err
	}
	return rec, nil
}

func deriveFields(rec *recordSchema, rt reflect.Type, index []int) error {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		idx := append(append([]int(nil), index...), i)
		key, opts := resolveFieldKey(sf)
		if key == "-" {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && !opts.named {
			if err := deriveFields(rec, sf.Type, idx); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if opts.err != nil {
			return schemaError("%s.%s: %v", rt.Name(), sf.Name, opts.err)
		}
		p, err := ParsePath(key)
		if err != nil {
			return schemaError("%s.%s: %v", rt.Name(), sf.Name, err)
		}
		b := &binding{
			path:     p,
			tag:      opts.tag,
			optional: opts.optional,
			field:    sf.Type,
			offset:   sf.Offset,
			name:     key,
			access:   func(v reflect.Value) reflect.Value { return v.FieldByIndex(idx) },
		}
		if err := b.finish(nil); err != nil {
			return err
		}
		rec.bindings = append(rec.bindings, b)
	}
	return nil
}

type fieldOpts struct {
	named    bool
	optional bool
	tag      Tag
	err      error
}

// resolveFieldKey applies the key rule: eon tag > json tag > field name.
func resolveFieldKey(sf reflect.StructField) (string, fieldOpts) {
	var o fieldOpts
	if et, ok := sf.Tag.Lookup("eon"); ok {
		parts := strings.Split(et, ",")
		name := strings.TrimSpace(parts[0])
		if name == "-" && len(parts) == 1 {
			return "-", o
		}
		for _, p := range parts[1:] {
			p = strings.TrimSpace(p)
			switch {
			case p == "optional":
				o.optional = true
			case strings.HasPrefix(p, "tag="):
				o.tag, o.err = ParseTag(strings.TrimPrefix(p, "tag="))
			}
		}
		if name != "" {
			o.named = true
			return name, o
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-", o
		}
		name, rest, _ := strings.Cut(jt, ",")
		if strings.Contains(","+rest+",", ",omitempty,") {
			o.optional = true
		}
		if name != "" {
			o.named = true
			return name, o
		}
	}
	return sf.Name, o
}
