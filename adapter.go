package eon

import (
	"reflect"

	"github.com/reoring/eon/internal/lexical"
)

// Adapter binds one member of T to a path in the value tree, with an optional
// tag, converter and post-condition. Adapters are immutable once built and
// may be shared between goroutines and reused across extractions.
type Adapter[T any] struct {
	b *binding
}

// Path returns the bound path.
func (a Adapter[T]) Path() Path {
	if a.b == nil {
		return Root
	}
	return a.b.path
}

// Tag returns the declared tag.
func (a Adapter[T]) Tag() Tag {
	if a.b == nil {
		return TagAuto
	}
	return a.b.tag
}

// Optional reports whether a missing path is tolerated.
func (a Adapter[T]) Optional() bool { return a.b != nil && a.b.optional }

// binding is the type-erased core shared by Adapter and derived schemas.
type binding struct {
	path     Path
	tag      Tag
	optional bool
	field    reflect.Type
	traits   Traits
	conv     *leafConv
	check    func(reflect.Value) error
	// access returns the addressed member of an addressable destination.
	access func(reflect.Value) reflect.Value
	// member identity within the owner, for duplicate detection.
	offset uintptr
	name   string
}

// Option configures an adapter declaration.
type Option func(*adapterConfig)

type adapterConfig struct {
	tag      Tag
	optional bool
	check    *checkFn
}

type checkFn struct {
	typ reflect.Type
	fn  func(reflect.Value) error
}

// Optional makes a missing path leave the member untouched instead of
// failing with selection_empty.
func Optional() Option { return func(c *adapterConfig) { c.optional = true } }

// WithTag forces an interpretation (or TagFail to reject the binding).
func WithTag(t Tag) Option { return func(c *adapterConfig) { c.tag = t } }

// WithCheck adds a post-condition on the member after it has been written.
// A failing check reports extraction_failed unless it returns an *Error.
func WithCheck[U any](fn func(U) error) Option {
	return func(c *adapterConfig) {
		c.check = &checkFn{
			typ: reflect.TypeFor[U](),
			fn:  func(v reflect.Value) error { return fn(v.Interface().(U)) },
		}
	}
}

// Field declares an adapter for the member of T returned by member, using
// the default lexical conversion.
//
//	eon.Field("window.width", func(c *Config) *int { return &c.Width })
func Field[T, U any](path string, member func(*T) *U, opts ...Option) (Adapter[T], error) {
	return newAdapter[T, U](path, member, nil, opts)
}

// FieldWith declares an adapter whose scalar leaves of type E are produced
// by conv. E is U itself or a leaf inside U (slice or array element, set
// element, map key or value).
func FieldWith[T, U, I, E any](path string, member func(*T) *U, conv Converter[I, E], opts ...Option) (Adapter[T], error) {
	if conv == nil {
		return Adapter[T]{}, schemaError("nil converter for %q", path)
	}
	return newAdapter[T, U](path, member, newLeafConv(conv), opts)
}

// MustField is like Field but panics on a declaration error.
func MustField[T, U any](path string, member func(*T) *U, opts ...Option) Adapter[T] {
	a, err := Field(path, member, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// MustFieldWith is like FieldWith but panics on a declaration error.
func MustFieldWith[T, U, I, E any](path string, member func(*T) *U, conv Converter[I, E], opts ...Option) Adapter[T] {
	a, err := FieldWith(path, member, conv, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

func newAdapter[T, U any](path string, member func(*T) *U, lc *leafConv, opts []Option) (Adapter[T], error) {
	if member == nil {
		return Adapter[T]{}, schemaError("nil member selector for %q", path)
	}
	off, err := memberOffset(member)
	if err != nil {
		return Adapter[T]{}, err
	}
	p, err := ParsePath(path)
	if err != nil {
		return Adapter[T]{}, err
	}
	var cfg adapterConfig
	for _, o := range opts {
		o(&cfg)
	}
	b := &binding{
		path:     p,
		tag:      cfg.tag,
		optional: cfg.optional,
		field:    reflect.TypeFor[U](),
		conv:     lc,
		offset:   off,
		name:     path,
		access: func(v reflect.Value) reflect.Value {
			return reflect.ValueOf(member(v.Addr().Interface().(*T))).Elem()
		},
	}
	if err := b.finish(cfg.check); err != nil {
		return Adapter[T]{}, err
	}
	return Adapter[T]{b: b}, nil
}

// finish classifies the member and validates the declaration.
func (b *binding) finish(check *checkFn) error {
	b.traits = traitsWith(b.field, b.conv)
	if b.traits.Shape == ShapeUnsupported {
		return schemaError("%q: unsupported member type %s", b.name, b.field)
	}
	if b.conv != nil && !reaches(b.field, b.conv.out) {
		return schemaError("%q: converter produces %s, which does not occur in %s", b.name, b.conv.out, b.field)
	}
	if b.conv != nil && !b.conv.wantsNode() && !lexical.Supported(b.conv.in) {
		return schemaError("%q: converter input %s has no lexical form", b.name, b.conv.in)
	}
	if bad := unfillable(b.field, b.conv, map[reflect.Type]bool{}); bad != nil {
		return schemaError("%q: %s inside %s cannot be populated from a node", b.name, bad, b.field)
	}
	if b.tag != TagFail {
		k, err := ResolveTag(b.tag, b.traits)
		if err != nil {
			return err
		}
		if !compatible(k, b.traits) {
			return schemaError("%q: tag %s cannot populate %s member %s", b.name, b.tag, b.traits.Shape, b.field)
		}
	}
	if check != nil {
		if check.typ != b.field {
			return schemaError("%q: check takes %s, member is %s", b.name, check.typ, b.field)
		}
		b.check = check.fn
	}
	return nil
}

// unfillable returns the first leaf type inside rt that neither the converter,
// a raw node nor the lexical conversion can produce. Records are checked when
// their own schema is built.
func unfillable(rt reflect.Type, lc *leafConv, seen map[reflect.Type]bool) reflect.Type {
	if rt == nodePtrType || (lc != nil && rt == lc.out) || seen[rt] {
		return nil
	}
	seen[rt] = true
	if rt.Kind() == reflect.Pointer {
		return unfillable(rt.Elem(), lc, seen)
	}
	tr := TraitsOf(rt)
	switch {
	case tr.Shape == ShapeScalar:
		if lexical.Supported(rt) {
			return nil
		}
		return rt
	case tr.Record:
		return nil
	case tr.Shape == ShapeVector:
		return unfillable(rt.Elem(), lc, seen)
	case tr.Shape == ShapeSet:
		return unfillable(rt.Key(), lc, seen)
	case tr.Shape == ShapeMap:
		if kt := rt.Key(); !(lc != nil && kt == lc.out) && !lexical.Supported(kt) {
			return kt
		}
		return unfillable(rt.Elem(), lc, seen)
	}
	return rt
}

// memberOffset verifies that member addresses storage inside T and returns
// its offset, in the spirit of resolving a field by its address.
func memberOffset[T, U any](member func(*T) *U) (uintptr, error) {
	var zero T
	base := reflect.ValueOf(&zero).Pointer()
	fp, err := callSelector(member, &zero)
	if err != nil {
		return 0, err
	}
	if fp == nil {
		return 0, schemaError("member selector returned nil")
	}
	addr := reflect.ValueOf(fp).Pointer()
	size := reflect.TypeFor[T]().Size()
	usize := reflect.TypeFor[U]().Size()
	if addr < base || addr+usize > base+size {
		return 0, schemaError("member selector must return the address of a field of %s", reflect.TypeFor[T]())
	}
	return addr - base, nil
}

// callSelector runs member on zero. Selectors reaching through a nil
// pointer field panic; that is reported as a declaration error.
func callSelector[T, U any](member func(*T) *U, zero *T) (fp *U, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = schemaError("member selector dereferences a nil pointer of %s (%v)", reflect.TypeFor[T](), r)
		}
	}()
	return member(zero), nil
}
