package eon

import (
	"reflect"

	"github.com/reoring/eon/internal/lexical"
)

// Converter maps an intermediate value I, lexically parsed from a scalar
// literal, to a destination leaf value U. It runs once per scalar leaf.
// Returning a plain error reports invalid_value; returning an *Error (see
// Failf and Invalidf) keeps its code.
//
// When I is *Node the converter receives the leaf node itself, of any kind,
// instead of parsed text.
type Converter[I, U any] func(I) (U, error)

// Identity is the default conversion: the literal parsed directly as U.
func Identity[U any]() Converter[U, U] {
	return func(u U) (U, error) { return u, nil }
}

// Chain composes two converters.
func Chain[I, M, U any](first Converter[I, M], then Converter[M, U]) Converter[I, U] {
	return func(i I) (U, error) {
		m, err := first(i)
		if err != nil {
			var zero U
			return zero, err
		}
		return then(m)
	}
}

// leafConv is the type-erased form of a Converter held by a binding.
type leafConv struct {
	in, out reflect.Type
	fn      func(reflect.Value) (reflect.Value, error)
}

func newLeafConv[I, U any](c Converter[I, U]) *leafConv {
	return &leafConv{
		in:  reflect.TypeFor[I](),
		out: reflect.TypeFor[U](),
		fn: func(v reflect.Value) (reflect.Value, error) {
			var in I
			if v.IsValid() {
				in, _ = v.Interface().(I)
			}
			u, err := c(in)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(&u).Elem(), nil
		},
	}
}

// wantsNode reports whether the converter consumes whole nodes.
func (c *leafConv) wantsNode() bool { return c.in == nodePtrType }

// apply runs the converter on a leaf. Non-node converters need a scalar.
func (c *leafConv) apply(n *Node, p Path) (reflect.Value, error) {
	var in reflect.Value
	if c.wantsNode() {
		in = reflect.ValueOf(n)
	} else {
		raw, ok := n.Text()
		if !ok {
			return reflect.Value{}, mismatchError(p, KindScalar.String(), n.Kind().String())
		}
		v, err := lexical.Parse(raw, c.in)
		if err != nil {
			return reflect.Value{}, newError(CodeInvalidValue, p, err.Error(), nil)
		}
		in = v
	}
	out, err := c.fn(in)
	if err != nil {
		return reflect.Value{}, atPath(err, p, CodeInvalidValue)
	}
	return out, nil
}

// reaches reports whether a leaf of type leaf can occur inside rt without
// crossing a record boundary.
func reaches(rt, leaf reflect.Type) bool {
	for {
		if rt == leaf {
			return true
		}
		switch rt.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			rt = rt.Elem()
		case reflect.Map:
			if rt.Key() == leaf {
				return true
			}
			rt = rt.Elem()
		default:
			return false
		}
	}
}

// traitsWith classifies rt, treating the converter output type as a scalar.
func traitsWith(rt reflect.Type, c *leafConv) Traits {
	if c != nil {
		for t := rt; ; t = t.Elem() {
			if t == c.out {
				return Traits{Shape: ShapeScalar, StringLike: TraitsOf(t).StringLike}
			}
			if t.Kind() != reflect.Pointer {
				break
			}
		}
	}
	return TraitsOf(rt)
}
