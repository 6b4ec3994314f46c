package eon

import (
	"reflect"
	"strconv"

	"github.com/reoring/eon/internal/lexical"
)

// ExtractOpt bundles extraction options. When several are passed the last
// one wins.
type ExtractOpt struct {
	// MaxDepth bounds destination nesting (0 means unbounded). Exceeding it
	// is extraction_failed.
	MaxDepth int
}

// Extract resolves a's path against root and writes the result into the
// bound member of dst.
//
// A missing mandatory path is selection_empty; an optional one leaves dst
// untouched. The first error aborts the call. Container members are written
// in place while extracting, so they may hold partial results on error;
// extract into a fresh value (see Schema.Decode) when that matters. The tree
// is never modified and nothing outside the bound member is written.
func Extract[T any](root *Node, a Adapter[T], dst *T, opts ...ExtractOpt) error {
	if a.b == nil {
		return schemaError("zero Adapter")
	}
	if dst == nil {
		return schemaError("nil destination")
	}
	x := newExtractor(opts)
	return x.bind(a.b, root, Root, reflect.ValueOf(dst).Elem(), 0)
}

type extractor struct {
	maxDepth int
	presence PresenceMap
}

func newExtractor(opts []ExtractOpt) *extractor {
	var opt ExtractOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return &extractor{maxDepth: opt.MaxDepth}
}

// bind runs one binding against n, the node its path is relative to. base is
// the absolute path of n, used for error reporting.
func (x *extractor) bind(b *binding, n *Node, base Path, v reflect.Value, depth int) error {
	abs := base.Join(b.path)
	if b.tag == TagFail {
		_, err := ResolveTag(TagFail, b.traits)
		return atPath(err, abs, CodeExtractionFailed)
	}
	sel := SelectPath(n, b.path)
	if sel.Empty() {
		if b.optional {
			x.presence.mark(abs, PresenceSkipped)
			return nil
		}
		return newError(CodeSelectionEmpty, abs, "", nil)
	}
	interp, err := ResolveTag(b.tag, b.traits)
	if err != nil {
		return atPath(err, abs, CodeExtractionFailed)
	}
	dst := b.access(v)
	if sel.multi {
		err = x.fillMany(sel, interp, dst, b.conv, base, depth)
	} else {
		node := sel.nodes[0]
		if node.IsNull() {
			x.presence.mark(abs, PresenceWasNull)
		}
		err = x.fill(node, interp, dst, b.conv, abs, depth)
	}
	if err != nil {
		return err
	}
	x.presence.mark(abs, PresenceSeen)
	if b.check != nil {
		if err := b.check(dst); err != nil {
			return atPath(err, abs, CodeExtractionFailed)
		}
	}
	return nil
}

type child struct {
	node *Node
	path Path
}

// fillMany writes a wildcard selection, which always reads as a sequence.
func (x *extractor) fillMany(sel Selection, interp Kind, dst reflect.Value, lc *leafConv, base Path, depth int) error {
	abs := base.Join(sel.path)
	if dst.Type() == nodePtrType {
		dst.Set(reflect.ValueOf(sel.asNode()))
		return nil
	}
	if interp != KindArray && interp != KindSet {
		return mismatchError(abs, interp.String(), strconv.Itoa(sel.Len())+" nodes")
	}
	for dst.Kind() == reflect.Pointer {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		dst = dst.Elem()
	}
	items := make([]child, len(sel.nodes))
	for i, n := range sel.nodes {
		items[i] = child{node: n, path: base.Join(sel.at[i])}
	}
	return x.sequence(items, dst, lc, abs, depth)
}

// fill writes node n into dst under interpretation interp.
func (x *extractor) fill(n *Node, interp Kind, dst reflect.Value, lc *leafConv, p Path, depth int) error {
	if x.maxDepth > 0 && depth > x.maxDepth {
		return newError(CodeExtractionFailed, p, "maximum depth "+strconv.Itoa(x.maxDepth)+" exceeded", nil)
	}
	t := dst.Type()
	if t == nodePtrType {
		dst.Set(reflect.ValueOf(n))
		return nil
	}
	if lc != nil && lc.wantsNode() && t == lc.out {
		return x.convert(n, dst, lc, p)
	}
	if n.IsNull() {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			dst.Set(reflect.Zero(t))
			return nil
		}
		return mismatchError(p, interp.String(), KindNull.String())
	}
	if t.Kind() == reflect.Pointer && !(lc != nil && t == lc.out) {
		if dst.IsNil() {
			dst.Set(reflect.New(t.Elem()))
		}
		return x.fill(n, interp, dst.Elem(), lc, p, depth)
	}
	if !accepts(interp, n.Kind()) {
		return mismatchError(p, interp.String(), n.Kind().String())
	}
	switch interp {
	case KindScalar:
		if lc != nil && t == lc.out {
			return x.convert(n, dst, lc, p)
		}
		raw, _ := n.Text()
		v, err := lexical.Parse(raw, t)
		if err != nil {
			return newError(CodeInvalidValue, p, err.Error(), nil)
		}
		dst.Set(v)
		return nil
	case KindArray, KindSet:
		items := make([]child, 0, n.Len())
		for i, c := range n.Items() {
			items = append(items, child{node: c, path: p.Index(i)})
		}
		return x.sequence(items, dst, lc, p, depth)
	case KindMap:
		return x.mapping(n, dst, lc, p, depth)
	}
	return newError(CodeExtractionFailed, p, "no interpretation for "+n.Kind().String(), nil)
}

func (x *extractor) convert(n *Node, dst reflect.Value, lc *leafConv, p Path) error {
	v, err := lc.apply(n, p)
	if err != nil {
		return err
	}
	dst.Set(v)
	return nil
}

// element fills a fresh container element, inferring its interpretation.
func (x *extractor) element(n *Node, dst reflect.Value, lc *leafConv, p Path, depth int) error {
	tr := traitsWith(dst.Type(), lc)
	interp, ok := autoKind(tr)
	if !ok {
		return newError(CodeExtractionFailed, p, "unsupported element type "+dst.Type().String(), nil)
	}
	return x.fill(n, interp, dst, lc, p, depth)
}

// sequence appends (slices), fills by position (arrays) or inserts (sets)
// the items in tree order. Sets rely on the destination's own uniqueness.
func (x *extractor) sequence(items []child, dst reflect.Value, lc *leafConv, p Path, depth int) error {
	t := dst.Type()
	switch {
	case t.Kind() == reflect.Slice:
		et := t.Elem()
		for _, c := range items {
			ev := reflect.New(et).Elem()
			if err := x.element(c.node, ev, lc, c.path, depth+1); err != nil {
				return err
			}
			dst.Set(reflect.Append(dst, ev))
		}
		return nil
	case t.Kind() == reflect.Array:
		if len(items) > t.Len() {
			return mismatchError(p, "at most "+strconv.Itoa(t.Len())+" items", strconv.Itoa(len(items)))
		}
		for i, c := range items {
			if err := x.element(c.node, dst.Index(i), lc, c.path, depth+1); err != nil {
				return err
			}
		}
		return nil
	case t.Kind() == reflect.Map && t.Elem() == emptyStructType:
		if dst.IsNil() {
			dst.Set(reflect.MakeMap(t))
		}
		present := reflect.Zero(emptyStructType)
		for _, c := range items {
			kv := reflect.New(t.Key()).Elem()
			if err := x.element(c.node, kv, lc, c.path, depth+1); err != nil {
				return err
			}
			dst.SetMapIndex(kv, present)
		}
		return nil
	}
	return newError(CodeExtractionFailed, p, "cannot append to "+t.String(), nil)
}

// mapping inserts key/value pairs into a map, or populates a record through
// its schema. Keys must be identifiers.
func (x *extractor) mapping(n *Node, dst reflect.Value, lc *leafConv, p Path, depth int) error {
	t := dst.Type()
	if t.Kind() == reflect.Struct {
		rs, err := recordFor(t)
		if err != nil {
			return atPath(err, p, CodeInvalidSchema)
		}
		return rs.extract(x, n, p, dst, depth+1)
	}
	if t.Kind() != reflect.Map {
		return newError(CodeExtractionFailed, p, "cannot insert into "+t.String(), nil)
	}
	if dst.IsNil() {
		dst.Set(reflect.MakeMap(t))
	}
	for k, v := range n.Entries() {
		cp := p.Key(k)
		if !IsIdentifier(k) {
			return newError(CodeInvalidIdentifier, cp, strconv.Quote(k), nil)
		}
		kv, err := x.key(k, t.Key(), lc, cp)
		if err != nil {
			return err
		}
		vv := reflect.New(t.Elem()).Elem()
		if err := x.element(v, vv, lc, cp, depth+1); err != nil {
			return err
		}
		dst.SetMapIndex(kv, vv)
	}
	return nil
}

// key converts a map key: through the converter when it produces the key
// type, lexically otherwise.
func (x *extractor) key(k string, kt reflect.Type, lc *leafConv, p Path) (reflect.Value, error) {
	if lc != nil && kt == lc.out {
		return lc.apply(Scalar(k), p)
	}
	v, err := lexical.Parse(k, kt)
	if err != nil {
		return reflect.Value{}, newError(CodeInvalidValue, p, err.Error(), nil)
	}
	return v, nil
}
