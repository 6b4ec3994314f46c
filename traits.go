package eon

import (
	"encoding"
	"reflect"
	"sync"
	"time"
)

// Shape is the structural category of a destination type.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeVector
	ShapeSet
	ShapeMap
	// ShapeUnsupported marks types the engine cannot populate (chan, func, ...).
	ShapeUnsupported
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeVector:
		return "vector"
	case ShapeSet:
		return "set"
	case ShapeMap:
		return "map"
	default:
		return "unsupported"
	}
}

// Traits classifies a destination type. Exactly one shape applies; string-like
// types are scalars even though they are iterable.
type Traits struct {
	Shape      Shape
	StringLike bool
	Indexable  bool
	// Record is set for struct types, which are map-shaped but populated
	// through a schema of nested adapters instead of key insertion.
	Record bool
}

func (t Traits) IsVectorLike() bool { return t.Shape == ShapeVector }
func (t Traits) IsSetLike() bool    { return t.Shape == ShapeSet }
func (t Traits) IsMapLike() bool    { return t.Shape == ShapeMap }
func (t Traits) IsContainer() bool  { return t.IsVectorLike() || t.IsSetLike() || t.IsMapLike() }

// IsIndexableScalar reports an indexable type that is neither string-like nor
// a container.
func (t Traits) IsIndexableScalar() bool {
	return t.Indexable && !t.StringLike && !t.IsContainer()
}

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	durationType        = reflect.TypeOf(time.Duration(0))
	emptyStructType     = reflect.TypeOf(struct{}{})
	nodePtrType         = reflect.TypeOf((*Node)(nil))

	traitsMu    sync.RWMutex
	traitsCache = map[reflect.Type]Traits{}
)

// TraitsOf classifies rt. The result is deterministic and cached.
func TraitsOf(rt reflect.Type) Traits {
	traitsMu.RLock()
	t, ok := traitsCache[rt]
	traitsMu.RUnlock()
	if ok {
		return t
	}
	t = classify(rt)
	traitsMu.Lock()
	traitsCache[rt] = t
	traitsMu.Unlock()
	return t
}

func classify(rt reflect.Type) Traits {
	if rt == nil {
		return Traits{Shape: ShapeUnsupported}
	}
	for rt.Kind() == reflect.Pointer {
		if rt == nodePtrType {
			return Traits{Shape: ShapeScalar}
		}
		rt = rt.Elem()
	}
	if reflect.PointerTo(rt).Implements(textUnmarshalerType) {
		return Traits{Shape: ShapeScalar}
	}
	switch rt.Kind() {
	case reflect.String:
		return Traits{Shape: ShapeScalar, StringLike: true, Indexable: true}
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.Interface:
		return Traits{Shape: ShapeScalar}
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			return Traits{Shape: ShapeScalar, StringLike: true, Indexable: true}
		}
		return Traits{Shape: ShapeVector, Indexable: true}
	case reflect.Array:
		return Traits{Shape: ShapeVector, Indexable: true}
	case reflect.Map:
		if rt.Elem() == emptyStructType {
			return Traits{Shape: ShapeSet}
		}
		return Traits{Shape: ShapeMap, Indexable: true}
	case reflect.Struct:
		return Traits{Shape: ShapeMap, Record: true}
	}
	return Traits{Shape: ShapeUnsupported}
}

// autoKind maps traits to the node variant TagAuto requires.
func autoKind(t Traits) (Kind, bool) {
	switch t.Shape {
	case ShapeScalar:
		return KindScalar, true
	case ShapeVector:
		return KindArray, true
	case ShapeSet:
		return KindSet, true
	case ShapeMap:
		return KindMap, true
	}
	return KindNull, false
}
