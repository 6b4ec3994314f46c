package eon_test

import (
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/eon"
)

func TestTraitsOf(t *testing.T) {
	t.Parallel()

	type record struct{ A int }
	cases := []struct {
		typ  reflect.Type
		want eon.Traits
	}{
		{reflect.TypeFor[int](), eon.Traits{Shape: eon.ShapeScalar}},
		{reflect.TypeFor[*int](), eon.Traits{Shape: eon.ShapeScalar}},
		{reflect.TypeFor[bool](), eon.Traits{Shape: eon.ShapeScalar}},
		{reflect.TypeFor[string](), eon.Traits{Shape: eon.ShapeScalar, StringLike: true, Indexable: true}},
		{reflect.TypeFor[[]byte](), eon.Traits{Shape: eon.ShapeScalar, StringLike: true, Indexable: true}},
		{reflect.TypeFor[time.Duration](), eon.Traits{Shape: eon.ShapeScalar}},
		{reflect.TypeFor[time.Time](), eon.Traits{Shape: eon.ShapeScalar}},
		{reflect.TypeFor[netip.Addr](), eon.Traits{Shape: eon.ShapeScalar}},
		{reflect.TypeFor[any](), eon.Traits{Shape: eon.ShapeScalar}},
		{reflect.TypeFor[*eon.Node](), eon.Traits{Shape: eon.ShapeScalar}},
		{reflect.TypeFor[[]int](), eon.Traits{Shape: eon.ShapeVector, Indexable: true}},
		{reflect.TypeFor[[3]string](), eon.Traits{Shape: eon.ShapeVector, Indexable: true}},
		{reflect.TypeFor[map[string]struct{}](), eon.Traits{Shape: eon.ShapeSet}},
		{reflect.TypeFor[map[string]int](), eon.Traits{Shape: eon.ShapeMap, Indexable: true}},
		{reflect.TypeFor[record](), eon.Traits{Shape: eon.ShapeMap, Record: true}},
		{reflect.TypeFor[*record](), eon.Traits{Shape: eon.ShapeMap, Record: true}},
		{reflect.TypeFor[chan int](), eon.Traits{Shape: eon.ShapeUnsupported}},
		{reflect.TypeFor[func()](), eon.Traits{Shape: eon.ShapeUnsupported}},
	}
	for _, c := range cases {
		got := eon.TraitsOf(c.typ)
		assert.Equal(t, c.want, got, c.typ.String())
		assert.Equal(t, got, eon.TraitsOf(c.typ), "deterministic for %s", c.typ)
	}
}

func TestTraits_ExactlyOneShape(t *testing.T) {
	t.Parallel()

	for _, typ := range []reflect.Type{
		reflect.TypeFor[string](),
		reflect.TypeFor[[]string](),
		reflect.TypeFor[map[int]struct{}](),
		reflect.TypeFor[map[string]string](),
	} {
		tr := eon.TraitsOf(typ)
		n := 0
		for _, b := range []bool{tr.IsVectorLike(), tr.IsSetLike(), tr.IsMapLike()} {
			if b {
				n++
			}
		}
		assert.LessOrEqual(t, n, 1, typ.String())
		assert.False(t, tr.StringLike && tr.IsContainer(), "string-like is never a container: %s", typ)
	}
}

func TestTraits_IndexableScalar(t *testing.T) {
	t.Parallel()

	assert.True(t, eon.Traits{Shape: eon.ShapeScalar, Indexable: true}.IsIndexableScalar())
	assert.False(t, eon.TraitsOf(reflect.TypeFor[string]()).IsIndexableScalar())
	assert.False(t, eon.TraitsOf(reflect.TypeFor[[]int]()).IsIndexableScalar())
}
