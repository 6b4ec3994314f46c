package eon_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/eon"
)

type base struct {
	ID string `json:"id"`
}

type config struct {
	base
	Width   int                 `eon:"window.width"`
	Height  int                 `eon:"window.height,optional"`
	Title   string              `json:"title,omitempty"`
	Tags    map[string]struct{} `eon:"tags,tag=set"`
	Plain   bool
	Ignored string `eon:"-"`
	hidden  int
}

func TestSchemaOf_Derives(t *testing.T) {
	t.Parallel()

	s, err := eon.SchemaOf[config]()
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())

	tree := eon.MustMap(
		eon.KV("id", eon.Scalar("c1")),
		eon.KV("window", eon.MustMap(eon.KV("width", eon.Scalar("640")))),
		eon.KV("tags", eon.Array(eon.Scalar("x"), eon.Scalar("x"))),
		eon.KV("Plain", eon.Scalar("yes")),
		eon.KV("Ignored", eon.Scalar("nope")),
	)
	got, err := s.Decode(tree)
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, 640, got.Width)
	assert.Zero(t, got.Height)
	assert.Empty(t, got.Title)
	assert.Equal(t, map[string]struct{}{"x": {}}, got.Tags)
	assert.True(t, got.Plain)
	assert.Empty(t, got.Ignored)
	assert.Zero(t, got.hidden)
}

func TestSchemaOf_Errors(t *testing.T) {
	t.Parallel()

	_, err := eon.SchemaOf[int]()
	assert.True(t, errors.Is(err, eon.ErrInvalidSchema))

	type badTag struct {
		A []int `eon:"a,tag=vector"`
	}
	_, err = eon.SchemaOf[badTag]()
	assert.True(t, errors.Is(err, eon.ErrInvalidSchema))

	type badKey struct {
		A int `eon:"a..b"`
	}
	_, err = eon.SchemaOf[badKey]()
	assert.True(t, errors.Is(err, eon.ErrInvalidSchema))

	type badShape struct {
		A int `eon:"a,tag=map"`
	}
	_, err = eon.SchemaOf[badShape]()
	assert.True(t, errors.Is(err, eon.ErrInvalidSchema))

	assert.Panics(t, func() { eon.MustSchemaOf[badTag]() })
}

type registered struct {
	Value int
}

type holder struct {
	Items []registered `eon:"items"`
}

func TestRegister_OverridesDerivedSchema(t *testing.T) {
	s := eon.MustSchema(eon.MustField("v", func(r *registered) *int { return &r.Value }))
	eon.Register(s)
	t.Cleanup(eon.Unregister[registered])

	tree := eon.MustMap(eon.KV("items", eon.Array(
		eon.MustMap(eon.KV("v", eon.Scalar("1"))),
		eon.MustMap(eon.KV("v", eon.Scalar("2"))),
	)))
	got, err := eon.MustSchemaOf[holder]().Decode(tree)
	require.NoError(t, err)
	assert.Equal(t, []registered{{1}, {2}}, got.Items)
}

func TestSchema_ExtractWithMeta(t *testing.T) {
	t.Parallel()

	type dst struct {
		A int
		B *int
		C int
	}
	s := eon.MustSchema(
		eon.MustField("a", func(d *dst) *int { return &d.A }),
		eon.MustField("b", func(d *dst) **int { return &d.B }),
		eon.MustField("c", func(d *dst) *int { return &d.C }, eon.Optional()),
	)
	var d dst
	pm, err := s.ExtractWithMeta(eon.MustMap(eon.KV("a", eon.Scalar("1")), eon.KV("b", eon.Null)), &d)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, pm.Paths())
	assert.True(t, pm.Has("a", eon.PresenceSeen))
	assert.True(t, pm.Has("b", eon.PresenceSeen|eon.PresenceWasNull))
	assert.True(t, pm.Has("c", eon.PresenceSkipped))
	assert.False(t, pm.Has("c", eon.PresenceSeen))

	filtered := pm.Filter([]string{"a", "b"}, []string{"b"})
	assert.Equal(t, []string{"a"}, filtered.Paths())
}

func TestSchema_ExtractKeepsEarlierWrites(t *testing.T) {
	t.Parallel()

	s := eon.MustSchema(
		eon.MustField("width", func(w *window) *int { return &w.Width }),
		eon.MustField("height", func(w *window) *int { return &w.Height }),
	)
	var w window
	err := s.Extract(eon.MustMap(eon.KV("width", eon.Scalar("1"))), &w)
	assert.True(t, errors.Is(err, eon.ErrSelectionEmpty))
	assert.Equal(t, 1, w.Width)

	got, err := s.Decode(eon.MustMap(eon.KV("width", eon.Scalar("1"))))
	require.Error(t, err)
	assert.Equal(t, window{}, got)
}
