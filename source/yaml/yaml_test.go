package yamlsrc_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/eon"
	yamlsrc "github.com/reoring/eon/source/yaml"
)

func text(t *testing.T, root *eon.Node, path string) string {
	t.Helper()
	sel, err := eon.Select(root, path)
	require.NoError(t, err)
	n, err := sel.Node()
	require.NoError(t, err, path)
	s, ok := n.Text()
	require.True(t, ok, "%s is %s", path, n.Kind())
	return s
}

func TestParse_Document(t *testing.T) {
	t.Parallel()

	doc := `
window:
  width: 800
  title: "My App"
  ratio: 1.50
  fullscreen: yes
tags: [a, b, a]
quoted: "null"
nothing: ~
`
	n, err := yamlsrc.Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "800", text(t, n, "window.width"))
	assert.Equal(t, "My App", text(t, n, "window.title"))
	assert.Equal(t, "1.50", text(t, n, "window.ratio"))
	assert.Equal(t, "yes", text(t, n, "window.fullscreen"))
	assert.Equal(t, "null", text(t, n, "quoted"))

	tags, _ := n.Get("tags")
	assert.Equal(t, eon.KindArray, tags.Kind())
	assert.Equal(t, 3, tags.Len())
	nothing, _ := n.Get("nothing")
	assert.True(t, nothing.IsNull())
	assert.Equal(t, []string{"window", "tags", "quoted", "nothing"}, n.Keys())
}

func TestParse_Set(t *testing.T) {
	t.Parallel()

	n, err := yamlsrc.Parse([]byte("tags: !!set {a, b}\n"))
	require.NoError(t, err)
	tags, _ := n.Get("tags")
	require.Equal(t, eon.KindSet, tags.Kind())
	assert.True(t, tags.Equal(eon.Set(eon.Scalar("b"), eon.Scalar("a"))))

	_, err = yamlsrc.Parse([]byte("tags: !!set {a: 1}\n"))
	assert.True(t, errors.Is(err, eon.ErrParse))
}

func TestParse_AliasesShareSubtree(t *testing.T) {
	t.Parallel()

	doc := `
base: &b {x: 1, y: 2}
copy: *b
`
	n, err := yamlsrc.Parse([]byte(doc))
	require.NoError(t, err)
	a, _ := n.Get("base")
	c, _ := n.Get("copy")
	assert.Same(t, a, c)
}

func TestParse_MergeKeys(t *testing.T) {
	t.Parallel()

	doc := `
defaults: &d {width: 1, height: 2}
window:
  <<: *d
  height: 5
`
	n, err := yamlsrc.Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "1", text(t, n, "window.width"))
	assert.Equal(t, "5", text(t, n, "window.height"))
	w, _ := n.Get("window")
	assert.Equal(t, []string{"height", "width"}, w.Keys())
}

func TestParse_DuplicateKey(t *testing.T) {
	t.Parallel()

	_, err := yamlsrc.Parse([]byte("metadata:\n  name: a\n  name: b\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, eon.ErrParse))
	assert.True(t, errors.Is(err, eon.ErrDuplicateKey))

	var de *yamlsrc.DuplicateKeyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "name", de.Key)
	assert.Equal(t, 2, de.FirstLine)
	assert.Equal(t, 3, de.Line)

	e, ok := eon.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "metadata.name", e.Path)
}

func TestParse_MaxDepth(t *testing.T) {
	t.Parallel()

	doc := []byte("a: {b: {c: [1]}}\n")
	_, err := yamlsrc.Parse(doc, yamlsrc.Options{MaxDepth: 3})
	assert.True(t, errors.Is(err, eon.ErrParse))
	_, err = yamlsrc.Parse(doc, yamlsrc.Options{MaxDepth: 4})
	assert.NoError(t, err)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"", "a: [1, 2\n", "? [a]\n: 1\n"} {
		_, err := yamlsrc.Parse([]byte(doc))
		assert.True(t, errors.Is(err, eon.ErrParse), "%q: %v", doc, err)
	}
}

func TestParse_RecursiveAlias(t *testing.T) {
	t.Parallel()

	_, err := yamlsrc.Parse([]byte("a: &x [1, *x]\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, eon.ErrParse))
	e, ok := eon.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "a[1]", e.Path)
	assert.Contains(t, e.Message, "recursive alias")

	_, err = yamlsrc.Parse([]byte("a: &m {b: 1, <<: *m}\n"))
	assert.True(t, errors.Is(err, eon.ErrParse), "%v", err)

	root, err := yamlsrc.Parse([]byte("a: &x [1]\nb: [*x, *x]\n"))
	require.NoError(t, err)
	assert.Equal(t, "1", text(t, root, "b[1][0]"))
}

func TestReader_MultiDoc(t *testing.T) {
	t.Parallel()

	r := yamlsrc.NewReader(strings.NewReader("kind: A\n---\nkind: B\n"))
	docs, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "A", text(t, docs[0], "kind"))
	assert.Equal(t, "B", text(t, docs[1], "kind"))
}

func TestParse_FeedsExtraction(t *testing.T) {
	t.Parallel()

	type cfg struct {
		Width int                 `eon:"window.width"`
		Full  bool                `eon:"window.fullscreen"`
		Tags  map[string]struct{} `eon:"tags"`
	}
	n, err := yamlsrc.Parse([]byte("window: {width: 800, fullscreen: on}\ntags: !!set {x, y}\n"))
	require.NoError(t, err)
	got, err := eon.MustSchemaOf[cfg]().Decode(n)
	require.NoError(t, err)
	assert.Equal(t, cfg{Width: 800, Full: true, Tags: map[string]struct{}{"x": {}, "y": {}}}, got)
}
