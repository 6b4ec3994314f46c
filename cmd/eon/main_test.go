package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_JSONStdin(t *testing.T) {
	var out, errb bytes.Buffer
	code := run([]string{"select", "-in", "-", "-path", "window.width", "-typed"},
		strings.NewReader(`{"window": {"width": 800}}`), &out, &errb)
	require.Equal(t, 0, code, errb.String())
	assert.Equal(t, "800\n", out.String())
}

func TestSelect_WildcardYAMLFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(in, []byte("items:\n  - id: a\n  - id: b\n"), 0o644))

	var out, errb bytes.Buffer
	code := run([]string{"select", "-in", in, "-path", "items[*].id", "-v"}, nil, &out, &errb)
	require.Equal(t, 0, code, errb.String())
	assert.Equal(t, "[\n  \"a\",\n  \"b\"\n]\n", out.String())
	assert.Contains(t, errb.String(), "selected 2 node(s)")
}

func TestSelect_Missing(t *testing.T) {
	var out, errb bytes.Buffer
	code := run([]string{"select", "-in", "-", "-path", "nope"}, strings.NewReader(`{}`), &out, &errb)
	assert.Equal(t, 1, code)
	assert.Contains(t, errb.String(), "selection_empty at nope")
}

func TestSelect_ParseError(t *testing.T) {
	var out, errb bytes.Buffer
	code := run([]string{"select", "-in", "-", "-format", "yaml"}, strings.NewReader("a: [1\n"), &out, &errb)
	assert.Equal(t, 1, code)
	assert.Contains(t, errb.String(), "parse_error")
}

func TestTree(t *testing.T) {
	var out, errb bytes.Buffer
	code := run([]string{"tree", "-in", "-", "-format", "yaml"},
		strings.NewReader("name: x\ntags: !!set {a}\nlist: [1, ~]\n"), &out, &errb)
	require.Equal(t, 0, code, errb.String())
	want := strings.Join([]string{
		"map",
		`  name: scalar "x"`,
		"  tags: set",
		`    [0]: scalar "a"`,
		"  list: array",
		`    [0]: scalar "1"`,
		"    [1]: null",
		"",
	}, "\n")
	assert.Equal(t, want, out.String())
}

func TestUsage(t *testing.T) {
	var out, errb bytes.Buffer
	assert.Equal(t, 2, run(nil, nil, &out, &errb))
	assert.Equal(t, 2, run([]string{"bogus"}, nil, &out, &errb))
	assert.Equal(t, 2, run([]string{"select"}, nil, &out, &errb))
	assert.Contains(t, errb.String(), "eon CLI")
}
