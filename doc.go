// Package eon extracts typed Go values from immutable EON value trees.
//
// Package eon provides:
//
// - An immutable value tree (Node: null, scalar, array, set, map) built by the
// bridges under source/ (JSON via go-json, YAML via yaml.v3)
// - Path selection with keys, indices and wildcards (Select)
// - Adapters binding a destination member to a path, a tag and an optional
// converter (Field, FieldWith), grouped into schemas (NewSchema, SchemaOf)
// - A fail-fast extraction engine reporting one of four error codes
// (invalid_identifier, invalid_value, selection_empty, extraction_failed)
//
// Design policy:
// - Keep the public API in the root package; put helpers under internal/.
// - Place ready-made converters under convert/ and the CLI under cmd/eon.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	type Window struct {
//		Width  int
//		Height int
//	}
//
//	s := eon.MustSchema(
//		eon.MustField("window.width", func(w *Window) *int { return &w.Width }),
//		eon.MustField("window.height", func(w *Window) *int { return &w.Height }, eon.Optional()),
//	)
//	root, err := yamlsrc.Parse(data)
//	w, err := s.Decode(root)
//	if errors.Is(err, eon.ErrSelectionEmpty) { ... }
//
// Every scalar is text in the tree; the engine converts it into the member
// type (strconv rules, boolean tokens, time.Duration, encoding.TextUnmarshaler)
// or through a converter. Trees are read-only, so one tree and one schema can
// serve many concurrent extractions.
package eon
