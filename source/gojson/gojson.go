// Package gojson builds eon value trees from JSON documents using
// goccy/go-json, and renders trees back to JSON.
package gojson

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/eon"
	eng "github.com/reoring/eon/internal/engine"
)

// Options controls tree building. When several are passed the last one wins.
type Options struct {
	// MaxDepth bounds container nesting (0 means unbounded).
	MaxDepth int
	// MaxBytes bounds the size of the input (0 means unbounded).
	MaxBytes int64
	// AllowDuplicateKeys keeps the last value of a repeated object key
	// instead of rejecting the document.
	AllowDuplicateKeys bool
}

// Parse builds a tree from a single JSON document. Numbers keep their literal
// text, booleans become "true"/"false", null becomes eon.Null.
func Parse(b []byte, opts ...Options) (*eon.Node, error) {
	return ParseReader(bytes.NewReader(b), opts...)
}

// ParseReader is Parse over an io.Reader. The reader must hold exactly one
// document.
func ParseReader(r io.Reader, opts ...Options) (*eon.Node, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	eo := eng.Options{MaxDepth: opt.MaxDepth, MaxBytes: opt.MaxBytes}
	if opt.AllowDuplicateKeys {
		eo.OnDuplicate = eng.DupLastWins
	}
	if opt.MaxBytes > 0 {
		r = io.LimitReader(r, opt.MaxBytes+1)
	}
	cr := &countingReader{r: r}
	return eng.BuildAll(newSource(cr), eo)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// ---- engine.TokenSource implementation using go-json Decoder ----

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type source struct {
	dec   *j.Decoder
	in    *countingReader
	stack []frame
}

func newSource(r *countingReader) *source {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec, in: r}
}

// valueDone flips the enclosing object back to expecting a key.
func (s *source) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return eng.Token{Kind: eng.KindBeginObject, Offset: -1}, nil
		case '}':
			s.pop()
			return eng.Token{Kind: eng.KindEndObject, Offset: -1}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return eng.Token{Kind: eng.KindBeginArray, Offset: -1}, nil
		case ']':
			s.pop()
			return eng.Token{Kind: eng.KindEndArray, Offset: -1}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return eng.Token{Kind: eng.KindKey, String: v, Offset: -1}, nil
			}
		}
		s.valueDone()
		return eng.Token{Kind: eng.KindString, String: v, Offset: -1}, nil
	case bool:
		s.valueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: -1}, nil
	case j.Number:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: -1}, nil
	case float64:
		s.valueDone()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}, nil
	case nil:
		s.valueDone()
		return eng.Token{Kind: eng.KindNull, Offset: -1}, nil
	}
	s.valueDone()
	return eng.Token{Kind: eng.KindNull, Offset: -1}, nil
}

// Location reports bytes read from the input so far. go-json buffers ahead,
// so this is an upper bound of the decoder position.
func (s *source) Location() int64 { return s.in.n }
