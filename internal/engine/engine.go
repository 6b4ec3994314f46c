// Package engine builds value trees from streaming token sources.
package engine

import (
	"errors"
	"io"
	"strconv"

	"github.com/reoring/eon"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64 // -1 when unknown
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	// DupError rejects the document.
	DupError DuplicateStrictness = iota
	// DupLastWins keeps the last value, in the position of the first key.
	DupLastWins
)

// Options controls enforcement while building.
type Options struct {
	OnDuplicate DuplicateStrictness
	// MaxDepth bounds container nesting (0 means unbounded).
	MaxDepth int
	// MaxBytes bounds consumed input when the source reports its location.
	MaxBytes int64
}

// Build reads exactly one value from src and returns it as a tree. Scalars
// keep their literal text: numbers as written, booleans as "true"/"false".
// Errors are eon parse_error values located at the offending path.
func Build(src TokenSource, opt Options) (*eon.Node, error) {
	b := &builder{src: src, opt: opt}
	tok, err := b.next(eon.Root)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eon.ParseError(eon.Root, "empty document", nil)
		}
		return nil, err
	}
	return b.value(tok, eon.Root, 0)
}

// BuildAll is Build that also requires the source to be exhausted afterwards.
func BuildAll(src TokenSource, opt Options) (*eon.Node, error) {
	n, err := Build(src, opt)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, eon.ParseError(eon.Root, "trailing data after document", nil)
		}
		return nil, eon.ParseError(eon.Root, "", err)
	}
	return n, nil
}

type builder struct {
	src TokenSource
	opt Options
}

func (b *builder) next(p eon.Path) (Token, error) {
	tok, err := b.src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Token{}, err
		}
		return Token{}, eon.ParseError(p, "", err)
	}
	if b.opt.MaxBytes > 0 {
		if off := b.src.Location(); off >= 0 && off > b.opt.MaxBytes {
			return Token{}, eon.ParseError(p, "max bytes exceeded", nil)
		}
	}
	return tok, nil
}

// nextIn reads a token inside a container, where EOF is an error.
func (b *builder) nextIn(p eon.Path) (Token, error) {
	tok, err := b.next(p)
	if errors.Is(err, io.EOF) {
		return Token{}, eon.ParseError(p, "unexpected end of input", io.ErrUnexpectedEOF)
	}
	return tok, err
}

func (b *builder) value(tok Token, p eon.Path, depth int) (*eon.Node, error) {
	switch tok.Kind {
	case KindBeginObject:
		if err := b.enter(p, depth); err != nil {
			return nil, err
		}
		return b.object(p, depth+1)
	case KindBeginArray:
		if err := b.enter(p, depth); err != nil {
			return nil, err
		}
		return b.array(p, depth+1)
	case KindString:
		return eon.Scalar(tok.String), nil
	case KindNumber:
		return eon.Scalar(tok.Number), nil
	case KindBool:
		return eon.Scalar(strconv.FormatBool(tok.Bool)), nil
	case KindNull:
		return eon.Null, nil
	}
	return nil, eon.ParseError(p, "unexpected token", nil)
}

func (b *builder) enter(p eon.Path, depth int) error {
	if b.opt.MaxDepth > 0 && depth+1 > b.opt.MaxDepth {
		return eon.ParseError(p, "max depth exceeded", nil)
	}
	return nil
}

func (b *builder) object(p eon.Path, depth int) (*eon.Node, error) {
	var entries []eon.Entry
	index := map[string]int{}
	for {
		tok, err := b.nextIn(p)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return eon.NewMap(entries...)
		}
		if tok.Kind != KindKey {
			return nil, eon.ParseError(p, "expected object key", nil)
		}
		cp := p.Key(tok.String)
		i, dup := index[tok.String]
		if dup && b.opt.OnDuplicate == DupError {
			return nil, eon.ParseError(cp, "key "+strconv.Quote(tok.String)+" duplicated", eon.ErrDuplicateKey)
		}
		vt, err := b.nextIn(cp)
		if err != nil {
			return nil, err
		}
		v, err := b.value(vt, cp, depth)
		if err != nil {
			return nil, err
		}
		if dup {
			entries[i].Value = v
			continue
		}
		index[tok.String] = len(entries)
		entries = append(entries, eon.KV(tok.String, v))
	}
}

func (b *builder) array(p eon.Path, depth int) (*eon.Node, error) {
	var items []*eon.Node
	for {
		cp := p.Index(len(items))
		tok, err := b.nextIn(cp)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return eon.Array(items...), nil
		}
		v, err := b.value(tok, cp, depth)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
}
