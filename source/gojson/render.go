package gojson

import (
	"bytes"

	j "github.com/goccy/go-json"

	"github.com/reoring/eon"
)

// RenderOptions controls Marshal.
type RenderOptions struct {
	// Typed writes scalars that are JSON numbers or booleans without quotes.
	// Otherwise every scalar is a JSON string.
	Typed bool
	// Indent, when non-empty, pretty-prints with this indent per level.
	Indent string
}

// Marshal renders n as JSON. Map keys keep tree order and sets become arrays.
// A nil node renders as null.
func Marshal(n *eon.Node, opts ...RenderOptions) ([]byte, error) {
	var opt RenderOptions
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	buf := &bytes.Buffer{}
	if err := write(buf, n, opt.Typed); err != nil {
		return nil, err
	}
	if opt.Indent == "" {
		return buf.Bytes(), nil
	}
	out := &bytes.Buffer{}
	if err := j.Indent(out, buf.Bytes(), "", opt.Indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func write(buf *bytes.Buffer, n *eon.Node, typed bool) error {
	switch n.Kind() {
	case eon.KindNull:
		buf.WriteString("null")
	case eon.KindScalar:
		s, _ := n.Text()
		if typed && isLiteral(s) {
			buf.WriteString(s)
			return nil
		}
		return writeString(buf, s)
	case eon.KindArray, eon.KindSet:
		buf.WriteByte('[')
		for i, it := range n.Items() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := write(buf, it, typed); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case eon.KindMap:
		buf.WriteByte('{')
		first := true
		for k, v := range n.Entries() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := write(buf, v, typed); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := j.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// isLiteral reports a JSON number or boolean. Valid JSON text that starts
// with '-' or a digit can only be a number.
func isLiteral(s string) bool {
	if s == "true" || s == "false" {
		return true
	}
	if s == "" || !(s[0] == '-' || s[0] >= '0' && s[0] <= '9') {
		return false
	}
	return j.Valid([]byte(s))
}
