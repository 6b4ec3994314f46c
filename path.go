package eon

import (
	"strconv"
	"strings"
)

type stepKind uint8

const (
	stepKey stepKind = iota
	stepIndex
	stepWildcard
)

// Step is one hop of a Path: a map key, an array/set index or a wildcard.
type Step struct {
	kind  stepKind
	key   string
	index int
}

// Key returns the key of a key step.
func (s Step) Key() (string, bool) { return s.key, s.kind == stepKey }

// Index returns the index of an index step.
func (s Step) Index() (int, bool) { return s.index, s.kind == stepIndex }

// IsWildcard reports whether the step selects every child.
func (s Step) IsWildcard() bool { return s.kind == stepWildcard }

// Path is an immutable sequence of steps from a root node. The zero Path is
// the root itself.
type Path struct {
	steps []Step
}

// Root is the empty path.
var Root = Path{}

// ParsePath parses "a.b[2].c", "items[*].id" or "" (the root). Identifiers
// must match [A-Za-z_][A-Za-z0-9_-]*; anything else is invalid_identifier.
func ParsePath(s string) (Path, error) {
	if s == "" || s == "." {
		return Root, nil
	}
	var steps []Step
	i := 0
	expectKey := true
	for i < len(s) {
		switch {
		case s[i] == '[':
			if expectKey && len(steps) > 0 {
				return Root, pathError(s, "empty segment")
			}
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return Root, pathError(s, "unterminated index")
			}
			tok := s[i+1 : i+end]
			if tok == "*" {
				steps = append(steps, Step{kind: stepWildcard})
			} else {
				n, err := parseIndex(tok)
				if err != nil {
					return Root, pathError(s, "invalid index "+strconv.Quote(tok))
				}
				steps = append(steps, Step{kind: stepIndex, index: n})
			}
			i += end + 1
			expectKey = false
		case s[i] == '.':
			if expectKey {
				return Root, pathError(s, "empty segment")
			}
			i++
			expectKey = true
			if i == len(s) {
				return Root, pathError(s, "trailing dot")
			}
		default:
			if !expectKey {
				return Root, pathError(s, "missing dot before "+strconv.Quote(s[i:]))
			}
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			key := s[i:j]
			if key == "*" {
				steps = append(steps, Step{kind: stepWildcard})
			} else {
				if !IsIdentifier(key) {
					return Root, pathError(s, "invalid identifier "+strconv.Quote(key))
				}
				steps = append(steps, Step{kind: stepKey, key: key})
			}
			i = j
			expectKey = false
		}
	}
	return Path{steps: steps}, nil
}

// MustPath is like ParsePath but panics on error.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseIndex(tok string) (int, error) {
	if tok == "" || tok[0] == '+' || tok[0] == '-' {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(tok)
}

func pathError(path, detail string) *Error {
	return &Error{Code: CodeInvalidIdentifier, Path: path, Message: detail}
}

// IsIdentifier reports whether s is a valid EON identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '-'):
		default:
			return false
		}
	}
	return true
}

// Steps returns a copy of the path steps.
func (p Path) Steps() []Step { return append([]Step(nil), p.steps...) }

// Len returns the number of steps.
func (p Path) Len() int { return len(p.steps) }

// IsRoot reports whether p has no steps.
func (p Path) IsRoot() bool { return len(p.steps) == 0 }

// Key returns p extended with a key step. The key is not validated.
func (p Path) Key(k string) Path { return p.with(Step{kind: stepKey, key: k}) }

// Index returns p extended with an index step.
func (p Path) Index(i int) Path { return p.with(Step{kind: stepIndex, index: i}) }

// Join returns p followed by q.
func (p Path) Join(q Path) Path {
	if len(q.steps) == 0 {
		return p
	}
	if len(p.steps) == 0 {
		return q
	}
	steps := make([]Step, 0, len(p.steps)+len(q.steps))
	steps = append(steps, p.steps...)
	return Path{steps: append(steps, q.steps...)}
}

func (p Path) with(s Step) Path {
	steps := make([]Step, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	return Path{steps: append(steps, s)}
}

// String renders the path in EON notation ("" for the root). Keys that are
// not identifiers are quoted so error reports stay readable; ParsePath
// rejects such paths.
func (p Path) String() string {
	b := &strings.Builder{}
	for i, s := range p.steps {
		switch s.kind {
		case stepKey:
			if i > 0 {
				b.WriteByte('.')
			}
			if IsIdentifier(s.key) {
				b.WriteString(s.key)
			} else {
				b.WriteString(strconv.Quote(s.key))
			}
		case stepIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		case stepWildcard:
			b.WriteString("[*]")
		}
	}
	return b.String()
}

// Pointer renders the path as a JSON Pointer (RFC 6901).
func (p Path) Pointer() string {
	if len(p.steps) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p.steps {
		b.WriteByte('/')
		switch s.kind {
		case stepKey:
			// escape '~' -> '~0', '/' -> '~1' per RFC6901
			b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.key, "~", "~0"), "/", "~1"))
		case stepIndex:
			b.WriteString(strconv.Itoa(s.index))
		case stepWildcard:
			b.WriteByte('*')
		}
	}
	return b.String()
}
