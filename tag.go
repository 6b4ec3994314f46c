package eon

import (
	"fmt"
	"strings"
)

// Tag selects how a node is interpreted for a destination. TagAuto defers to
// the destination traits; TagFail rejects the binding outright.
type Tag int

const (
	TagAuto Tag = iota
	TagFail
	TagScalar
	TagArray
	TagSet
	TagMap
)

func (t Tag) String() string {
	switch t {
	case TagAuto:
		return "auto"
	case TagFail:
		return "fail"
	case TagScalar:
		return "scalar"
	case TagArray:
		return "array"
	case TagSet:
		return "set"
	case TagMap:
		return "map"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// ParseTag parses a tag name as written in struct tags ("auto", "set", ...).
func ParseTag(s string) (Tag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return TagAuto, nil
	case "fail":
		return TagFail, nil
	case "scalar":
		return TagScalar, nil
	case "array":
		return TagArray, nil
	case "set":
		return TagSet, nil
	case "map":
		return TagMap, nil
	}
	return TagAuto, schemaError("unknown tag %q", s)
}

// ResolveTag picks the interpretation (KindScalar, KindArray, KindSet or
// KindMap) for a destination with traits t. TagFail always fails.
func ResolveTag(tag Tag, t Traits) (Kind, error) {
	switch tag {
	case TagFail:
		return KindNull, &Error{Code: CodeExtractionFailed, Message: "binding is tagged fail"}
	case TagScalar:
		return KindScalar, nil
	case TagArray:
		return KindArray, nil
	case TagSet:
		return KindSet, nil
	case TagMap:
		return KindMap, nil
	case TagAuto:
		if k, ok := autoKind(t); ok {
			return k, nil
		}
		return KindNull, schemaError("unsupported destination shape %s", t.Shape)
	}
	return KindNull, schemaError("unknown tag %d", int(tag))
}

// accepts reports whether a node of kind found satisfies interpretation want.
// An array is a valid source for set insertion.
func accepts(want, found Kind) bool {
	if want == found {
		return true
	}
	return want == KindSet && found == KindArray
}

// compatible reports whether interpretation k can write into a destination
// with traits t. Checked when an adapter is declared.
func compatible(k Kind, t Traits) bool {
	switch k {
	case KindScalar:
		return t.Shape == ShapeScalar
	case KindArray, KindSet:
		return t.Shape == ShapeVector || t.Shape == ShapeSet
	case KindMap:
		return t.Shape == ShapeMap
	}
	return false
}
