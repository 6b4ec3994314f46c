package eon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/eon/i18n"
)

// Error codes. Each extraction reports at most one of the first four.
const (
	CodeInvalidIdentifier = "invalid_identifier"
	CodeInvalidValue      = "invalid_value"
	CodeSelectionEmpty    = "selection_empty"
	CodeExtractionFailed  = "extraction_failed"
	// Declaration-time problems (bad adapter or schema), never raised by Extract.
	CodeInvalidSchema = "invalid_schema"
	// Malformed source documents, raised by the bridges that build trees.
	CodeParseError = "parse_error"
)

// Sentinels for errors.Is matching by code.
var (
	ErrInvalidIdentifier = &Error{Code: CodeInvalidIdentifier}
	ErrInvalidValue      = &Error{Code: CodeInvalidValue}
	ErrSelectionEmpty    = &Error{Code: CodeSelectionEmpty}
	ErrExtractionFailed  = &Error{Code: CodeExtractionFailed}
	ErrInvalidSchema     = &Error{Code: CodeInvalidSchema}
	ErrParse             = &Error{Code: CodeParseError}
)

// Error is the single failure reported by an extraction attempt.
type Error struct {
	Code    string // One of the codes listed above.
	Path    string // Path of the failing node, in EON path notation ("" is the root).
	Message string
	Cause   error // Optional: underlying error.
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Code)
	if e.Path != "" {
		fmt.Fprintf(b, " at %s", e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(b, " (%v)", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same code. Sentinels carry
// only a code, so errors.Is(err, ErrSelectionEmpty) matches any path.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Path == "" || t.Path == e.Path)
}

// AsError extracts an *Error from err using errors.As.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the error code carried by err, or "" when err is not an *Error.
func CodeOf(err error) string {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// Failf builds an extraction_failed error for semantic rejections raised by
// converters and checks. The engine fills in the path.
func Failf(format string, args ...any) error {
	return &Error{Code: CodeExtractionFailed, Message: fmt.Sprintf(format, args...)}
}

// Invalidf builds an invalid_value error for converters that reject a literal.
func Invalidf(format string, args ...any) error {
	return &Error{Code: CodeInvalidValue, Message: fmt.Sprintf(format, args...)}
}

// ParseError builds a parse_error located at p (the root when p is empty).
func ParseError(p Path, detail string, cause error) *Error {
	return newError(CodeParseError, p, detail, cause)
}

func newError(code string, p Path, detail string, cause error) *Error {
	msg := i18n.T(code, nil)
	if detail != "" {
		msg += ": " + detail
	}
	return &Error{Code: code, Path: p.String(), Message: msg, Cause: cause}
}

func mismatchError(p Path, expected, found string) *Error {
	return &Error{
		Code:    CodeInvalidValue,
		Path:    p.String(),
		Message: i18n.T(CodeInvalidValue, map[string]string{"expected": expected, "found": found}),
	}
}

func schemaError(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidSchema, Message: i18n.T(CodeInvalidSchema, nil) + ": " + fmt.Sprintf(format, args...)}
}

// atPath returns err located at p. *Error values keep their code and gain the
// path when they have none; other errors become defaultCode.
func atPath(err error, p Path, defaultCode string) *Error {
	if e, ok := AsError(err); ok {
		if e.Path != "" {
			return e
		}
		out := *e
		out.Path = p.String()
		if out.Message == "" {
			out.Message = i18n.T(out.Code, nil)
		}
		return &out
	}
	return newError(defaultCode, p, "", err)
}
