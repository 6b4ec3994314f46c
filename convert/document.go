package convert

import (
	"github.com/reoring/eon"
	"github.com/reoring/eon/source/gojson"
)

// Document reads a scalar holding an embedded JSON document and extracts it
// through s. Errors inside the document keep their code; their path is
// reported relative to the document in the message, and the engine locates
// the error at the scalar itself.
func Document[T any](s *eon.Schema[T], opts ...gojson.Options) eon.Converter[string, T] {
	return func(raw string) (T, error) {
		var zero T
		root, err := gojson.Parse([]byte(raw), opts...)
		if err != nil {
			return zero, &eon.Error{Code: eon.CodeInvalidValue, Message: "embedded document is not valid JSON", Cause: err}
		}
		v, err := s.Decode(root)
		if err != nil {
			e, ok := eon.AsError(err)
			if !ok {
				return zero, err
			}
			msg := e.Message
			if e.Path != "" {
				msg = "embedded " + e.Path + ": " + msg
			}
			return zero, &eon.Error{Code: e.Code, Message: msg, Cause: e.Cause}
		}
		return v, nil
	}
}
