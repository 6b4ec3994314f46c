// Package lexical converts literal scalar text into Go values. Conversions are
// locale independent and strict: no silent truncation, no implicit defaults.
package lexical

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrSyntax reports a malformed literal.
	ErrSyntax = errors.New("malformed literal")
	// ErrRange reports a numeric literal that does not fit the target type.
	ErrRange = errors.New("literal out of range")
	// ErrUnsupported reports a target type with no lexical form.
	ErrUnsupported = errors.New("unsupported target type")
)

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	durationType        = reflect.TypeOf(time.Duration(0))
	stringType          = reflect.TypeOf("")
)

// Parse converts raw into a new value of type rt. Pointer types are allocated.
func Parse(raw string, rt reflect.Type) (reflect.Value, error) {
	out := reflect.New(rt).Elem()
	if err := Set(raw, out); err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

// Set converts raw and stores it into the settable value v.
func Set(raw string, v reflect.Value) error {
	t := v.Type()
	if t.Kind() == reflect.Pointer {
		ev := reflect.New(t.Elem())
		if err := Set(raw, ev.Elem()); err != nil {
			return err
		}
		v.Set(ev)
		return nil
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		tmp := reflect.New(t)
		if err := tmp.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return fmt.Errorf("%w: %q as %s: %v", ErrSyntax, raw, t, err)
		}
		v.Set(tmp.Elem())
		return nil
	}
	if t == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%w: %q as duration", ErrSyntax, raw)
		}
		v.SetInt(int64(d))
		return nil
	}
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, ok := ParseBool(raw)
		if !ok {
			return fmt.Errorf("%w: %q is not a boolean token", ErrSyntax, raw)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return numError(raw, t, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return numError(raw, t, err)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return numError(raw, t, err)
		}
		v.SetFloat(f)
	case reflect.Complex64, reflect.Complex128:
		c, err := strconv.ParseComplex(raw, t.Bits())
		if err != nil {
			return numError(raw, t, err)
		}
		v.SetComplex(c)
	case reflect.Slice:
		if t.Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("%w: %s", ErrUnsupported, t)
		}
		v.SetBytes([]byte(raw))
	case reflect.Interface:
		if !stringType.AssignableTo(t) {
			return fmt.Errorf("%w: %s", ErrUnsupported, t)
		}
		v.Set(reflect.ValueOf(raw))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
	return nil
}

// ParseBool recognizes true/false, yes/no, on/off and 1/0, case-insensitively.
func ParseBool(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// Supported reports whether rt has a lexical form.
func Supported(rt reflect.Type) bool {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if reflect.PointerTo(rt).Implements(textUnmarshalerType) || rt == durationType {
		return true
	}
	switch rt.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Slice:
		return rt.Elem().Kind() == reflect.Uint8
	case reflect.Interface:
		return stringType.AssignableTo(rt)
	}
	return false
}

func numError(raw string, t reflect.Type, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("%w: %q for %s", ErrRange, raw, t)
	}
	return fmt.Errorf("%w: %q as %s", ErrSyntax, raw, t)
}
