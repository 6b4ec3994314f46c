package eon

import (
	"reflect"
	"strings"
)

const maxKeyDepth = 32

// KeyOf returns the path a derived schema (SchemaOf) binds to the member of T
// that selector addresses, descending through nested struct fields:
//
//	KeyOf(func(c *Config) *int { return &c.Window.Width }) // "window.width"
//
// Useful to look up a member in the PresenceMap returned by ExtractWithMeta.
func KeyOf[T, U any](selector func(*T) *U) (string, error) {
	if selector == nil {
		return "", schemaError("nil member selector")
	}
	var zero T
	v := reflect.ValueOf(&zero).Elem()
	fp, err := callSelector(selector, &zero)
	if err != nil {
		return "", err
	}
	if fp == nil {
		return "", schemaError("member selector returned nil")
	}
	target := reflect.ValueOf(fp).Pointer()
	keys, ok := findKeys(v, target, reflect.TypeFor[U](), 0)
	if !ok {
		return "", schemaError("selector must address an exported, non-skipped field of %s", v.Type())
	}
	return strings.Join(keys, "."), nil
}

// MustKeyOf is like KeyOf but panics on error.
func MustKeyOf[T, U any](selector func(*T) *U) string {
	k, err := KeyOf(selector)
	if err != nil {
		panic(err)
	}
	return k
}

func findKeys(v reflect.Value, target uintptr, ut reflect.Type, depth int) ([]string, bool) {
	if depth > maxKeyDepth || v.Kind() != reflect.Struct {
		return nil, false
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)
		key, opts := resolveFieldKey(sf)
		if key == "-" {
			continue
		}
		flatten := sf.Anonymous && sf.Type.Kind() == reflect.Struct && !opts.named
		if !flatten && !sf.IsExported() {
			continue
		}
		if !flatten && fv.Addr().Pointer() == target && sf.Type == ut {
			return []string{key}, true
		}
		if fv.Kind() != reflect.Struct {
			continue
		}
		rest, ok := findKeys(fv, target, ut, depth+1)
		if !ok {
			continue
		}
		if flatten {
			return rest, true
		}
		return append([]string{key}, rest...), true
	}
	return nil, false
}
