// Package convert provides ready-made converters for eon adapters.
package convert

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/reoring/eon"
)

// Enum maps names to values. Unknown names are invalid_value listing the
// accepted names.
func Enum[U any](names map[string]U) eon.Converter[string, U] {
	return enum(names, false)
}

// EnumFold is Enum with case-insensitive matching.
func EnumFold[U any](names map[string]U) eon.Converter[string, U] {
	return enum(names, true)
}

func enum[U any](names map[string]U, fold bool) eon.Converter[string, U] {
	table := make(map[string]U, len(names))
	known := make([]string, 0, len(names))
	for k, v := range names {
		if fold {
			k = strings.ToLower(k)
		}
		table[k] = v
		known = append(known, k)
	}
	slices.Sort(known)
	return func(s string) (U, error) {
		key := s
		if fold {
			key = strings.ToLower(s)
		}
		if v, ok := table[key]; ok {
			return v, nil
		}
		var zero U
		return zero, eon.Invalidf("unknown name %q (want one of %s)", s, strings.Join(known, ", "))
	}
}

// Number is the set of types Scale can produce.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Scale parses "<number><unit>" and multiplies by the unit's factor, e.g.
// Scale[int64](map[string]float64{"": 1, "k": 1e3, "M": 1e6}) reads "5k" as
// 5000. The longest matching unit suffix wins. Integer results must be exact
// and in range.
func Scale[N Number](units map[string]float64) eon.Converter[string, N] {
	suffixes := make([]string, 0, len(units))
	for u := range units {
		suffixes = append(suffixes, u)
	}
	slices.SortFunc(suffixes, func(a, b string) int { return cmp.Compare(len(b), len(a)) })
	return func(s string) (N, error) {
		for _, u := range suffixes {
			num, ok := strings.CutSuffix(s, u)
			if !ok || num == "" {
				continue
			}
			f, err := strconv.ParseFloat(num, 64)
			if err != nil {
				continue
			}
			return toNumber[N](f*units[u], s)
		}
		return 0, eon.Invalidf("%q is not a number with a known unit", s)
	}
}

func toNumber[N Number](f float64, raw string) (N, error) {
	half := 0.5
	if N(half) != 0 {
		return N(f), nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, eon.Invalidf("%q is not a whole number", raw)
	}
	n := N(f)
	if float64(n) != f {
		return 0, eon.Invalidf("%q is out of range", raw)
	}
	return n, nil
}

// Check wraps conv with a post-condition on its result. A failing predicate
// is extraction_failed.
func Check[I, U any](conv eon.Converter[I, U], pred func(U) error) eon.Converter[I, U] {
	return func(in I) (U, error) {
		u, err := conv(in)
		if err != nil {
			return u, err
		}
		if err := pred(u); err != nil {
			var zero U
			if _, ok := eon.AsError(err); ok {
				return zero, err
			}
			return zero, eon.Failf("%v", err)
		}
		return u, nil
	}
}

// InRange returns a predicate for Check or eon.WithCheck accepting lo <= v <= hi.
func InRange[N cmp.Ordered](lo, hi N) func(N) error {
	return func(v N) error {
		if v < lo || v > hi {
			return eon.Failf("%v is outside [%v, %v]", v, lo, hi)
		}
		return nil
	}
}

// OneOf returns a predicate accepting only the listed values.
func OneOf[U comparable](allowed ...U) func(U) error {
	return func(v U) error {
		if slices.Contains(allowed, v) {
			return nil
		}
		return eon.Failf("%v is not allowed", fmt.Sprint(v))
	}
}
