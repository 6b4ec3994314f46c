package convert

import (
	"strconv"
	"time"

	"github.com/reoring/eon"
)

// RFC3339 parses RFC 3339 timestamps, with or without fractional seconds.
func RFC3339() eon.Converter[string, time.Time] {
	return func(s string) (time.Time, error) {
		t, err := parseRFC3339(s)
		if err != nil {
			return time.Time{}, &eon.Error{Code: eon.CodeInvalidValue, Message: "invalid RFC3339 time", Cause: err}
		}
		return t, nil
	}
}

// FormatRFC3339 renders t in the canonical form RFC3339 accepts: UTC,
// trailing zeros of the fraction trimmed.
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// Duration reads Go duration syntax ("1m30s"). A bare integer is taken in
// unit, so Duration(time.Second) reads "90" as 90s.
func Duration(unit time.Duration) eon.Converter[string, time.Duration] {
	return func(s string) (time.Duration, error) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			d := time.Duration(n) * unit
			if unit != 0 && d/unit != time.Duration(n) {
				return 0, eon.Invalidf("%q overflows a duration", s)
			}
			return d, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, eon.Invalidf("%q is not a duration", s)
		}
		return d, nil
	}
}
