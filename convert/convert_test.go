package convert_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/eon"
	"github.com/reoring/eon/convert"
)

type level int

const (
	debug level = iota
	info
	warn
)

func TestEnum(t *testing.T) {
	t.Parallel()

	conv := convert.Enum(map[string]level{"debug": debug, "info": info, "warn": warn})
	v, err := conv("warn")
	require.NoError(t, err)
	assert.Equal(t, warn, v)

	_, err = conv("WARN")
	require.Error(t, err)
	assert.True(t, errors.Is(err, eon.ErrInvalidValue))
	assert.Contains(t, err.Error(), "debug, info, warn")

	fold := convert.EnumFold(map[string]level{"Info": info})
	v, err = fold("INFO")
	require.NoError(t, err)
	assert.Equal(t, info, v)
}

func TestScale(t *testing.T) {
	t.Parallel()

	bytes := convert.Scale[int64](map[string]float64{"": 1, "K": 1 << 10, "Ki": 1 << 10, "M": 1 << 20, "MiB": 1 << 20})
	for in, want := range map[string]int64{"12": 12, "2K": 2048, "2Ki": 2048, "1.5M": 1572864, "3MiB": 3 << 20} {
		got, err := bytes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "K", "1.5", "2X", "abc"} {
		_, err := bytes(in)
		assert.True(t, errors.Is(err, eon.ErrInvalidValue), in)
	}

	small := convert.Scale[uint8](map[string]float64{"": 1, "h": 100})
	_, err := small("3h")
	assert.True(t, errors.Is(err, eon.ErrInvalidValue), "out of range")

	ratio := convert.Scale[float64](map[string]float64{"%": 0.01})
	f, err := ratio("12.5%")
	require.NoError(t, err)
	assert.InDelta(t, 0.125, f, 1e-12)
}

func TestDuration(t *testing.T) {
	t.Parallel()

	conv := convert.Duration(time.Second)
	for in, want := range map[string]time.Duration{"90": 90 * time.Second, "1m30s": 90 * time.Second, "250ms": 250 * time.Millisecond} {
		got, err := conv(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := conv("soon")
	assert.True(t, errors.Is(err, eon.ErrInvalidValue))
	_, err = convert.Duration(time.Hour)("9223372036854775807")
	assert.True(t, errors.Is(err, eon.ErrInvalidValue))
}

func TestRFC3339(t *testing.T) {
	t.Parallel()

	conv := convert.RFC3339()
	got, err := conv("2024-05-06T07:08:09.120+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06T05:08:09.12Z", convert.FormatRFC3339(got))

	got, err = conv("2024-05-06T07:08:09Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06T07:08:09Z", convert.FormatRFC3339(got))

	_, err = conv("2024-05-06")
	assert.True(t, errors.Is(err, eon.ErrInvalidValue))
}

func TestCheckAndPredicates(t *testing.T) {
	t.Parallel()

	percent := convert.Check(convert.Scale[float64](map[string]float64{"": 1}), convert.InRange(0.0, 100.0))
	v, err := percent("42")
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
	_, err = percent("101")
	assert.True(t, errors.Is(err, eon.ErrExtractionFailed))
	_, err = percent("x")
	assert.True(t, errors.Is(err, eon.ErrInvalidValue), "converter errors pass through")

	plain := convert.Check(convert.Enum(map[string]level{"info": info, "warn": warn}), func(l level) error {
		if l == warn {
			return errors.New("warn is disabled")
		}
		return nil
	})
	_, err = plain("warn")
	assert.True(t, errors.Is(err, eon.ErrExtractionFailed))

	assert.NoError(t, convert.OneOf("a", "b")("a"))
	assert.True(t, errors.Is(convert.OneOf("a", "b")("c"), eon.ErrExtractionFailed))
}

type endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type service struct {
	Level    level
	Endpoint endpoint
	Timeout  time.Duration
	Ports    []int
}

func TestConvertersInAdapters(t *testing.T) {
	t.Parallel()

	tree := eon.MustMap(
		eon.KV("level", eon.Scalar("info")),
		eon.KV("endpoint", eon.Scalar(`{"host": "db", "port": 5432}`)),
		eon.KV("timeout", eon.Scalar("30")),
		eon.KV("ports", eon.Array(eon.Scalar("80"), eon.Scalar("443"))),
	)
	s := eon.MustSchema(
		eon.MustFieldWith("level", func(s *service) *level { return &s.Level },
			convert.Enum(map[string]level{"info": info})),
		eon.MustFieldWith("endpoint", func(s *service) *endpoint { return &s.Endpoint },
			convert.Document(eon.MustSchemaOf[endpoint]())),
		eon.MustFieldWith("timeout", func(s *service) *time.Duration { return &s.Timeout },
			convert.Duration(time.Second)),
		eon.MustField("ports", func(s *service) *[]int { return &s.Ports },
			eon.WithCheck(func(ps []int) error {
				for _, p := range ps {
					if err := convert.InRange(1, 65535)(p); err != nil {
						return err
					}
				}
				return nil
			})),
	)
	got, err := s.Decode(tree)
	require.NoError(t, err)
	assert.Equal(t, service{Level: info, Endpoint: endpoint{Host: "db", Port: 5432}, Timeout: 30 * time.Second, Ports: []int{80, 443}}, got)
}

func TestDocument_Errors(t *testing.T) {
	t.Parallel()

	conv := convert.Document(eon.MustSchemaOf[endpoint]())
	_, err := conv(`{"host": `)
	assert.True(t, errors.Is(err, eon.ErrInvalidValue))

	_, err = conv(`{"host": "db", "port": "x"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, eon.ErrInvalidValue))
	assert.Contains(t, err.Error(), "embedded port")

	type outer struct{ E endpoint }
	a := eon.MustFieldWith("cfg.e", func(o *outer) *endpoint { return &o.E }, conv)
	var o outer
	err = eon.Extract(eon.MustMap(eon.KV("cfg", eon.MustMap(eon.KV("e", eon.Scalar(`{"host": "db"}`))))), a, &o)
	require.Error(t, err)
	assert.True(t, errors.Is(err, eon.ErrSelectionEmpty))
	e, ok := eon.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "cfg.e", e.Path)
}
