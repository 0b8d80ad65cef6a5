package convert

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu        sync.Mutex
	converted map[string]int
	degraded  []*ConversionError
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{converted: map[string]int{}}
}

func (o *recordingObserver) Converted(typeName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.converted[typeName]++
}

func (o *recordingObserver) Degraded(err *ConversionError) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.degraded = append(o.degraded, err)
}

func quietConverter(opts ...Option) *Converter {
	return New(append([]Option{WithLogger(hclog.NewNullLogger())}, opts...)...)
}

func TestConvertCell_Scalars(t *testing.T) {
	c := quietConverter()

	tests := []struct {
		name     string
		typeName string
		raw      any
		want     any
	}{
		{"bool true", "bool", "t", true},
		{"bool false", "bool", "f", false},
		{"bool other", "bool", "x", nil},
		{"int2", "int2", "7", int64(7)},
		{"int4", "int4", "42", int64(42)},
		{"int8 negative", "int8", "-9000000000", int64(-9000000000)},
		{"oid", "oid", "16384", int64(16384)},
		{"int padded", "int4", " 5 ", int64(5)},
		{"float4", "float4", "1.5", 1.5},
		{"float8", "float8", "-0.25", -0.25},
		{"numeric", "numeric", "12.345", 12.345},
		{"money plain", "money", "10.50", 10.5},
		{"date passthrough", "date", "2023-01-01", "2023-01-01"},
		{"time passthrough", "time", "10:00:00", "10:00:00"},
		{"abstime passthrough", "abstime", "whatever", "whatever"},
		{"reltime passthrough", "reltime", "1 day", "1 day"},
		{"timestamp", "timestamp", "2023-01-01 10:00:00", "2023-01-01T10:00:00"},
		{"timestamp already iso", "timestamp", "2023-01-01T10:00:00", "2023-01-01T10:00:00"},
		{"json object", "json", `{"a":1,"b":[true,null]}`, map[string]any{"a": float64(1), "b": []any{true, nil}}},
		{"jsonb scalar", "jsonb", `"hi"`, "hi"},
		{"jsonb array", "jsonb", `[1,2]`, []any{float64(1), float64(2)}},
		{"unknown type", "unknown_type_xyz", "hello", "hello"},
		{"text", "text", "hello world", "hello world"},
		{"empty type name", "", "hello", "hello"},
		{"non-string stays native", "int4", int64(3), int64(3)},
		{"nil", "int4", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ConvertCell(tt.typeName, tt.raw))
		})
	}
}

func TestConvertCell_NilForEveryType(t *testing.T) {
	c := quietConverter()
	for _, typeName := range append(TypeNames(), "_int4", "_text", "unknown") {
		assert.Nil(t, c.ConvertCell(typeName, nil), typeName)
	}
}

func TestConvertCell_MalformedDegradesToRaw(t *testing.T) {
	obs := newRecordingObserver()
	c := quietConverter(WithObserver(obs))

	tests := []struct {
		typeName string
		raw      string
	}{
		{"int4", "not_a_number"},
		{"int2", "1.5"},
		{"float8", "abc"},
		{"money", "$1,000.00"},
		{"json", "{broken"},
		{"timestamptz", "not a date"},
		{"int4range", "[1,2,3]"},
		{"daterange", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			assert.Equal(t, tt.raw, c.ConvertCell(tt.typeName, tt.raw))
		})
	}

	require.Len(t, obs.degraded, len(tests))
	first := obs.degraded[0]
	assert.Equal(t, "int4", first.Type)
	assert.Equal(t, "not_a_number", first.Raw)
	assert.Error(t, first.Err)
	assert.Contains(t, first.Error(), "not_a_number")
}

func TestConvertCell_Arrays(t *testing.T) {
	c := quietConverter()

	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, c.ConvertCell("_int4", "{1,2,3}"))
	assert.Equal(t, []any{}, c.ConvertCell("_int4", "{}"))
	assert.Equal(t, []any{"a", "b", "c"}, c.ConvertCell("_text", "{a,b,c}"))
	assert.Equal(t, []any{true, false, nil}, c.ConvertCell("_bool", "{t,f,x}"))
	assert.Equal(t, []any{1.5, 2.0}, c.ConvertCell("_float8", "{1.5,2}"))
	assert.Equal(t, []any{"2023-01-01T10:00:00"}, c.ConvertCell("_timestamp", "{2023-01-01 10:00:00}"))
}

func TestConvertCell_ArrayElementDegradesAlone(t *testing.T) {
	obs := newRecordingObserver()
	c := quietConverter(WithObserver(obs))

	got := c.ConvertCell("_int4", "{1,oops,3}")
	assert.Equal(t, []any{int64(1), "oops", int64(3)}, got)
	require.Len(t, obs.degraded, 1)
	assert.Equal(t, "int4", obs.degraded[0].Type)
}

// Commas inside elements are not understood; the literal is split on every comma.
func TestConvertCell_ArrayNaiveSplit(t *testing.T) {
	c := quietConverter()

	assert.Equal(t, []any{`"a`, `b"`, "c"}, c.ConvertCell("_text", `{"a,b",c}`))

	nested, ok := c.ConvertCell("__int4", "{{1,2},{3,4}}").([]any)
	require.True(t, ok)
	assert.Len(t, nested, 4, "nested arrays are split on their inner commas")
}

func TestConvertCell_DateTime(t *testing.T) {
	c := quietConverter()

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"utc short offset", "2023-01-01 10:00:00+00", time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"fractional minute offset", "2023-01-01 10:00:00.123456+05:30", time.Date(2023, 1, 1, 4, 30, 0, 123456000, time.UTC)},
		{"rfc3339", "2023-01-01T10:00:00Z", time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"no zone", "2023-01-01 10:00:00", time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"date only", "2023-01-01", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.ConvertCell("timestamptz", tt.raw).(time.Time)
			require.True(t, ok, "want time.Time for %q", tt.raw)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestConvertCell_TimeWithZone(t *testing.T) {
	c := quietConverter()

	got, ok := c.ConvertCell("timetz", "10:00:00+02").(time.Time)
	require.True(t, ok)
	assert.Equal(t, 10, got.Hour())
	_, offset := got.Zone()
	assert.Equal(t, 2*60*60, offset)
}

func TestConvertCell_Infinity(t *testing.T) {
	c := quietConverter()
	assert.Equal(t, "infinity", c.ConvertCell("timestamptz", "infinity"))
	assert.Equal(t, "-infinity", c.ConvertCell("timestamptz", "-infinity"))
}

func TestConvertCell_PassthroughIsIdempotent(t *testing.T) {
	c := quietConverter()
	for _, typeName := range []string{"unknown_type_xyz", "date", "time", "text"} {
		once := c.ConvertCell(typeName, "2023-01-01")
		assert.Equal(t, once, c.ConvertCell(typeName, once), typeName)
	}
}

func TestWithPreciseNumerics(t *testing.T) {
	c := quietConverter(WithPreciseNumerics())

	got, ok := c.ConvertCell("numeric", "12345678901234567890.123456789").(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("12345678901234567890.123456789").Equal(got))

	_, ok = c.ConvertCell("money", "3.50").(decimal.Decimal)
	assert.True(t, ok)

	// float types are unaffected
	assert.Equal(t, 1.5, c.ConvertCell("float8", "1.5"))
	// the default table is unaffected
	assert.Equal(t, 3.5, quietConverter().ConvertCell("money", "3.50"))
}

func TestWithConversion(t *testing.T) {
	upper := func(raw string) (any, error) {
		if raw == "" {
			return nil, errors.New("empty")
		}
		return "<" + raw + ">", nil
	}
	c := quietConverter(WithConversion("citext", upper), WithConversion("bool", nil))

	assert.Equal(t, "<abc>", c.ConvertCell("citext", "abc"))
	assert.Equal(t, []any{"<a>", "<b>"}, c.ConvertCell("_citext", "{a,b}"))
	assert.Equal(t, "", c.ConvertCell("citext", ""))
	assert.Equal(t, "t", c.ConvertCell("bool", "t"), "removed entries pass through")
}

func TestConverter_ObserverCountsConversions(t *testing.T) {
	obs := newRecordingObserver()
	c := quietConverter(WithObserver(obs))

	c.ConvertCell("int4", "1")
	c.ConvertCell("int4", "2")
	c.ConvertCell("_int4", "{1,2}")
	c.ConvertCell("int4", nil)

	assert.Equal(t, 4, obs.converted["int4"])
	assert.Equal(t, 1, obs.converted["_int4"])
	assert.Empty(t, obs.degraded)
}

func TestTypeNames(t *testing.T) {
	names := TypeNames()
	assert.Len(t, names, len(conversionTable))
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "timestamptz")
	assert.NotContains(t, names, "text")
}

func TestConvertCell_NonFiniteFloats(t *testing.T) {
	obs := newRecordingObserver()
	c := quietConverter(WithObserver(obs))

	for _, typeName := range []string{"float4", "float8", "numeric", "money"} {
		for _, raw := range []string{"NaN", "Infinity", "-Infinity"} {
			assert.Equal(t, raw, c.ConvertCell(typeName, raw), "%s %s", typeName, raw)
		}
	}
	assert.Equal(t, []any{1.5, "NaN"}, c.ConvertCell("_float8", "{1.5,NaN}"))
	assert.Empty(t, obs.degraded)
}

func TestConvertCell_YearsOutsideRFC3339(t *testing.T) {
	c := quietConverter()

	assert.Equal(t, "0044-03-15 10:00:00+00 BC", c.ConvertCell("timestamptz", "0044-03-15 10:00:00+00 BC"))

	got, ok := c.ConvertCell("timetz", "00:30:00+02").(time.Time)
	require.True(t, ok, "time of day stays in year zero of its own zone")
	assert.Equal(t, 30, got.Minute())

	got, ok = c.ConvertCell("timestamptz", "9999-12-31 23:59:59+00").(time.Time)
	require.True(t, ok)
	assert.Equal(t, 9999, got.Year())
}
