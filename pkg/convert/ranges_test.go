package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeLiteral(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		raw     string
		want    []*string
		wantErr bool
	}{
		{raw: "[1,10)", want: []*string{str("1"), str("10")}},
		{raw: "(1,10]", want: []*string{str("1"), str("10")}},
		{raw: "[1, 10]", want: []*string{str("1"), str("10")}},
		{raw: "(,5)", want: []*string{nil, str("5")}},
		{raw: "[5,)", want: []*string{str("5"), nil}},
		{raw: "(,)", want: []*string{nil, nil}},
		{raw: "empty", want: []*string{}},
		{raw: "EMPTY", want: []*string{}},
		{raw: `["2020-01-01 00:00:00","2020-01-02 00:00:00")`, want: []*string{str("2020-01-01 00:00:00"), str("2020-01-02 00:00:00")}},
		{raw: `["a,b","c\"d")`, want: []*string{str("a,b"), str(`c"d`)}},
		{raw: `["x""y",)`, want: []*string{str(`x"y`), nil}},
		{raw: `["",z]`, want: []*string{str(""), str("z")}},
		{raw: "[1,2,3]", wantErr: true},
		{raw: "[1]", wantErr: true},
		{raw: "1,2", wantErr: true},
		{raw: `["1,2]`, wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseRangeLiteral(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertCell_Ranges(t *testing.T) {
	c := quietConverter()

	assert.Equal(t, []any{int64(1), int64(10)}, c.ConvertCell("int4range", "[1,10)"))
	assert.Equal(t, []any{nil, int64(5)}, c.ConvertCell("int8range", "(,5]"))
	assert.Equal(t, []any{int64(1), int64(10)}, c.ConvertCell("int4range", "[1, 10]"))
	assert.Equal(t, []any{}, c.ConvertCell("int4range", "empty"))

	got, ok := c.ConvertCell("daterange", "[2020-01-01,2020-02-01)").([]any)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.True(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got[0].(time.Time)))
	assert.True(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC).Equal(got[1].(time.Time)))

	got, ok = c.ConvertCell("tstzrange", `["2020-01-01 10:00:00+00","2020-01-02 10:00:00+00")`).([]any)
	require.True(t, ok)
	assert.True(t, time.Date(2020, 1, 2, 10, 0, 0, 0, time.UTC).Equal(got[1].(time.Time)))

	got, ok = c.ConvertCell("tsrange", `["2020-01-01 10:00:00",)`).([]any)
	require.True(t, ok)
	assert.Nil(t, got[1])

	// a bad bound degrades the whole range value
	assert.Equal(t, "[a,b)", c.ConvertCell("int4range", "[a,b)"))
}
