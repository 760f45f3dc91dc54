package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNum bool
		want    float64
	}{
		{name: "integer", raw: "12", wantNum: true, want: 12},
		{name: "float", raw: "3.5", wantNum: true, want: 3.5},
		{name: "negative", raw: "-4.25", wantNum: true, want: -4.25},
		{name: "exponent", raw: "1e3", wantNum: true, want: 1000},
		{name: "leading whitespace", raw: "  7", wantNum: true, want: 7},
		{name: "numeric prefix", raw: "12abc", wantNum: true, want: 12},
		{name: "hex keeps float prefix", raw: "0x1A", wantNum: true, want: 0},
		{name: "text", raw: "Canada", wantNum: false},
		{name: "fraction without integer part", raw: ".5", wantNum: false},
		{name: "empty", raw: "", wantNum: false},
		{name: "sign only", raw: "-", wantNum: false},
		{name: "percent suffix", raw: "45%", wantNum: true, want: 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Coerce(tt.raw)
			assert.Equal(t, tt.wantNum, v.IsNumber())
			assert.Equal(t, tt.raw, v.String())
			if tt.wantNum {
				f, ok := v.Float()
				require.True(t, ok)
				assert.InDelta(t, tt.want, f, 1e-9)
			}
		})
	}
}

func TestCoerce_OutOfRange(t *testing.T) {
	v := Coerce("1e400")
	f, ok := v.Float()
	require.True(t, ok)
	assert.True(t, math.IsInf(f, 1))
}

func TestParseCSV(t *testing.T) {
	t.Run("header and rows", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("Country,Population\nCanada,38000000\n"))
		require.NoError(t, err)

		assert.Equal(t, []string{"Country", "Population"}, table.Columns)
		require.Equal(t, 1, table.Len())
		assert.Equal(t, "Canada", table.Cell(0, "Country").String())
		assert.False(t, table.Cell(0, "Population").IsNumber(), "parse keeps text")
	})

	t.Run("ragged rows are padded", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("a,b,c\n1,2\n3,4,5,6\n"))
		require.NoError(t, err)

		require.Equal(t, 2, table.Len())
		assert.Equal(t, "", table.Cell(0, "c").String())
		assert.Equal(t, "5", table.Cell(1, "c").String())
		assert.Len(t, table.Rows[1], 3)
	})

	t.Run("byte order mark is stripped", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("\uFEFFid,value\nx,1\n"))
		require.NoError(t, err)
		assert.Equal(t, "id", table.Column(0))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrNoHeader)
	})

	t.Run("header only", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("a,b\n"))
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
	})

	t.Run("malformed quoting", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("a,b\n\"x,1\n"))
		assert.Error(t, err)
	})
}

func TestCoerceTable(t *testing.T) {
	raw, err := ParseCSV(strings.NewReader("Country,Population\nCanada,38000000\n"))
	require.NoError(t, err)

	table := CoerceTable(raw)

	country := table.Cell(0, "Country")
	assert.False(t, country.IsNumber())
	assert.Equal(t, "Canada", country.String())

	population, ok := table.Cell(0, "Population").Float()
	require.True(t, ok)
	assert.InDelta(t, 38000000.0, population, 0)

	assert.False(t, raw.Cell(0, "Population").IsNumber(), "source table is untouched")
	assert.Nil(t, CoerceTable(nil))
}

func TestTable_NilSafe(t *testing.T) {
	var table *Table
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, "", table.Column(0))
	assert.Equal(t, "", table.Cell(0, "x").String())
}
