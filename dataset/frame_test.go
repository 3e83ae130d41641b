package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrame(t *testing.T) {
	testData := map[string]struct {
		cols  []Column
		names []string
		rows  int
		err   error
	}{
		"empty": {},
		"numeric and text": {
			cols: []Column{
				NewFloatColumn("a", []float64{1, 2}),
				NewStringColumn("b", []string{"x", "y"}),
			},
			names: []string{"a", "b"},
			rows:  2,
		},
		"length mismatch": {
			cols: []Column{
				NewFloatColumn("a", []float64{1, 2}),
				NewFloatColumn("b", []float64{1}),
			},
			err: ErrColumnLenMismatch,
		},
		"duplicate name": {
			cols: []Column{
				NewFloatColumn("a", []float64{1}),
				NewFloatColumn("a", []float64{2}),
			},
			err: ErrColumnExists,
		},
		"empty name": {
			cols: []Column{NewFloatColumn("", []float64{1})},
			err:  ErrEmptyColumnName,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := NewFrame(td.cols...)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.names, f.Names())
			assert.Equal(t, td.rows, f.Len())
		})
	}
}

func TestFrameFloats(t *testing.T) {
	f, err := NewFrame(
		NewFloatColumn("a", []float64{1, 2}),
		NewStringColumn("b", []string{"x", "y"}),
	)
	require.Nil(t, err)

	vals, err := f.Floats("a")
	require.Nil(t, err)
	assert.Equal(t, []float64{1, 2}, vals)

	_, err = f.Floats("b")
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = f.Floats("c")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	assert.Equal(t, []string{"a"}, f.NumericNames())
}

func TestFrameCopyIsDeep(t *testing.T) {
	f, err := NewFrame(
		NewFloatColumn("a", []float64{1, 2}),
		NewStringColumn("b", []string{"x", "y"}),
	)
	require.Nil(t, err)

	cp := f.Copy()
	a, err := cp.Floats("a")
	require.Nil(t, err)
	a[0] = 100
	b, _ := cp.Column("b")
	b.Strings[0] = "z"
	require.Nil(t, cp.AddFloats("c", []float64{0, 0}))

	orig, err := f.Floats("a")
	require.Nil(t, err)
	assert.Equal(t, []float64{1, 2}, orig)
	ob, _ := f.Column("b")
	assert.Equal(t, []string{"x", "y"}, ob.Strings)
	assert.Equal(t, 2, f.NumColumns())
	assert.Equal(t, 3, cp.NumColumns())
}

func TestFrameHead(t *testing.T) {
	f, err := NewFrame(
		NewFloatColumn("a", []float64{1, 2, 3}),
		NewStringColumn("b", []string{"x", "y", "z"}),
	)
	require.Nil(t, err)

	testData := map[string]struct {
		n        int
		expected int
	}{
		"negative": {n: -1, expected: 0},
		"subset":   {n: 2, expected: 2},
		"exceeds":  {n: 10, expected: 3},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			h := f.Head(td.n)
			assert.Equal(t, td.expected, h.Len())
			assert.Equal(t, f.Names(), h.Names())
		})
	}
}

func TestFrameRecords(t *testing.T) {
	f, err := NewFrame(
		NewFloatColumn("Year", []float64{2020, math.NaN()}),
		NewStringColumn("Region", []string{"north", "south"}),
	)
	require.Nil(t, err)

	recs := f.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, 2020.0, recs[0]["Year"])
	assert.Nil(t, recs[1]["Year"])
	assert.Equal(t, "south", recs[1]["Region"])

	assert.Equal(t, []string{"2020", "north"}, f.Row(0))
	assert.Equal(t, []string{"", "south"}, f.Row(1))
}

func TestFrameRecordsInfinite(t *testing.T) {
	f, err := NewFrame(NewFloatColumn("a", []float64{math.Inf(1), math.Inf(-1), 4}))
	require.Nil(t, err)

	recs := f.Records()
	require.Len(t, recs, 3)
	assert.Nil(t, recs[0]["a"])
	assert.Nil(t, recs[1]["a"])
	assert.Equal(t, 4.0, recs[2]["a"])
}

func TestFormatFloat(t *testing.T) {
	testData := map[string]struct {
		in       float64
		expected string
	}{
		"integral": {in: 2020, expected: "2020"},
		"negative": {in: -3, expected: "-3"},
		"fraction": {in: 1.15, expected: "1.15"},
		"nan":      {in: math.NaN(), expected: ""},
		"huge":     {in: 1e20, expected: "100000000000000000000"},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, FormatFloat(td.in))
		})
	}
}

func TestFrameSelect(t *testing.T) {
	f, err := NewFrame(
		NewFloatColumn("a", []float64{1, 2}),
		NewStringColumn("b", []string{"x", "y"}),
		NewFloatColumn("c", []float64{3, 4}),
	)
	require.Nil(t, err)

	sel, err := f.Select("c", "a")
	require.Nil(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.Names())

	vals, err := sel.Floats("c")
	require.Nil(t, err)
	vals[0] = 10
	orig, _ := f.Floats("c")
	assert.Equal(t, 3.0, orig[0])

	_, err = f.Select("missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}
