package dataset

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	testData := map[string]struct {
		in      string
		names   []string
		numeric []string
		rows    int
		err     error
	}{
		"empty input": {
			in:  "",
			err: ErrEmptyCSV,
		},
		"header only": {
			in:      "a,b\n",
			names:   []string{"a", "b"},
			numeric: []string{"a", "b"},
		},
		"mixed columns": {
			in:      "Year,Region,Value\n2000,north,1.5\n2001,south,\n",
			names:   []string{"Year", "Region", "Value"},
			numeric: []string{"Year", "Value"},
			rows:    2,
		},
		"byte order mark": {
			in:      "\ufeffYear,Value\n2000,1\n",
			names:   []string{"Year", "Value"},
			numeric: []string{"Year", "Value"},
			rows:    1,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := ReadCSV(strings.NewReader(td.in))
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.names, f.Names())
			assert.Equal(t, td.numeric, f.NumericNames())
			assert.Equal(t, td.rows, f.Len())
		})
	}
}

func TestReadCSVMissingAsNaN(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("Year,Value\n2000,1.5\n2001,\n"))
	require.Nil(t, err)

	vals, err := f.Floats("Value")
	require.Nil(t, err)
	assert.Equal(t, 1.5, vals[0])
	assert.True(t, math.IsNaN(vals[1]))
}

func TestReadCSVRagged(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n3\n"))
	assert.NotNil(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	in := "Year,CO2_Concentration_ppm,Region\n2020,400.5,north\n2021,402,\"south, east\"\n"
	f, err := ReadCSV(strings.NewReader(in))
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, WriteCSV(&buf, f))
	assert.Equal(t, in, buf.String())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.Nil(t, os.WriteFile(path, []byte("Year,Value\n2000,1\n"), 0o600))

	f, err := LoadFile(path)
	require.Nil(t, err)
	assert.Equal(t, 1, f.Len())

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
