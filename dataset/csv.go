package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var ErrEmptyCSV = errors.New("csv has no header row")

// ReadCSV parses a comma separated table with a header row. A column becomes numeric when every
// non-empty cell parses as a float; empty cells of a numeric column are stored as NaN. Any other
// column is kept as text.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCSV
		}
		return nil, fmt.Errorf("unable to read csv header, %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	raw := make([][]string, len(header))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read csv record, %w", err)
		}
		for j := range header {
			raw[j] = append(raw[j], strings.TrimSpace(rec[j]))
		}
	}

	cols := make([]Column, 0, len(header))
	for j, name := range header {
		name = strings.TrimSpace(name)
		if vals, ok := parseFloats(raw[j]); ok {
			cols = append(cols, NewFloatColumn(name, vals))
			continue
		}
		cols = append(cols, NewStringColumn(name, raw[j]))
	}
	return NewFrame(cols...)
}

func parseFloats(cells []string) ([]float64, bool) {
	vals := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			vals[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

// LoadFile reads a csv table from disk
func LoadFile(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open dataset, %w", err)
	}
	defer f.Close()

	frame, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s, %w", path, err)
	}
	return frame, nil
}

// WriteCSV writes the frame with a header row and no index column
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Names()); err != nil {
		return fmt.Errorf("unable to write csv header, %w", err)
	}
	for i := 0; i < f.Len(); i++ {
		if err := cw.Write(f.Row(i)); err != nil {
			return fmt.Errorf("unable to write csv row %d, %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
