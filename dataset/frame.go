// Package dataset holds the tabular data used across the dashboard. A Frame is an ordered set
// of equally sized named columns, each either numeric or text.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrColumnNotFound    = errors.New("column not found")
	ErrColumnExists      = errors.New("column already exists")
	ErrColumnLenMismatch = errors.New("column length does not match frame rows")
	ErrNotNumeric        = errors.New("column is not numeric")
	ErrEmptyColumnName   = errors.New("empty column name")
)

// Kind describes how values of a column are stored
type Kind int

const (
	KindFloat Kind = iota
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float64"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Column is a single named series of a Frame. Only one of Floats or Strings is populated
// depending on the Kind.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
}

// NewFloatColumn returns a numeric column referencing the given values
func NewFloatColumn(name string, vals []float64) Column {
	return Column{Name: name, Kind: KindFloat, Floats: vals}
}

// NewStringColumn returns a text column referencing the given values
func NewStringColumn(name string, vals []string) Column {
	return Column{Name: name, Kind: KindString, Strings: vals}
}

// Len returns the number of rows in the column
func (c Column) Len() int {
	if c.Kind == KindFloat {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Format returns the text representation of row i. Integral floats are printed without a
// decimal point so a Year column round trips as 2020 and not 2020.0. NaN prints empty.
func (c Column) Format(i int) string {
	if c.Kind == KindString {
		return c.Strings[i]
	}
	return FormatFloat(c.Floats[i])
}

// FormatFloat prints v in its shortest exact form, empty for NaN
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c Column) copy() Column {
	dst := Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case KindFloat:
		dst.Floats = make([]float64, len(c.Floats))
		copy(dst.Floats, c.Floats)
	case KindString:
		dst.Strings = make([]string, len(c.Strings))
		copy(dst.Strings, c.Strings)
	}
	return dst
}

// Frame is an ordered set of equally sized columns addressed by name
type Frame struct {
	cols  []Column
	index map[string]int
	rows  int
}

// NewFrame builds a frame out of the given columns. All columns must share the same length
// and have unique, non-empty names.
func NewFrame(cols ...Column) (*Frame, error) {
	f := &Frame{
		cols:  make([]Column, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		if err := f.add(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Frame) add(c Column) error {
	if c.Name == "" {
		return ErrEmptyColumnName
	}
	if _, exists := f.index[c.Name]; exists {
		return fmt.Errorf("%q, %w", c.Name, ErrColumnExists)
	}
	if len(f.cols) == 0 {
		f.rows = c.Len()
	} else if c.Len() != f.rows {
		return fmt.Errorf("column %q has %d rows but frame has %d, %w", c.Name, c.Len(), f.rows, ErrColumnLenMismatch)
	}
	f.index[c.Name] = len(f.cols)
	f.cols = append(f.cols, c)
	return nil
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return f.rows
}

// NumColumns returns the number of columns
func (f *Frame) NumColumns() int {
	if f == nil {
		return 0
	}
	return len(f.cols)
}

// Names returns the column names in order
func (f *Frame) Names() []string {
	if f == nil || len(f.cols) == 0 {
		return nil
	}
	names := make([]string, 0, len(f.cols))
	for _, c := range f.cols {
		names = append(names, c.Name)
	}
	return names
}

// NumericNames returns the names of all numeric columns in order
func (f *Frame) NumericNames() []string {
	if f == nil {
		return nil
	}
	var names []string
	for _, c := range f.cols {
		if c.Kind == KindFloat {
			names = append(names, c.Name)
		}
	}
	return names
}

// Columns returns the frame columns. The returned columns share storage with the frame and
// must be treated as read-only.
func (f *Frame) Columns() []Column {
	if f == nil {
		return nil
	}
	res := make([]Column, len(f.cols))
	copy(res, f.cols)
	return res
}

// Column looks up a column by name
func (f *Frame) Column(name string) (Column, bool) {
	if f == nil {
		return Column{}, false
	}
	idx, exists := f.index[name]
	if !exists {
		return Column{}, false
	}
	return f.cols[idx], true
}

// Floats returns the values of a numeric column. The slice shares storage with the frame.
func (f *Frame) Floats(name string) ([]float64, error) {
	c, exists := f.Column(name)
	if !exists {
		return nil, fmt.Errorf("%q, %w", name, ErrColumnNotFound)
	}
	if c.Kind != KindFloat {
		return nil, fmt.Errorf("%q has type %s, %w", name, c.Kind, ErrNotNumeric)
	}
	return c.Floats, nil
}

// AddColumn appends a column to the frame
func (f *Frame) AddColumn(c Column) error {
	return f.add(c)
}

// AddFloats appends a numeric column to the frame
func (f *Frame) AddFloats(name string, vals []float64) error {
	return f.add(NewFloatColumn(name, vals))
}

// Copy returns a deep copy of the frame. Mutating the copy never affects the receiver.
func (f *Frame) Copy() *Frame {
	dst := &Frame{
		cols:  make([]Column, 0, len(f.cols)),
		index: make(map[string]int, len(f.cols)),
		rows:  f.rows,
	}
	for i, c := range f.cols {
		dst.cols = append(dst.cols, c.copy())
		dst.index[c.Name] = i
	}
	return dst
}

// Head returns a copy of the first n rows. If n exceeds the frame length all rows are returned.
func (f *Frame) Head(n int) *Frame {
	if n < 0 {
		n = 0
	}
	if n > f.rows {
		n = f.rows
	}
	dst := &Frame{
		cols:  make([]Column, 0, len(f.cols)),
		index: make(map[string]int, len(f.cols)),
		rows:  n,
	}
	for i, c := range f.cols {
		hc := Column{Name: c.Name, Kind: c.Kind}
		switch c.Kind {
		case KindFloat:
			hc.Floats = append([]float64(nil), c.Floats[:n]...)
		case KindString:
			hc.Strings = append([]string(nil), c.Strings[:n]...)
		}
		dst.cols = append(dst.cols, hc)
		dst.index[c.Name] = i
	}
	return dst
}

// Row returns the text representation of every column at row i
func (f *Frame) Row(i int) []string {
	row := make([]string, len(f.cols))
	for j, c := range f.cols {
		row[j] = c.Format(i)
	}
	return row
}

// Records returns the frame as a slice of name to value maps, numeric columns as float64 (nil
// for NaN and infinities) and text columns as string. Used for JSON responses.
func (f *Frame) Records() []map[string]any {
	recs := make([]map[string]any, f.rows)
	for i := 0; i < f.rows; i++ {
		rec := make(map[string]any, len(f.cols))
		for _, c := range f.cols {
			switch c.Kind {
			case KindFloat:
				if math.IsNaN(c.Floats[i]) || math.IsInf(c.Floats[i], 0) {
					rec[c.Name] = nil
					continue
				}
				rec[c.Name] = c.Floats[i]
			case KindString:
				rec[c.Name] = c.Strings[i]
			}
		}
		recs[i] = rec
	}
	return recs
}

// Select returns a deep copy of the named columns in the given order
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		c, exists := f.Column(name)
		if !exists {
			return nil, fmt.Errorf("%q, %w", name, ErrColumnNotFound)
		}
		cols = append(cols, c.copy())
	}
	return NewFrame(cols...)
}
