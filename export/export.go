// Package export encodes a dataset frame into the downloadable report formats.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNilFrame      = errors.New("nil frame")
)

const (
	// BaseName is the file name of every report without its extension
	BaseName = "global_warming_analysis"

	// SheetName is the single worksheet of the xlsx report
	SheetName = "GlobalWarmingData"
)

// Format is a report encoding
type Format string

const (
	FormatCSV     Format = "csv"
	FormatCSVGzip Format = "csv.gz"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// Formats lists every supported encoding in display order
var Formats = []Format{FormatCSV, FormatXLSX, FormatCSVGzip, FormatParquet}

// ParseFormat resolves a format from its extension, ignoring case and a leading dot
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q, %w", s, ErrUnknownFormat)
}

// FileName returns the download name of the report
func (f Format) FileName() string {
	return BaseName + "." + string(f)
}

// ContentType returns the MIME type served with the report
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatCSVGzip:
		return "application/gzip"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "application/octet-stream"
	}
}

// Write encodes the frame in the given format
func Write(w io.Writer, f *dataset.Frame, format Format) error {
	if f == nil {
		return ErrNilFrame
	}
	switch format {
	case FormatCSV:
		return dataset.WriteCSV(w, f)
	case FormatCSVGzip:
		return WriteCSVGzip(w, f)
	case FormatXLSX:
		return WriteXLSX(w, f)
	case FormatParquet:
		return WriteParquet(w, f)
	default:
		return fmt.Errorf("%q, %w", format, ErrUnknownFormat)
	}
}

// WriteCSVGzip writes the csv report through a gzip stream
func WriteCSVGzip(w io.Writer, f *dataset.Frame) error {
	gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
	if err != nil {
		return err
	}
	gz.Name = FormatCSV.FileName()
	if err := dataset.WriteCSV(gz, f); err != nil {
		gz.Close()
		return fmt.Errorf("unable to write gzip csv, %w", err)
	}
	return gz.Close()
}

// WriteXLSX writes the frame as a workbook with a single sheet. Missing numeric values are left
// as empty cells.
func WriteXLSX(w io.Writer, f *dataset.Frame) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), SheetName); err != nil {
		return err
	}

	names := f.Names()
	header := make([]any, len(names))
	for i, name := range names {
		header[i] = name
	}
	if err := book.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("unable to write xlsx header, %w", err)
	}

	cols := f.Columns()
	for r := 0; r < f.Len(); r++ {
		row := make([]any, len(cols))
		for c, col := range cols {
			switch col.Kind {
			case dataset.KindFloat:
				v := col.Floats[r]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					row[c] = nil
					continue
				}
				row[c] = v
			default:
				row[c] = col.Strings[r]
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("unable to write xlsx row %d, %w", r, err)
		}
	}
	return book.Write(w)
}

// Schema returns the parquet schema of the frame. Numeric columns are optional doubles and text
// columns optional strings.
func Schema(f *dataset.Frame) *parquet.Schema {
	group := make(parquet.Group, f.NumColumns())
	for _, col := range f.Columns() {
		switch col.Kind {
		case dataset.KindFloat:
			group[col.Name] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
		default:
			group[col.Name] = parquet.Optional(parquet.String())
		}
	}
	return parquet.NewSchema("warming", group)
}

// WriteParquet writes the frame as a single parquet file
func WriteParquet(w io.Writer, f *dataset.Frame) error {
	schema := Schema(f)

	// group fields are ordered by name, which fixes each leaf's column index
	cols := f.Columns()
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })

	rows := make([]parquet.Row, 0, f.Len())
	for r := 0; r < f.Len(); r++ {
		row := make(parquet.Row, len(cols))
		for c, col := range cols {
			row[c] = parquetValue(col, r).Level(0, definitionLevel(col, r), c)
		}
		rows = append(rows, row)
	}

	pw := parquet.NewWriter(w, schema)
	if _, err := pw.WriteRows(rows); err != nil {
		pw.Close()
		return fmt.Errorf("unable to write parquet rows, %w", err)
	}
	return pw.Close()
}

func isNull(col dataset.Column, r int) bool {
	if col.Kind != dataset.KindFloat {
		return false
	}
	v := col.Floats[r]
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func definitionLevel(col dataset.Column, r int) int {
	if isNull(col, r) {
		return 0
	}
	return 1
}

func parquetValue(col dataset.Column, r int) parquet.Value {
	if isNull(col, r) {
		return parquet.NullValue()
	}
	if col.Kind == dataset.KindFloat {
		return parquet.DoubleValue(col.Floats[r])
	}
	return parquet.ByteArrayValue([]byte(col.Strings[r]))
}
