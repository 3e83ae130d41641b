// Package mat builds gonum dense matrices from the row and column slices used by the
// regression and forecasting packages.
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch = errors.New("column size mismatch")
	ErrRowMismatch = errors.New("row size mismatch")
)

// NewDenseFromArray creates a dense matrix from a slice of rows. Every row must have the same
// number of columns.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)
	if m == 0 {
		return nil, mat.ErrZeroLength
	}

	n := len(x[0])
	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
	}
	if n == 0 {
		return nil, mat.ErrZeroLength
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// NewDenseFromColumns creates a dense matrix where each input slice becomes one column.
// This is the natural layout of a data frame where features are stored per column.
func NewDenseFromColumns(cols ...[]float64) (*mat.Dense, error) {
	n := len(cols)
	if n == 0 {
		return nil, mat.ErrZeroLength
	}

	m := len(cols[0])
	for j, col := range cols {
		if len(col) != m {
			return nil, fmt.Errorf("column %d has %d rows, expected %d, %w", j, len(col), m, ErrRowMismatch)
		}
	}
	if m == 0 {
		return nil, mat.ErrZeroLength
	}

	x := mat.NewDense(m, n, nil)
	for j, col := range cols {
		x.SetCol(j, col)
	}
	return x, nil
}

// NewColumn wraps a slice as a single column matrix, the target layout expected by the
// linear models.
func NewColumn(y []float64) (*mat.Dense, error) {
	if len(y) == 0 {
		return nil, mat.ErrZeroLength
	}
	return mat.NewDense(len(y), 1, y), nil
}
