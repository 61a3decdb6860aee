package value

import (
	"fmt"
	"strings"
)

// Matrix is rectangular numeric data stored row-major. A Matrix with no
// rows is the empty matrix.
type Matrix struct {
	Rows [][]float64
}

// NewMatrix validates that every row has the same length.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) != len(rows[0]) {
			return nil, fmt.Errorf("ragged matrix: row %d has %d columns, row 1 has %d", i+1, len(rows[i]), len(rows[0]))
		}
	}
	return &Matrix{Rows: rows}, nil
}

// RowVector builds a 1xN matrix.
func RowVector(xs ...float64) *Matrix {
	return &Matrix{Rows: [][]float64{xs}}
}

// ColumnVector builds an Nx1 matrix.
func ColumnVector(xs ...float64) *Matrix {
	rows := make([][]float64, len(xs))
	for i, x := range xs {
		rows[i] = []float64{x}
	}
	return &Matrix{Rows: rows}
}

func (m *Matrix) Kind() Kind { return MatrixKind }

// Dims returns the row and column counts.
func (m *Matrix) Dims() (int, int) {
	if len(m.Rows) == 0 {
		return 0, 0
	}
	return len(m.Rows), len(m.Rows[0])
}

// IsVector reports whether the matrix is 1xN or Nx1.
func (m *Matrix) IsVector() bool {
	r, c := m.Dims()
	return r == 1 || c == 1
}

// Vector flattens a 1xN or Nx1 matrix.
func (m *Matrix) Vector() ([]float64, bool) {
	r, c := m.Dims()
	switch {
	case r == 1:
		return append([]float64(nil), m.Rows[0]...), true
	case c == 1:
		out := make([]float64, r)
		for i, row := range m.Rows {
			out[i] = row[0]
		}
		return out, true
	}
	return nil, false
}

// Copy returns a deep copy of the rows.
func (m *Matrix) Copy() [][]float64 {
	if m.Rows == nil {
		return nil
	}
	out := make([][]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func (m *Matrix) Inspect() string {
	r, c := m.Dims()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d [", r, c)
	for i, row := range m.Rows {
		if i > 0 {
			sb.WriteString("; ")
		}
		for j, x := range row {
			if j > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(formatFloat(x))
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Cell is a rectangular grid of values of any kind.
type Cell struct {
	Rows [][]Value
}

// NewCell validates that every row has the same length.
func NewCell(rows [][]Value) (*Cell, error) {
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) != len(rows[0]) {
			return nil, fmt.Errorf("ragged cell: row %d has %d columns, row 1 has %d", i+1, len(rows[i]), len(rows[0]))
		}
	}
	return &Cell{Rows: rows}, nil
}

func (c *Cell) Kind() Kind { return CellKind }

// Dims returns the row and column counts.
func (c *Cell) Dims() (int, int) {
	if len(c.Rows) == 0 {
		return 0, 0
	}
	return len(c.Rows), len(c.Rows[0])
}

// Copy returns a copy of the grid. Elements are shared; values are never
// mutated after construction.
func (c *Cell) Copy() [][]Value {
	if c.Rows == nil {
		return nil
	}
	out := make([][]Value, len(c.Rows))
	for i, row := range c.Rows {
		out[i] = append([]Value(nil), row...)
	}
	return out
}

func (c *Cell) Inspect() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, row := range c.Rows {
		if i > 0 {
			sb.WriteString("; ")
		}
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(v.Inspect())
		}
	}
	sb.WriteString("}")
	return sb.String()
}
