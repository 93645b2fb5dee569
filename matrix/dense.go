// SPDX-License-Identifier: MIT

package matrix

import "fmt"

// Dense is a rows×cols view over a flat float64 buffer with explicit strides.
// The element (i, j) lives at data[i*rStride + j*cStride]. A freshly
// constructed Dense is row-major (rStride == cols, cStride == 1); T() and
// NewColMajorFrom produce other stride combinations over the same storage.
//
// Dense never copies on view operations: Row, Col, Sub and T alias the
// receiver's buffer. Clone is the only method that allocates a new buffer.
type Dense struct {
	rows, cols       int
	rStride, cStride int
	data             []float64
}

// Vector is a strided view into matrix storage: element i lives at
// Data[i*Inc]. It is the exchange type between matrix views and numeric
// kernels (rows, columns, diagonals).
type Vector struct {
	N    int       // number of logical elements
	Inc  int       // distance between consecutive elements, >= 1
	Data []float64 // aliased storage, len >= (N-1)*Inc + 1
}

// At returns element i of the vector. No bounds check: Vector is a kernel
// exchange type, callers index within [0, N).
func (v Vector) At(i int) float64 { return v.Data[i*v.Inc] }

// Set assigns element i of the vector.
func (v Vector) Set(i int, x float64) { v.Data[i*v.Inc] = x }

// NewDense creates a zeroed row-major rows×cols matrix.
// Returns ErrBadShape when either dimension is not positive.
// Complexity: O(rows*cols) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("NewDense(%d,%d): %w", rows, cols, ErrBadShape)
	}

	return &Dense{
		rows: rows, cols: cols,
		rStride: cols, cStride: 1,
		data: make([]float64, rows*cols),
	}, nil
}

// NewDenseFrom wraps an existing buffer as a row-major rows×cols matrix
// without copying; the caller keeps ownership of data. Returns ErrBadShape
// for non-positive dimensions and ErrDimensionMismatch when the buffer is
// shorter than rows*cols.
// Complexity: O(1).
func NewDenseFrom(rows, cols int, data []float64) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("NewDenseFrom(%d,%d): %w", rows, cols, ErrBadShape)
	}
	if len(data) < rows*cols {
		return nil, fmt.Errorf("NewDenseFrom(%d,%d): len(data)=%d: %w",
			rows, cols, len(data), ErrDimensionMismatch)
	}

	return &Dense{
		rows: rows, cols: cols,
		rStride: cols, cStride: 1,
		data: data[:rows*cols],
	}, nil
}

// NewColMajorFrom wraps an existing column-major buffer as a rows×cols
// matrix without copying: element (i, j) is data[i + j*rows]. Same
// validation rules as NewDenseFrom.
// Complexity: O(1).
func NewColMajorFrom(rows, cols int, data []float64) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("NewColMajorFrom(%d,%d): %w", rows, cols, ErrBadShape)
	}
	if len(data) < rows*cols {
		return nil, fmt.Errorf("NewColMajorFrom(%d,%d): len(data)=%d: %w",
			rows, cols, len(data), ErrDimensionMismatch)
	}

	return &Dense{
		rows: rows, cols: cols,
		rStride: 1, cStride: rows,
		data: data[:rows*cols],
	}, nil
}

// Rows returns the number of rows. Complexity: O(1).
func (m *Dense) Rows() int { return m.rows }

// Cols returns the number of columns. Complexity: O(1).
func (m *Dense) Cols() int { return m.cols }

// RowStride returns the storage distance between vertically adjacent
// elements. Complexity: O(1).
func (m *Dense) RowStride() int { return m.rStride }

// ColStride returns the storage distance between horizontally adjacent
// elements. Complexity: O(1).
func (m *Dense) ColStride() int { return m.cStride }

// IsRowMajor reports whether the view is contiguous row-major, i.e. each row
// is a contiguous slice of length Cols. Kernels that hand rows to BLAS
// require this. Complexity: O(1).
func (m *Dense) IsRowMajor() bool { return m.cStride == 1 && m.rStride >= m.cols }

// RawData exposes the aliased backing buffer. Intended for kernels that have
// already checked IsRowMajor; mutating it mutates the matrix.
func (m *Dense) RawData() []float64 { return m.data }

// At returns the element at (i, j), or ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) At(i, j int) (float64, error) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return 0, fmt.Errorf("Dense.At(%d,%d): %w", i, j, ErrOutOfRange)
	}

	return m.data[i*m.rStride+j*m.cStride], nil
}

// Set assigns v at (i, j), or returns ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) Set(i, j int, v float64) error {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return fmt.Errorf("Dense.Set(%d,%d): %w", i, j, ErrOutOfRange)
	}
	m.data[i*m.rStride+j*m.cStride] = v

	return nil
}

// at reads (i, j) without bounds checks; for internal kernels whose loop
// bounds already guarantee validity.
func (m *Dense) at(i, j int) float64 { return m.data[i*m.rStride+j*m.cStride] }

// Row returns a Vector aliasing row i. Panics only on programmer error
// (index produced outside [0, Rows)).
// Complexity: O(1).
func (m *Dense) Row(i int) Vector {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("matrix: Dense.Row(%d) with %d rows", i, m.rows))
	}

	return Vector{N: m.cols, Inc: m.cStride, Data: m.data[i*m.rStride:]}
}

// Col returns a Vector aliasing column j. Panics only on programmer error.
// Complexity: O(1).
func (m *Dense) Col(j int) Vector {
	if j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: Dense.Col(%d) with %d cols", j, m.cols))
	}

	return Vector{N: m.rows, Inc: m.rStride, Data: m.data[j*m.cStride:]}
}

// Sub returns a rows×cols view starting at (i, j), sharing the receiver's
// storage. Returns ErrOutOfRange when the window does not fit.
// Complexity: O(1).
func (m *Dense) Sub(i, j, rows, cols int) (*Dense, error) {
	if i < 0 || j < 0 || rows <= 0 || cols <= 0 || i+rows > m.rows || j+cols > m.cols {
		return nil, fmt.Errorf("Dense.Sub(%d,%d,%d,%d) of %dx%d: %w",
			i, j, rows, cols, m.rows, m.cols, ErrOutOfRange)
	}

	// Truncate to the last element of the window so bulk operations on the
	// view cannot reach storage beyond it.
	off := i*m.rStride + j*m.cStride
	end := off + (rows-1)*m.rStride + (cols-1)*m.cStride + 1

	return &Dense{
		rows: rows, cols: cols,
		rStride: m.rStride, cStride: m.cStride,
		data: m.data[off:end],
	}, nil
}

// T returns the transposed view sharing the receiver's storage: strides are
// swapped, nothing is copied.
// Complexity: O(1).
func (m *Dense) T() *Dense {
	return &Dense{
		rows: m.cols, cols: m.rows,
		rStride: m.cStride, cStride: m.rStride,
		data: m.data,
	}
}

// Zero sets every element of the view to 0, honoring strides (aliased
// elements outside the view are untouched).
// Complexity: O(rows*cols).
func (m *Dense) Zero() {
	if m.IsRowMajor() && m.rStride == m.cols {
		clear(m.data)
		return
	}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			m.data[i*m.rStride+j*m.cStride] = 0
		}
	}
}

// Fill assigns v to every element of the view.
// Complexity: O(rows*cols).
func (m *Dense) Fill(v float64) {
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			m.data[i*m.rStride+j*m.cStride] = v
		}
	}
}

// Clone returns a compact row-major deep copy of the view.
// Complexity: O(rows*cols) time and memory.
func (m *Dense) Clone() *Dense {
	out := &Dense{
		rows: m.rows, cols: m.cols,
		rStride: m.cols, cStride: 1,
		data: make([]float64, m.rows*m.cols),
	}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[i*out.rStride+j] = m.at(i, j)
		}
	}

	return out
}

// String implements fmt.Stringer for debugging.
func (m *Dense) String() string {
	s := ""
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				s += " "
			}
			s += fmt.Sprintf("%g", m.at(i, j))
		}
		s += "\n"
	}

	return s
}
