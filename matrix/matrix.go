// Package matrix implements NamedMatrix: a participant x statement vote
// store addressed by stable opaque ids rather than positional indices, with
// dense-numeric and subset views for the downstream numerical stages.
package matrix

import (
	"errors"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// ID is an opaque, stable identifier for a participant or a statement. The
// engine treats ids as strings on the wire but exposes an integer-coerced
// form wherever the value happens to parse, per the output renderings in
// the engine's external-interfaces contract.
type ID string

// AsInt reports the integer form of id and whether id parses as one.
func (id ID) AsInt() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (id ID) String() string { return string(id) }

// ErrInvariantBreach names a NamedMatrix invariant breach (duplicate row or
// column name). Per the error taxonomy this is fatal: callers should abort
// rather than attempt to continue with a possibly-corrupt matrix. No
// Matrix method returns it; the Matrix API reports no errors.
var ErrInvariantBreach = errors.New("matrix: invariant breach")

// Triple is one incoming (row, column, value) update.
type Triple struct {
	Row   ID
	Col   ID
	Value float64
}

// Matrix is a named, growable, sparse-by-default vote matrix. The zero
// value is not usable; construct with New.
type Matrix struct {
	rowIndex map[ID]int
	colIndex map[ID]int
	rows     []ID
	cols     []ID
	data     []float64 // row-major, len == cap(rows)*cap(cols) is not guaranteed; see stride
	stride   int        // number of columns the backing array is laid out for
}

// New returns an empty matrix.
func New() *Matrix {
	return &Matrix{
		rowIndex: make(map[ID]int),
		colIndex: make(map[ID]int),
	}
}

// Rows returns the row key-set in insertion order. The returned slice must
// not be mutated by the caller.
func (m *Matrix) Rows() []ID { return m.rows }

// Cols returns the column key-set in insertion order. The returned slice
// must not be mutated by the caller.
func (m *Matrix) Cols() []ID { return m.cols }

// NumRows is the number of distinct row names ever inserted.
func (m *Matrix) NumRows() int { return len(m.rows) }

// NumCols is the number of distinct column names ever inserted.
func (m *Matrix) NumCols() int { return len(m.cols) }

// At returns the value stored for (row, col), or NaN if either name is
// unknown or the cell was never set.
func (m *Matrix) At(row, col ID) float64 {
	r, ok := m.rowIndex[row]
	if !ok {
		return math.NaN()
	}
	c, ok := m.colIndex[col]
	if !ok {
		return math.NaN()
	}
	return m.data[r*m.stride+c]
}

// BatchUpdate inserts or overwrites the given cells, appending any new row
// or column names to the respective ordered key-sets. It never removes a
// row or column: the result always has the union of the prior key-sets and
// whatever new names appear in triples. Amortized O(len(triples)+growth).
func (m *Matrix) BatchUpdate(triples []Triple) {
	if len(triples) == 0 {
		return
	}
	// Pass 1: register every new row/column; the backing array grows once
	// per new name, not once per triple.
	for _, t := range triples {
		m.internRow(t.Row)
		m.internCol(t.Col)
	}
	// Pass 2: write values now that row/col indices are stable.
	for _, t := range triples {
		r := m.rowIndex[t.Row]
		c := m.colIndex[t.Col]
		m.data[r*m.stride+c] = t.Value
	}
}

func (m *Matrix) internRow(row ID) int {
	if idx, ok := m.rowIndex[row]; ok {
		return idx
	}
	idx := len(m.rows)
	m.rowIndex[row] = idx
	m.rows = append(m.rows, row)
	m.growRows()
	return idx
}

func (m *Matrix) internCol(col ID) int {
	if idx, ok := m.colIndex[col]; ok {
		return idx
	}
	idx := len(m.cols)
	m.colIndex[col] = idx
	m.cols = append(m.cols, col)
	m.growCols()
	return idx
}

// growRows ensures the backing array has room for all current rows at the
// current stride, preserving existing values and filling new cells NaN.
func (m *Matrix) growRows() {
	needed := len(m.rows) * m.stride
	if needed <= len(m.data) {
		return
	}
	resized := make([]float64, needed)
	copy(resized, m.data)
	for i := len(m.data); i < needed; i++ {
		resized[i] = math.NaN()
	}
	m.data = resized
}

// growCols widens the stride, which requires re-laying-out every existing
// row since the row-major offset of every cell after row 0 changes.
func (m *Matrix) growCols() {
	newStride := len(m.cols)
	if newStride == m.stride {
		return
	}
	numRows := len(m.rows)
	resized := make([]float64, numRows*newStride)
	for i := range resized {
		resized[i] = math.NaN()
	}
	for r := 0; r < numRows; r++ {
		copy(resized[r*newStride:r*newStride+m.stride], m.data[r*m.stride:(r+1)*m.stride])
	}
	m.data = resized
	m.stride = newStride
}

// RowSubset returns a new matrix containing only the named rows, in the
// given order, with the full column set. Names absent from m are skipped
// silently.
func (m *Matrix) RowSubset(names []ID) *Matrix {
	out := New()
	out.cols = append([]ID(nil), m.cols...)
	out.stride = len(out.cols)
	for i, c := range out.cols {
		out.colIndex[c] = i
	}
	for _, name := range names {
		r, ok := m.rowIndex[name]
		if !ok {
			continue
		}
		out.rowIndex[name] = len(out.rows)
		out.rows = append(out.rows, name)
		out.data = append(out.data, m.data[r*m.stride:(r+1)*m.stride]...)
	}
	return out
}

// ColSubset returns a new matrix containing only the named columns, in the
// given order, with the full row set. Names absent from m are skipped
// silently.
func (m *Matrix) ColSubset(names []ID) *Matrix {
	out := New()
	out.rows = append([]ID(nil), m.rows...)
	for i, r := range out.rows {
		out.rowIndex[r] = i
	}
	keep := make([]int, 0, len(names))
	keepNames := make([]ID, 0, len(names))
	for _, name := range names {
		c, ok := m.colIndex[name]
		if !ok {
			continue
		}
		keep = append(keep, c)
		keepNames = append(keepNames, name)
	}
	out.cols = keepNames
	out.stride = len(keepNames)
	out.data = make([]float64, len(out.rows)*out.stride)
	for i, name := range keepNames {
		out.colIndex[name] = i
	}
	for r := range out.rows {
		for j, c := range keep {
			out.data[r*out.stride+j] = m.data[r*m.stride+c]
		}
	}
	return out
}

// RowByName returns the dense row vector for name, MISSING rendered as NaN.
func (m *Matrix) RowByName(name ID) []float64 {
	r, ok := m.rowIndex[name]
	if !ok {
		return nil
	}
	out := make([]float64, m.stride)
	copy(out, m.data[r*m.stride:(r+1)*m.stride])
	return out
}

// ColByName returns the dense column vector for name, MISSING rendered as NaN.
func (m *Matrix) ColByName(name ID) []float64 {
	c, ok := m.colIndex[name]
	if !ok {
		return nil
	}
	out := make([]float64, len(m.rows))
	for r := range m.rows {
		out[r] = m.data[r*m.stride+c]
	}
	return out
}

// Dense materializes the full numeric matrix, |rows| x |cols|, MISSING as
// NaN, as a *mat.Dense so the pca stage can consume it directly. gonum has
// no zero-length dimension, so with zero rows or zero columns the result is
// an empty *mat.Dense whose Dims report 0 x 0.
func (m *Matrix) Dense() *mat.Dense {
	nr, nc := len(m.rows), len(m.cols)
	if nr == 0 || nc == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(nr, nc, nil)
	for r := 0; r < nr; r++ {
		for c := 0; c < nc; c++ {
			d.Set(r, c, m.data[r*m.stride+c])
		}
	}
	return d
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{
		rowIndex: make(map[ID]int, len(m.rowIndex)),
		colIndex: make(map[ID]int, len(m.colIndex)),
		rows:     append([]ID(nil), m.rows...),
		cols:     append([]ID(nil), m.cols...),
		data:     append([]float64(nil), m.data...),
		stride:   m.stride,
	}
	for k, v := range m.rowIndex {
		out.rowIndex[k] = v
	}
	for k, v := range m.colIndex {
		out.colIndex[k] = v
	}
	return out
}

// Triples flattens every non-missing cell back into (row, col, value)
// form, row-major, for serialization and round-tripping through
// BatchUpdate.
func (m *Matrix) Triples() []Triple {
	out := make([]Triple, 0, len(m.rows)*len(m.cols))
	for r, row := range m.rows {
		for c, col := range m.cols {
			v := m.data[r*m.stride+c]
			if math.IsNaN(v) {
				continue
			}
			out = append(out, Triple{Row: row, Col: col, Value: v})
		}
	}
	return out
}

// HasRow reports whether name is a known row.
func (m *Matrix) HasRow(name ID) bool { _, ok := m.rowIndex[name]; return ok }

// HasCol reports whether name is a known column.
func (m *Matrix) HasCol(name ID) bool { _, ok := m.colIndex[name]; return ok }
