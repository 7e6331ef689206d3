package kernel

import (
	"fmt"
	"strings"
)

// Matrix is a dense rows x cols grid of expressions, row-major (spec.md's
// component table lists it only as a collaborator kind exercised by the
// glossary's cross-algorithm 3x3 determinant scenario; this kernel gives it
// the full algorithm set the teacher's Matrix type has, grounded on
// gosymbol.go's MatAdd/MatMul/Transpose/Trace/Det/Inverse).
type Matrix struct {
	envelope
	rows, cols int
	data       []Expr
}

// MatrixOf builds a Matrix from row-major data; len(data) must equal
// rows*cols.
func MatrixOf(rows, cols int, data []Expr) *Matrix {
	if len(data) != rows*cols {
		panic(WrapInvalidArg("MatrixOf: %d values for a %dx%d matrix", len(data), rows, cols))
	}
	m := &Matrix{rows: rows, cols: cols, data: append([]Expr(nil), data...)}
	m.kind = KindMatrix
	hashes := make([]uint64, len(data))
	for i, d := range data {
		hashes[i] = d.Hash()
	}
	m.hash = hashFold(fnv1a64("matrix"), uint64(rows), uint64(cols), hashFold(0, hashes...))
	m.setEvaluated()
	return m
}

// ZeroMatrix builds a rows x cols matrix of zeros.
func ZeroMatrix(rows, cols int) *Matrix {
	data := make([]Expr, rows*cols)
	for i := range data {
		data[i] = NumZero
	}
	return MatrixOf(rows, cols, data)
}

// IdentityMatrix builds the n x n identity.
func IdentityMatrix(n int) *Matrix {
	data := make([]Expr, n*n)
	for i := range data {
		data[i] = NumZero
	}
	for i := 0; i < n; i++ {
		data[i*n+i] = NumOne
	}
	return MatrixOf(n, n, data)
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) Get(i, j int) Expr {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(WrapRange("Matrix.Get(%d,%d): out of bounds for %dx%d", i, j, m.rows, m.cols))
	}
	return m.data[i*m.cols+j]
}

// Set returns a new Matrix with entry (i,j) replaced by v (matrices are
// immutable like every other node).
func (m *Matrix) Set(i, j int, v Expr) *Matrix {
	data := append([]Expr(nil), m.data...)
	data[i*m.cols+j] = v
	return MatrixOf(m.rows, m.cols, data)
}

func sameShape(a, b *Matrix) error {
	if a.rows != b.rows || a.cols != b.cols {
		return WrapDomain("matrix shape mismatch: %dx%d vs %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	return nil
}

// MatAdd returns a+b.
func (a *Matrix) MatAdd(b *Matrix) (*Matrix, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}
	data := make([]Expr, len(a.data))
	for i := range data {
		data[i] = AddOf(a.data[i], b.data[i])
	}
	return MatrixOf(a.rows, a.cols, data), nil
}

// MatSub returns a-b.
func (a *Matrix) MatSub(b *Matrix) (*Matrix, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}
	data := make([]Expr, len(a.data))
	for i := range data {
		data[i] = AddOf(a.data[i], MulOf(NumMinusOne, b.data[i]))
	}
	return MatrixOf(a.rows, a.cols, data), nil
}

// MatMul returns a*b (standard matrix product).
func (a *Matrix) MatMul(b *Matrix) (*Matrix, error) {
	if a.cols != b.rows {
		return nil, WrapDomain("matrix product shape mismatch: %dx%d * %dx%d", a.rows, a.cols, b.rows, b.cols)
	}
	data := make([]Expr, a.rows*b.cols)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < b.cols; j++ {
			terms := make([]Expr, a.cols)
			for k := 0; k < a.cols; k++ {
				terms[k] = MulOf(a.Get(i, k), b.Get(k, j))
			}
			data[i*b.cols+j] = AddOf(terms...)
		}
	}
	return MatrixOf(a.rows, b.cols, data), nil
}

// Scale returns c*m, elementwise.
func (m *Matrix) Scale(c Expr) *Matrix {
	data := make([]Expr, len(m.data))
	for i, v := range m.data {
		data[i] = MulOf(c, v)
	}
	return MatrixOf(m.rows, m.cols, data)
}

// Transpose returns m^T.
func (m *Matrix) Transpose() *Matrix {
	data := make([]Expr, len(m.data))
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			data[j*m.rows+i] = m.Get(i, j)
		}
	}
	return MatrixOf(m.cols, m.rows, data)
}

// Trace returns the sum of diagonal entries; error if m isn't square.
func (m *Matrix) Trace() (Expr, error) {
	if m.rows != m.cols {
		return nil, WrapDomain("Trace: matrix is %dx%d, not square", m.rows, m.cols)
	}
	terms := make([]Expr, m.rows)
	for i := 0; i < m.rows; i++ {
		terms[i] = m.Get(i, i)
	}
	return AddOf(terms...), nil
}

// Minor returns the (rows-1)x(cols-1) matrix obtained by deleting row i and
// column j.
func (m *Matrix) Minor(i, j int) *Matrix {
	data := make([]Expr, 0, (m.rows-1)*(m.cols-1))
	for r := 0; r < m.rows; r++ {
		if r == i {
			continue
		}
		for c := 0; c < m.cols; c++ {
			if c == j {
				continue
			}
			data = append(data, m.Get(r, c))
		}
	}
	return MatrixOf(m.rows-1, m.cols-1, data)
}

// Det computes the determinant by cofactor expansion along the first row.
// This is exponential in matrix size; spec.md's open question about which
// determinant algorithm to use (cofactor vs. fraction-free Bareiss
// elimination) is resolved here in favor of cofactor expansion uniformly,
// since this kernel makes no size guarantee.
func (m *Matrix) Det() (Expr, error) {
	if m.rows != m.cols {
		return nil, WrapDomain("Det: matrix is %dx%d, not square", m.rows, m.cols)
	}
	return detRec(m), nil
}

func detRec(m *Matrix) Expr {
	switch m.rows {
	case 0:
		return NumOne
	case 1:
		return m.Get(0, 0)
	case 2:
		return AddOf(MulOf(m.Get(0, 0), m.Get(1, 1)), MulOf(NumMinusOne, MulOf(m.Get(0, 1), m.Get(1, 0))))
	}
	terms := make([]Expr, m.cols)
	for j := 0; j < m.cols; j++ {
		sign := NumOne
		if j%2 == 1 {
			sign = NumMinusOne
		}
		terms[j] = MulOf(sign, m.Get(0, j), detRec(m.Minor(0, j)))
	}
	return AddOf(terms...)
}

// Adjugate returns the transpose of the cofactor matrix.
func (m *Matrix) Adjugate() (*Matrix, error) {
	if m.rows != m.cols {
		return nil, WrapDomain("Adjugate: matrix is %dx%d, not square", m.rows, m.cols)
	}
	data := make([]Expr, m.rows*m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			sign := NumOne
			if (i+j)%2 == 1 {
				sign = NumMinusOne
			}
			data[j*m.rows+i] = MulOf(sign, detRec(m.Minor(i, j)))
		}
	}
	return MatrixOf(m.rows, m.cols, data), nil
}

// Inverse returns m^-1 via the adjugate formula; returns ErrSingular if
// det(m) is the exact numeral zero (a symbolic determinant that merely
// looks nonzero is treated as invertible, since deciding "provably nonzero"
// symbolically is out of scope — spec.md's explicit non-goal of a
// transcendental-equivalence decision procedure applies here too).
func (m *Matrix) Inverse() (*Matrix, error) {
	det, err := m.Det()
	if err != nil {
		return nil, err
	}
	if n, ok := asNum(det); ok && n.IsZero() {
		return nil, wrap(ErrSingular, "Inverse: determinant is exactly zero")
	}
	adj, err := m.Adjugate()
	if err != nil {
		return nil, err
	}
	return adj.Scale(PowOf(det, NumMinusOne)), nil
}

func (m *Matrix) Nops() int { return len(m.data) }
func (m *Matrix) Op(i int) Expr {
	if i < 0 || i >= len(m.data) {
		panic(WrapRange("Op(%d): matrix has %d entries", i, len(m.data)))
	}
	return m.data[i]
}

func (m *Matrix) Has(sub Expr) bool { return hasDefault(m, sub) }

func (m *Matrix) Info(Predicate) bool { return false }

func (m *Matrix) Equal(other Expr) bool {
	o, ok := other.(*Matrix)
	if !ok || m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if !m.data[i].Equal(o.data[i]) {
			return false
		}
	}
	return true
}

func (m *Matrix) String() string {
	rows := make([]string, m.rows)
	for i := 0; i < m.rows; i++ {
		cells := make([]string, m.cols)
		for j := 0; j < m.cols; j++ {
			cells[j] = m.Get(i, j).String()
		}
		rows[i] = "[" + strings.Join(cells, ", ") + "]"
	}
	return "[" + strings.Join(rows, ", ") + "]"
}

func (m *Matrix) LaTeX() string {
	rows := make([]string, m.rows)
	for i := 0; i < m.rows; i++ {
		cells := make([]string, m.cols)
		for j := 0; j < m.cols; j++ {
			cells[j] = m.Get(i, j).LaTeX()
		}
		rows[i] = strings.Join(cells, " & ")
	}
	return fmt.Sprintf("\\begin{pmatrix}%s\\end{pmatrix}", strings.Join(rows, " \\\\ "))
}
