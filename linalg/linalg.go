package linalg

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"

	"github.com/katalvlaran/biclust/matrix"
)

// ErrNotPositiveDefinite is returned when a Cholesky step fails because the
// input matrix is not (numerically) positive-definite. Callers typically
// retry with a larger diagonal regularization.
var ErrNotPositiveDefinite = errors.New("linalg: matrix is not positive-definite")

// general adapts a Dense view to a blas64.General, flipping to the
// transposed view when that is the contiguous one. The returned flag
// reports whether the adapter transposed, so callers can XOR it into their
// BLAS transpose argument. Returns matrix.ErrNotContiguous when neither
// orientation is row-major contiguous.
func general(m *matrix.Dense) (blas64.General, bool, error) {
	if m.IsRowMajor() {
		return blas64.General{
			Rows: m.Rows(), Cols: m.Cols(),
			Stride: m.RowStride(), Data: m.RawData(),
		}, false, nil
	}
	if mt := m.T(); mt.IsRowMajor() {
		return blas64.General{
			Rows: mt.Rows(), Cols: mt.Cols(),
			Stride: mt.RowStride(), Data: mt.RawData(),
		}, true, nil
	}

	return blas64.General{}, false, matrix.ErrNotContiguous
}

// InvertSPD replaces the square matrix a with its inverse, computed via a
// lower Cholesky factorization. LAPACK populates only the lower triangle of
// the symmetric inverse; the upper triangle is mirrored afterwards so
// downstream consumers see the full symmetric matrix.
//
// Steps:
//  1. Validate: non-nil, square, contiguous row-major.
//  2. Potrf (factorize); failure ⇒ ErrNotPositiveDefinite.
//  3. Potri (invert from factor); failure ⇒ ErrNotPositiveDefinite.
//  4. Mirror the lower triangle into the upper.
//
// Complexity: O(n³) time, O(1) extra memory.
func InvertSPD(a *matrix.Dense) error {
	if err := matrix.ValidateNotNil(a); err != nil {
		return fmt.Errorf("linalg.InvertSPD: %w", err)
	}
	n := a.Rows()
	if a.Cols() != n {
		return fmt.Errorf("linalg.InvertSPD: %dx%d: %w", n, a.Cols(), matrix.ErrDimensionMismatch)
	}
	if !a.IsRowMajor() {
		return fmt.Errorf("linalg.InvertSPD: %w", matrix.ErrNotContiguous)
	}

	sym := blas64.Symmetric{
		Uplo: blas.Lower, N: n,
		Stride: a.RowStride(), Data: a.RawData(),
	}
	tri, ok := lapack64.Potrf(sym)
	if !ok {
		return fmt.Errorf("linalg.InvertSPD: factorize: %w", ErrNotPositiveDefinite)
	}
	if _, ok = lapack64.Potri(tri); !ok {
		return fmt.Errorf("linalg.InvertSPD: invert: %w", ErrNotPositiveDefinite)
	}

	// Potri fills only the lower triangle; mirror it.
	data, ld := a.RawData(), a.RowStride()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			data[i*ld+j] = data[j*ld+i]
		}
	}

	return nil
}

// Mul computes c = alpha·op(a)·op(b) + beta·c, where op is the identity or
// the transpose depending on transA/transB. The destination must be
// contiguous row-major; a and b may be strided transposed views.
//
// Shape rule: op(a) is m×k, op(b) is k×n, c is m×n; violations return
// matrix.ErrDimensionMismatch.
// Complexity: O(m·n·k).
func Mul(transA, transB bool, alpha float64, a, b *matrix.Dense, beta float64, c *matrix.Dense) error {
	for _, m := range []*matrix.Dense{a, b, c} {
		if err := matrix.ValidateNotNil(m); err != nil {
			return fmt.Errorf("linalg.Mul: %w", err)
		}
	}

	ga, aFlipped, err := general(a)
	if err != nil {
		return fmt.Errorf("linalg.Mul: a: %w", err)
	}
	gb, bFlipped, err := general(b)
	if err != nil {
		return fmt.Errorf("linalg.Mul: b: %w", err)
	}
	if !c.IsRowMajor() {
		return fmt.Errorf("linalg.Mul: c: %w", matrix.ErrNotContiguous)
	}
	gc := blas64.General{
		Rows: c.Rows(), Cols: c.Cols(),
		Stride: c.RowStride(), Data: c.RawData(),
	}

	// Effective transpose = requested XOR introduced by the view adapter.
	tA, tB := blas.NoTrans, blas.NoTrans
	if transA != aFlipped {
		tA = blas.Trans
	}
	if transB != bFlipped {
		tB = blas.Trans
	}

	// Logical operand shapes after op().
	am, ak := a.Rows(), a.Cols()
	if transA {
		am, ak = ak, am
	}
	bk, bn := b.Rows(), b.Cols()
	if transB {
		bk, bn = bn, bk
	}
	if ak != bk || c.Rows() != am || c.Cols() != bn {
		return fmt.Errorf("linalg.Mul: (%dx%d)·(%dx%d)->%dx%d: %w",
			am, ak, bk, bn, c.Rows(), c.Cols(), matrix.ErrDimensionMismatch)
	}

	blas64.Gemm(tA, tB, alpha, ga, gb, beta, gc)

	return nil
}

// Rank1Update performs a += alpha·x·yᵗ (BLAS ger). The destination must be
// contiguous row-major; x and y may be strided views (matrix columns).
// Complexity: O(len(x)·len(y)).
func Rank1Update(alpha float64, x, y matrix.Vector, a *matrix.Dense) error {
	if err := matrix.ValidateNotNil(a); err != nil {
		return fmt.Errorf("linalg.Rank1Update: %w", err)
	}
	if !a.IsRowMajor() {
		return fmt.Errorf("linalg.Rank1Update: %w", matrix.ErrNotContiguous)
	}
	if x.N != a.Rows() || y.N != a.Cols() {
		return fmt.Errorf("linalg.Rank1Update: x=%d y=%d a=%dx%d: %w",
			x.N, y.N, a.Rows(), a.Cols(), matrix.ErrDimensionMismatch)
	}

	blas64.Ger(alpha,
		blas64.Vector{N: x.N, Inc: x.Inc, Data: x.Data},
		blas64.Vector{N: y.N, Inc: y.Inc, Data: y.Data},
		blas64.General{
			Rows: a.Rows(), Cols: a.Cols(),
			Stride: a.RowStride(), Data: a.RawData(),
		})

	return nil
}
