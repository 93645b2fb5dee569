// Package linalg exposes the dense linear-algebra primitives consumed by the
// EM core, backed by gonum's BLAS/LAPACK implementations.
//
// The surface is deliberately tiny:
//   - InvertSPD — Cholesky factorization + inversion of a symmetric
//     positive-definite matrix, in place, with the computed triangle
//     mirrored so the full symmetric inverse is populated
//   - Mul       — general matrix multiply (gemm) over matrix.Dense views
//   - Rank1Update — A += alpha·x·yᵗ (ger) with strided vector operands
//
// A failed factorization is not fatal: InvertSPD returns
// ErrNotPositiveDefinite so callers can retry with stronger regularization
// instead of crashing.
//
// Operands are matrix.Dense views. A and B in Mul may be strided
// (transposed) views — the wrapper flips the BLAS transpose flag instead of
// copying — but destinations must be contiguous row-major.
package linalg
