// SPDX-License-Identifier: MIT
// Package matrix: canonical validation helpers.
//
// Purpose:
//   - Provide a single source of truth for the guard checks shared by
//     downstream numeric packages (linalg, fabia).
//   - Return plain sentinel errors (no wrapping) so call sites can wrap
//     uniformly at their own boundary.
//
// All checks are pure, deterministic and allocate nothing.

package matrix

import "math"

// ValidateNotNil ensures the matrix reference is non-nil.
// Returns ErrNilMatrix if m == nil. Complexity: O(1).
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return ErrNilMatrix
	}

	return nil
}

// ValidateShape ensures m is non-nil and exactly rows×cols.
// Returns ErrNilMatrix or ErrDimensionMismatch. Complexity: O(1).
func ValidateShape(m *Dense, rows, cols int) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.rows != rows || m.cols != cols {
		return ErrDimensionMismatch
	}

	return nil
}

// ValidateVecLen ensures a slice operand has exactly n elements.
// Returns ErrDimensionMismatch. Complexity: O(1).
func ValidateVecLen(v []float64, n int) error {
	if len(v) != n {
		return ErrDimensionMismatch
	}

	return nil
}

// ValidateFinite scans the view and rejects NaN and ±Inf entries.
// Returns ErrNaNInf on the first offending entry. Complexity: O(rows*cols).
func ValidateFinite(m *Dense) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if v := m.at(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return ErrNaNInf
			}
		}
	}

	return nil
}

// ValidateFiniteVec scans a slice and rejects NaN and ±Inf entries.
// Returns ErrNaNInf. Complexity: O(len(v)).
func ValidateFiniteVec(v []float64) error {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ErrNaNInf
		}
	}

	return nil
}
