// Package matrix provides dense strided float64 matrices and views for
// numeric factor-model computations.
//
// 🚀 What is matrix?
//
//	A small, zero-dependency layer over a flat float64 buffer:
//	  • Dense — rows×cols view with explicit row/column strides
//	  • Vector — length/increment view into a row, column or diagonal
//	  • caller-owned storage: wrap existing buffers without copying
//	  • numeric policy: optional NaN/±Inf validation before kernels run
//
// Layout is a property of the view, not of the arithmetic: a row-major and a
// column-major matrix share every method, and T() transposes in O(1) by
// swapping strides. Hot loops that need contiguous memory can require
// IsRowMajor and fall back to strided Vector access otherwise.
//
// Errors follow the package sentinel set in errors.go; public methods return
// sentinels (matched with errors.Is) and never panic on user input.
package matrix
