// Package biclust is an in-memory toolkit for sparse factor analysis and
// biclustering of dense observation matrices.
//
// 🚀 What is biclust?
//
//	A library that estimates a sparse factor model X ≈ L·Z under a Laplace
//	prior, using a variational EM loop that is data-parallel across samples:
//		• Strided views: flat row-major matrices with cheap row/column views
//		• Linear algebra: Cholesky-based SPD inversion, gemm, rank-1 updates
//		• EM core: posterior scoring, sparse loading updates, noise estimation
//		• Recovery: automatic reinitialization of degenerate (all-zero) factors
//		• Progress: pluggable read-only reporter + verbose phase timings
//
// ✨ Why choose biclust?
//
//   - Predictable numerics – every floor (Psi ≥ eps, lapla ≥ lap) is enforced
//     at each write site, never left to the caller
//   - Explicit failure modes – degenerate matrices and oversized scratch
//     requests surface as sentinel errors, never as aborts
//   - Parallel by construction – per-worker accumulators, no locks, one
//     barrier per EM phase
//
// Under the hood, everything is organized under three subpackages:
//
//	fabia/  — the EM driver, posterior estimator and convergence control
//	linalg/ — gonum-backed SPD inversion, matrix multiply, rank-1 update
//	matrix/ — dense strided float64 matrices and views
//
// Quick sketch of the model:
//
//	    X (n×l) ≈ L (n×k) · Z (k×l),   Psi (n) residual noise,
//	    lapla (k×l) per-(factor,sample) shrinkage weights.
//
// Dive into fabia's package documentation for the full EM contract and
// tuning knobs.
//
//	go get github.com/katalvlaran/biclust/fabia
package biclust
