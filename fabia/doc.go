// Package fabia estimates sparse factor models (biclusters) over dense
// observation matrices with a Laplace-prior variational EM loop, following
// the FABIA family of algorithms:
//
//	Hochreiter et al. (2010) 'FABIA: factor analysis for bicluster
//	acquisition.' Bioinformatics 26(12):1520–1527.
//
// 🚀 What does it compute?
//
//	Given n variables observed over l samples (X, n×l), Run estimates k
//	latent factors:
//	  • Loadings L (n×k) — sparse factor-to-variable weights
//	  • Scores Z (k×l)   — per-sample latent factor values
//	  • Noise Psi (n)    — per-variable residual variance
//	  • lapla (k×l)      — per-(factor,sample) variational shrinkage
//	refining all four until convergence or the cycle budget runs out.
//
// ✨ Key properties:
//   - Data-parallel E-step: samples fan out over a fixed worker pool, each
//     worker folding statistics into private accumulators (no locks, one
//     barrier per phase)
//   - Unconditional numeric floors: Psi ≥ Eps and lapla ≥ LaplaFloor hold
//     after every write
//   - Self-healing factors: all-zero loading columns are reinitialized from
//     a standard normal and reported, never silently kept dead
//   - Recoverable failures: a non-positive-definite moment matrix surfaces
//     as ErrDegenerateMatrix; an oversized scratch request zeroes the
//     outputs and returns ErrScratchTooLarge before any iteration
//
// ⚙️ Usage:
//
//	opts := fabia.DefaultOptions()
//	opts.Cycles = 100
//	opts.Workers = 4
//
//	res, err := fabia.Run(x, psi, loadings, scores, lapla, &opts)
//	if err != nil {
//	  // ErrBadOption, ErrScratchTooLarge, ErrDegenerateMatrix, or a
//	  // shape sentinel from the matrix package
//	}
//	fmt.Println("cycles:", res.Iterations, "early:", res.EarlyConverged)
//
// Reproducibility note: with Workers > 1 the floating-point reduction order
// differs from the sequential one, so results across worker counts agree
// only within numerical tolerance, never bit-exactly.
package fabia
