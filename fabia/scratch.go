package fabia

import (
	"fmt"

	"github.com/katalvlaran/biclust/matrix"
)

// scratchLimitBytes caps the total scratch arena per run. Requests beyond it
// fail up front with ErrScratchTooLarge instead of letting a mistyped k or
// worker count take the process down. Overridable from tests.
var scratchLimitBytes = int64(16) << 30

// workerState is the private accumulator set owned by exactly one E-step
// worker. Nothing here is shared: the driver hands each worker its own
// state and folds the sums back after the barrier.
type workerState struct {
	sum1    *matrix.Dense // n×k, Σ_j x_j·z_jᵗ over the worker's samples
	sum2    *matrix.Dense // k×k, Σ_j (z_j·z_jᵗ + diag correction)
	invPrec []float64     // k, per-factor precision correction (destroyed per sample)
	proj    *matrix.Dense // n×k, weighted projection working matrix

	err error // first per-sample failure, collected after the barrier
}

// scratch is the per-run arena: shared read-only transform state plus one
// workerState per pool worker. Allocated once per Run, reused across
// iterations, released with the run.
type scratch struct {
	lpsi     *matrix.Dense // n×k, loadings scaled by inverse noise
	lpsiDiag []float64     // k, diagonal of Lᵗ·diag(1/Psi)·L
	xx       []float64     // n, mean squared observation per variable
	workers  []workerState
}

// scratchBytes is the arena footprint for the given shape and worker count.
func scratchBytes(n, k, workers int) int64 {
	perWorker := int64(n*k+k*k+k+n*k) * 8
	shared := int64(n*k+k+n) * 8

	return shared + int64(workers)*perWorker
}

// newScratch allocates the arena. On a rejected (oversized) request it
// allocates nothing and returns ErrScratchTooLarge; the driver then zeroes
// the outputs and returns without iterating.
func newScratch(n, k, workers int) (*scratch, error) {
	if need := scratchBytes(n, k, workers); need > scratchLimitBytes {
		return nil, fmt.Errorf("%w: need %d bytes, limit %d", ErrScratchTooLarge, need, scratchLimitBytes)
	}

	sc := &scratch{
		lpsiDiag: make([]float64, k),
		xx:       make([]float64, n),
		workers:  make([]workerState, workers),
	}
	var err error
	if sc.lpsi, err = matrix.NewDense(n, k); err != nil {
		return nil, fmt.Errorf("fabia: scratch: %w", err)
	}
	for w := range sc.workers {
		ws := &sc.workers[w]
		if ws.sum1, err = matrix.NewDense(n, k); err != nil {
			return nil, fmt.Errorf("fabia: scratch: %w", err)
		}
		if ws.sum2, err = matrix.NewDense(k, k); err != nil {
			return nil, fmt.Errorf("fabia: scratch: %w", err)
		}
		if ws.proj, err = matrix.NewDense(n, k); err != nil {
			return nil, fmt.Errorf("fabia: scratch: %w", err)
		}
		ws.invPrec = make([]float64, k)
	}

	return sc, nil
}

// resetSums clears every worker's accumulators and seeds the moment-matrix
// regularizer. The eps seed goes on exactly one worker's sum2 diagonal so
// that after reduction the regularization is added once, independent of the
// worker count.
func (sc *scratch) resetSums(eps float64) {
	for w := range sc.workers {
		sc.workers[w].sum1.Zero()
		sc.workers[w].sum2.Zero()
	}

	k := sc.workers[0].sum2.Rows()
	s2 := sc.workers[0].sum2.RawData()
	for i := 0; i < k; i++ {
		s2[i*k+i] = eps
	}
}
