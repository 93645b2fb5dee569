package fabia

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/biclust/linalg"
	"github.com/katalvlaran/biclust/matrix"
)

// Run fits the sparse factor model X ≈ L·Z with per-variable noise Psi and
// per-(factor,sample) variational sparsity lapla, using the approximate
// variational EM loop. All four model matrices are updated in place:
//
//   - x        — n×l observations, columns are samples; read-only
//   - psi      — length-n residual noise; floored at opts.Eps
//   - loadings — n×k factor loadings (L); must be contiguous row-major
//   - scores   — k×l factor scores (Z); recomputed from the converged model
//   - lapla    — k×l sparsity parameters; floored at the clamped LaplaFloor
//
// Iteration body (repeated up to opts.Cycles times):
//  1. Recompute the transformed loadings L/Psi and their diagonal precision.
//  2. Clear the per-worker accumulators; seed the eps regularizer once.
//  3. E-step: estimate every sample's posterior scores in parallel, each
//     worker folding sufficient statistics into its private accumulators.
//  4. Reduce the per-worker partials additively.
//  5. Invert the reduced moment matrix via Cholesky (ErrDegenerateMatrix on
//     failure — recoverable, retry with larger Eps).
//  6. Loadings update L = sum1·sum2⁻¹, then Laplace soft-thresholding.
//  7. Noise update Psi = max(Eps, XX − diag(L·sum1ᵗ)/l); when the maximal
//     update falls below Eps the run floors Psi/lapla and stops early.
//  8. Optional unit-RMS rescale of loading columns with lapla compensation.
//  9. Reinitialize any all-zero loading column from a standard normal.
//  10. Periodic snapshot to opts.Reporter.
//
// After the loop, a final statistics-free E-step recomputes the scores from
// the converged L/Psi (or zeroes them when the run degenerated).
//
// Returns a Result (iterations, early-convergence flag, factor resets,
// phase timings) and an error: ErrBadOption, shape sentinels from the matrix
// package, ErrScratchTooLarge (with loadings and scores zeroed), or
// ErrDegenerateMatrix.
func Run(x *matrix.Dense, psi []float64, loadings, scores, lapla *matrix.Dense, opts *Options) (Result, error) {
	var res Result

	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if err := o.normalize(); err != nil {
		return res, err
	}

	if err := matrix.ValidateNotNil(x); err != nil {
		return res, fmt.Errorf("fabia.Run: x: %w", err)
	}
	if err := matrix.ValidateNotNil(loadings); err != nil {
		return res, fmt.Errorf("fabia.Run: loadings: %w", err)
	}
	n, l := x.Rows(), x.Cols()
	k := loadings.Cols()
	if err := matrix.ValidateShape(loadings, n, k); err != nil {
		return res, fmt.Errorf("fabia.Run: loadings: %w", err)
	}
	if !loadings.IsRowMajor() {
		return res, fmt.Errorf("fabia.Run: loadings: %w", matrix.ErrNotContiguous)
	}
	if err := matrix.ValidateShape(scores, k, l); err != nil {
		return res, fmt.Errorf("fabia.Run: scores: %w", err)
	}
	if err := matrix.ValidateShape(lapla, k, l); err != nil {
		return res, fmt.Errorf("fabia.Run: lapla: %w", err)
	}
	if err := matrix.ValidateVecLen(psi, n); err != nil {
		return res, fmt.Errorf("fabia.Run: psi: %w", err)
	}

	sc, err := newScratch(n, k, o.Workers)
	if err != nil {
		// Graceful degradation: no iteration is attempted, outputs are zeroed.
		loadings.Zero()
		scores.Zero()

		return res, err
	}

	normal := rand.NormFloat64
	if o.Rand != nil {
		normal = o.Rand.NormFloat64
	}

	// Mean squared observation per variable, fixed for the whole run.
	for i := 0; i < n; i++ {
		row := x.Row(i)
		var s float64
		for j := 0; j < l; j++ {
			v := row.At(j)
			s += v * v
		}
		sc.xx[i] = s / float64(l)
	}

	start := time.Now()
	early := false

	for iter := 1; iter <= o.Cycles; iter++ {
		sc.transform(loadings, psi)
		sc.resetSums(o.Eps)

		// E-step, data-parallel over samples.
		mark := time.Now()
		if err = sc.runEStep(x, scores, lapla, true, o.SparseZ, o.LaplaFloor); err != nil {
			return res, fmt.Errorf("fabia.Run: e-step: %w", err)
		}
		res.Timings.EStep += time.Since(mark)

		// Reduce per-worker partials into worker 0.
		sum1, sum2 := sc.workers[0].sum1, sc.workers[0].sum2
		for w := 1; w < len(sc.workers); w++ {
			floats.Add(sum1.RawData(), sc.workers[w].sum1.RawData())
			floats.Add(sum2.RawData(), sc.workers[w].sum2.RawData())
		}

		mark = time.Now()
		if err = linalg.InvertSPD(sum2); err != nil {
			if errors.Is(err, linalg.ErrNotPositiveDefinite) {
				return res, fmt.Errorf("%w (iteration %d)", ErrDegenerateMatrix, iter)
			}

			return res, fmt.Errorf("fabia.Run: %w", err)
		}
		res.Timings.Cholesky += time.Since(mark)

		mark = time.Now()
		if err = linalg.Mul(false, false, 1, sum1, sum2, 0, loadings); err != nil {
			return res, fmt.Errorf("fabia.Run: loadings update: %w", err)
		}

		sparsifyLoadings(loadings, psi, o.Alpha, o.SparseL, o.NonNegative)

		// Noise update; t tracks the maximal parameter update magnitude.
		t := updateNoise(loadings, sum1, psi, sc.xx, o.Eps, l)

		res.Iterations = iter

		if t < o.Eps {
			// Degenerated: force every floor and stop early.
			for i := range psi {
				psi[i] = o.Eps
			}
			lapla.Fill(o.LaplaFloor)
			if o.Verbose {
				fmt.Printf("fabia: last update %g is below eps %g, stopping after %d cycles\n", t, o.Eps, iter)
			}
			res.EarlyConverged = true
			early = true
			res.Timings.Remainder += time.Since(mark)

			break
		}

		if o.Scale {
			rescale(loadings, lapla, o.SparseZ)
		}

		if nreset := recoverDeadFactors(loadings, lapla, normal); nreset > 0 {
			res.FactorResets += nreset
			if o.Verbose {
				fmt.Printf("fabia: iteration %d: reset %d factors\n", iter, nreset)
			}
		}

		if o.ReportEvery > 0 && iter%o.ReportEvery == 0 && o.Reporter != nil {
			o.Reporter.Update(Snapshot{
				Iteration: iter,
				Elapsed:   time.Since(start),
				Factors:   k, Variables: n, Samples: l,
				Loadings: loadings, Scores: scores, Lapla: lapla, Psi: psi,
			})
		}
		res.Timings.Remainder += time.Since(mark)
	}

	// Finalization: recompute the scores from the converged model, unless the
	// run degenerated (then the scores carry no information and are zeroed).
	if early || o.Cycles == 0 {
		scores.Zero()
	} else {
		sc.transform(loadings, psi)
		mark := time.Now()
		if err = sc.runEStep(x, scores, lapla, false, o.SparseZ, o.LaplaFloor); err != nil {
			return res, fmt.Errorf("fabia.Run: final e-step: %w", err)
		}
		res.Timings.EStep += time.Since(mark)
	}

	res.Timings.Total = time.Since(start)
	if o.Verbose {
		printTimings(res.Timings)
	}

	return res, nil
}

// transform recomputes lpsi[i,j] = L[i,j]/Psi[i] and the diagonal precision
// lpsiDiag[j] = Σ_i L[i,j]·lpsi[i,j]. Runs once per iteration before the
// parallel phase; lpsi/lpsiDiag are read-only until the next call.
func (sc *scratch) transform(loadings *matrix.Dense, psi []float64) {
	n, k := loadings.Rows(), loadings.Cols()
	ld, ls := loadings.RawData(), loadings.RowStride()
	lp, ps := sc.lpsi.RawData(), sc.lpsi.RowStride()

	clear(sc.lpsiDiag)
	for i := 0; i < n; i++ {
		invPsi := 1.0 / psi[i]
		lrow := ld[i*ls : i*ls+k]
		prow := lp[i*ps : i*ps+k]
		for j := 0; j < k; j++ {
			v := lrow[j] * invPsi
			prow[j] = v
			sc.lpsiDiag[j] += lrow[j] * v
		}
	}
}

// runEStep fans the posterior estimator out across all samples. Samples are
// partitioned into contiguous ranges, one range per worker; every worker
// writes only its own accumulators and its own sample columns, so the phase
// needs no locks — just the WaitGroup barrier at the end.
func (sc *scratch) runEStep(x, scores, lapla *matrix.Dense, withStats bool, spz, lapFloor float64) error {
	l := x.Cols()
	workers := len(sc.workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo, hi := w*l/workers, (w+1)*l/workers
		if lo == hi {
			continue
		}
		ws := &sc.workers[w]
		ws.err = nil

		wg.Add(1)
		go func(ws *workerState, lo, hi int) {
			defer wg.Done()
			for j := lo; j < hi; j++ {
				if err := estimateScores(
					x.Col(j), scores.Col(j), lapla.Col(j),
					sc.lpsi, sc.lpsiDiag, ws, withStats, spz, lapFloor,
				); err != nil {
					ws.err = err

					return
				}
			}
		}(ws, lo, hi)
	}
	wg.Wait()

	for w := range sc.workers {
		if err := sc.workers[w].err; err != nil {
			return err
		}
	}

	return nil
}

// sparsifyLoadings applies Laplace soft-thresholding in place: entries whose
// magnitude is below their threshold t = |Psi[i]·alpha·(machineEps+|s|)^-spl|
// collapse to zero, the rest shrink toward zero by t. With nonNegative set,
// negative entries are zeroed before thresholding.
func sparsifyLoadings(loadings *matrix.Dense, psi []float64, alpha, spl float64, nonNegative bool) {
	n, k := loadings.Rows(), loadings.Cols()
	ld, ls := loadings.RawData(), loadings.RowStride()

	for i := 0; i < n; i++ {
		row := ld[i*ls : i*ls+k]
		for j := 0; j < k; j++ {
			s := row[j]
			if nonNegative && s < 0 {
				row[j] = 0
				continue
			}
			sgn := 1.0
			if s < 0 {
				sgn = -1.0
			}
			t := math.Abs(psi[i] * alpha * math.Pow(machineEps+math.Abs(s), -spl))
			if math.Abs(s) > t {
				row[j] = s - sgn*t
			} else {
				row[j] = 0
			}
		}
	}
}

// updateNoise recomputes Psi[i] = max(eps, XX[i] − (Σ_j L[i,j]·sum1[i,j])/l)
// and returns the maximal |Σ_j L[i,j]·sum1[i,j]| across variables — the
// convergence statistic the driver tests against eps.
func updateNoise(loadings, sum1 *matrix.Dense, psi, xx []float64, eps float64, l int) float64 {
	n, k := loadings.Rows(), loadings.Cols()
	ld, ls := loadings.RawData(), loadings.RowStride()
	sd, ss := sum1.RawData(), sum1.RowStride()

	var t float64
	for i := 0; i < n; i++ {
		lrow := ld[i*ls : i*ls+k]
		srow := sd[i*ss : i*ss+k]
		var s float64
		for j := 0; j < k; j++ {
			s += lrow[j] * srow[j]
		}
		if a := math.Abs(s); a > t {
			t = a
		}
		p := xx[i] - s/float64(l)
		if p < eps {
			p = eps
		}
		psi[i] = p
	}

	return t
}

// rescale normalizes each loading column to unit RMS and applies the
// compensating power to that factor's lapla row, keeping the score/sparsity
// relationship consistent with the rescaled loadings.
func rescale(loadings, lapla *matrix.Dense, spz float64) {
	n, k := loadings.Rows(), loadings.Cols()
	ld, ls := loadings.RawData(), loadings.RowStride()

	for j := 0; j < k; j++ {
		var ss float64
		for i := 0; i < n; i++ {
			v := ld[i*ls+j]
			ss += v * v
		}
		s := 1.0 / (math.Sqrt(ss/float64(n)) + machineEps)
		for i := 0; i < n; i++ {
			ld[i*ls+j] *= s
		}

		comp := math.Pow(s*s, -spz)
		row := lapla.Row(j)
		for c := 0; c < row.N; c++ {
			row.Set(c, row.At(c)*comp)
		}
	}
}

// recoverDeadFactors reinitializes every identically-zero loading column
// from a standard normal and resets the factor's lapla row to 1, so the next
// E-step sees a live factor again. Returns the number of columns repaired.
func recoverDeadFactors(loadings, lapla *matrix.Dense, normal func() float64) int {
	n, k := loadings.Rows(), loadings.Cols()
	ld, ls := loadings.RawData(), loadings.RowStride()

	nreset := 0
	for j := 0; j < k; j++ {
		dead := true
		for i := 0; i < n; i++ {
			if ld[i*ls+j] != 0 {
				dead = false
				break
			}
		}
		if !dead {
			continue
		}

		nreset++
		for i := 0; i < n; i++ {
			ld[i*ls+j] = normal()
		}
		row := lapla.Row(j)
		for c := 0; c < row.N; c++ {
			row.Set(c, 1)
		}
	}

	return nreset
}

// printTimings emits the terminal phase summary in the style of the verbose
// progress output.
func printTimings(pt PhaseTimings) {
	tot := pt.Total.Seconds()
	if tot <= 0 {
		tot = 1
	}
	fmt.Printf("fabia: e-step %6.2fs (%.3f)\n", pt.EStep.Seconds(), pt.EStep.Seconds()/tot)
	fmt.Printf("fabia: chol   %6.2fs (%.3f)\n", pt.Cholesky.Seconds(), pt.Cholesky.Seconds()/tot)
	fmt.Printf("fabia: rest   %6.2fs (%.3f)\n", pt.Remainder.Seconds(), pt.Remainder.Seconds()/tot)
	fmt.Printf("fabia: total  %6.2fs\n", pt.Total.Seconds())
}
