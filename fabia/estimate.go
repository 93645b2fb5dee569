package fabia

import (
	"math"

	"github.com/katalvlaran/biclust/linalg"
	"github.com/katalvlaran/biclust/matrix"
)

// estimateScores computes the posterior mean of the latent factors for one
// sample x, using the current transformed loadings. When withStats is true
// it additionally folds the sample's sufficient statistics into the worker's
// private sum1/sum2 accumulators and refreshes the sample's variational
// sparsity vector.
//
// Inputs:
//   - x        — the sample's observation vector (length n, possibly strided)
//   - z        — the sample's score vector to fill (length k)
//   - laplaCol — the sample's sparsity vector (length k); read, and rewritten
//     when withStats is true
//   - lpsi     — shared read-only n×k transformed loadings (row-major)
//   - lpsiDiag — shared read-only diagonal of Lᵗ·diag(1/Psi)·L (length k)
//   - ws       — the calling worker's private state; invPrec and proj are
//     destroyed by this call
//
// Mutates only z, laplaCol and ws. Concurrent calls are safe as long as each
// worker owns a distinct ws and distinct sample columns, which the driver
// guarantees by construction.
func estimateScores(
	x, z, laplaCol matrix.Vector,
	lpsi *matrix.Dense, lpsiDiag []float64,
	ws *workerState,
	withStats bool, spz, lapFloor float64,
) error {
	k := len(lpsiDiag)
	n := x.N
	inv := ws.invPrec

	// Per-factor precision correction; machineEps keeps the division finite
	// even when a factor's precision and sparsity both vanish.
	for i := 0; i < k; i++ {
		inv[i] = 1.0 / (lpsiDiag[i] + laplaCol.At(i) + machineEps)
		z.Set(i, 0)
	}

	// z = projᵗ·x with proj[i,j] = lpsi[i,j]·inv[j], accumulated row by row
	// so each lpsi row is read once.
	lp, ls := lpsi.RawData(), lpsi.RowStride()
	pj, ps := ws.proj.RawData(), ws.proj.RowStride()
	for i := 0; i < n; i++ {
		xi := x.At(i)
		lrow := lp[i*ls : i*ls+k]
		prow := pj[i*ps : i*ps+k]
		for j := 0; j < k; j++ {
			w := lrow[j] * inv[j]
			prow[j] = w
			z.Data[j*z.Inc] += w * xi
		}
	}

	if !withStats {
		return nil
	}

	// sum1 += x·zᵗ
	if err := linalg.Rank1Update(1, x, z, ws.sum1); err != nil {
		return err
	}

	// sum2 += z·zᵗ + diag(inv); then fold z² into inv and refresh the
	// sample's sparsity vector, floored at lapFloor.
	s2, ss := ws.sum2.RawData(), ws.sum2.RowStride()
	for i := 0; i < k; i++ {
		zi := z.At(i)
		row := s2[i*ss : i*ss+k]
		for j := 0; j < k; j++ {
			row[j] += zi * z.At(j)
		}
		row[i] += inv[i]
		inv[i] += zi * zi

		la := math.Pow(machineEps+inv[i], -spz)
		if la < lapFloor {
			la = lapFloor
		}
		laplaCol.Set(i, la)
	}

	return nil
}
