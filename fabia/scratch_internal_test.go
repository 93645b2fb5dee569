package fabia

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/biclust/matrix"
)

// TestResetSums_EpsSeededOnce pins down the reduction subtlety: the eps
// regularizer is seeded on exactly one worker's sum2 diagonal, so after the
// additive fold the reduced diagonal carries eps once — independent of the
// worker count.
func TestResetSums_EpsSeededOnce(t *testing.T) {
	const n, k, eps = 5, 3, 1e-3

	for _, workers := range []int{1, 2, 8} {
		sc, err := newScratch(n, k, workers)
		require.NoError(t, err, "workers=%d", workers)

		sc.resetSums(eps)

		reduced := sc.workers[0].sum2
		for w := 1; w < workers; w++ {
			floats.Add(reduced.RawData(), sc.workers[w].sum2.RawData())
		}

		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				got, _ := reduced.At(i, j)
				want := 0.0
				if i == j {
					want = eps
				}
				assert.Equal(t, want, got,
					"workers=%d: reduced sum2(%d,%d) must carry eps exactly once", workers, i, j)
			}
		}
	}
}

// TestEstimateScores_StatlessLeavesLapla verifies the finalization contract:
// without statistics accumulation the estimator fills z but must not touch
// the sample's sparsity vector.
func TestEstimateScores_StatlessLeavesLapla(t *testing.T) {
	const n, k = 4, 2
	sc, err := newScratch(n, k, 1)
	require.NoError(t, err)

	// A fixed transform: lpsi = identity-ish columns, unit diagonal.
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			require.NoError(t, sc.lpsi.Set(i, j, float64(i+j+1)))
		}
	}
	sc.lpsiDiag[0], sc.lpsiDiag[1] = 2, 3

	x := []float64{1, 0, -1, 2}
	z := make([]float64, k)
	lapla := []float64{0.7, 1.3}
	laplaBefore := append([]float64(nil), lapla...)

	err = estimateScores(
		vecOf(x), vecOf(z), vecOf(lapla),
		sc.lpsi, sc.lpsiDiag, &sc.workers[0],
		false, 0.5, 1e-3,
	)
	require.NoError(t, err)

	assert.Equal(t, laplaBefore, lapla, "stat-less estimation must not rewrite lapla")
	for j := 0; j < k; j++ {
		assert.NotZero(t, z[j], "posterior mean %d must be populated", j)
	}
}

// TestEstimateScores_WithStatsAccumulates checks the sufficient-statistics
// side effects against a direct computation for a single sample.
func TestEstimateScores_WithStatsAccumulates(t *testing.T) {
	const n, k = 3, 2
	sc, err := newScratch(n, k, 1)
	require.NoError(t, err)

	lpsi := [][]float64{{1, 0.5}, {0.2, 1}, {0.3, -0.4}}
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			require.NoError(t, sc.lpsi.Set(i, j, lpsi[i][j]))
		}
	}
	sc.lpsiDiag[0], sc.lpsiDiag[1] = 1.5, 0.9

	x := []float64{0.5, -1, 2}
	z := make([]float64, k)
	lapla := []float64{1, 1}
	const spz, lapFloor = 0.5, 1e-3

	ws := &sc.workers[0]
	require.NoError(t, estimateScores(
		vecOf(x), vecOf(z), vecOf(lapla),
		sc.lpsi, sc.lpsiDiag, ws, true, spz, lapFloor,
	))

	// Reference: inv[j] = 1/(diag + lapla + machineEps), z = Σ lpsi·inv·x.
	inv := make([]float64, k)
	wantZ := make([]float64, k)
	for j := 0; j < k; j++ {
		inv[j] = 1 / (sc.lpsiDiag[j] + 1 + machineEps)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			wantZ[j] += lpsi[i][j] * inv[j] * x[i]
		}
	}
	for j := 0; j < k; j++ {
		assert.InDelta(t, wantZ[j], z[j], 1e-12, "posterior mean %d", j)
	}

	// sum1 = x·zᵗ, sum2 = z·zᵗ + diag(inv).
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			got, _ := ws.sum1.At(i, j)
			assert.InDelta(t, x[i]*wantZ[j], got, 1e-12, "sum1(%d,%d)", i, j)
		}
	}
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			want := wantZ[a] * wantZ[b]
			if a == b {
				want += inv[a]
			}
			got, _ := ws.sum2.At(a, b)
			assert.InDelta(t, want, got, 1e-12, "sum2(%d,%d)", a, b)
		}
	}

	// lapla refresh uses the z²-augmented precision with the configured floor.
	for j := 0; j < k; j++ {
		aug := inv[j] + wantZ[j]*wantZ[j]
		want := math.Max(lapFloor, math.Pow(machineEps+aug, -spz))
		assert.InDelta(t, want, lapla[j], 1e-12, "lapla[%d]", j)
	}
}

// vecOf wraps a contiguous slice as a matrix.Vector.
func vecOf(s []float64) matrix.Vector {
	return matrix.Vector{N: len(s), Inc: 1, Data: s}
}
