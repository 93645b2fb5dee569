package fabia_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/biclust/fabia"
	"github.com/katalvlaran/biclust/matrix"
)

// benchmarkRun fits a k-factor model on an n×l synthetic problem with the
// given worker count, resetting the timer after setup and reinitializing the
// mutable parameters every iteration so each run starts from the same state.
func benchmarkRun(b *testing.B, n, k, l, workers, cycles int) {
	rng := rand.New(rand.NewSource(1))

	x, err := matrix.NewDense(n, l)
	if err != nil {
		b.Fatalf("observations: %v", err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < l; j++ {
			if err = x.Set(i, j, rng.NormFloat64()); err != nil {
				b.Fatalf("observations: %v", err)
			}
		}
	}

	init, _ := matrix.NewDense(n, k)
	for i := range init.RawData() {
		init.RawData()[i] = rng.NormFloat64()
	}

	psi := make([]float64, n)
	loadings, _ := matrix.NewDense(n, k)
	scores, _ := matrix.NewDense(k, l)
	lapla, _ := matrix.NewDense(k, l)

	opts := fabia.DefaultOptions()
	opts.Cycles = cycles
	opts.Workers = workers
	opts.Rand = rng

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		copy(loadings.RawData(), init.RawData())
		for j := range psi {
			psi[j] = 1
		}
		lapla.Fill(1)
		scores.Zero()
		b.StartTimer()

		if _, err = fabia.Run(x, psi, loadings, scores, lapla, &opts); err != nil {
			b.Fatalf("Run failed: %v", err)
		}
	}
}

// BenchmarkRun_SmallSerial: 50 variables, 5 factors, 200 samples, 1 worker.
func BenchmarkRun_SmallSerial(b *testing.B) {
	benchmarkRun(b, 50, 5, 200, 1, 10)
}

// BenchmarkRun_SmallParallel: the same problem fanned out over 4 workers.
func BenchmarkRun_SmallParallel(b *testing.B) {
	benchmarkRun(b, 50, 5, 200, 4, 10)
}

// BenchmarkRun_MediumSerial: 200 variables, 10 factors, 1000 samples.
func BenchmarkRun_MediumSerial(b *testing.B) {
	benchmarkRun(b, 200, 10, 1000, 1, 5)
}

// BenchmarkRun_MediumParallel: the medium problem over 8 workers.
func BenchmarkRun_MediumParallel(b *testing.B) {
	benchmarkRun(b, 200, 10, 1000, 8, 5)
}
