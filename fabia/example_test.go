package fabia_test

import (
	"fmt"

	"github.com/katalvlaran/biclust/fabia"
	"github.com/katalvlaran/biclust/matrix"
)

// ExampleRun fits a single factor to a tiny noiseless problem and reports
// how the run ended. With all-zero observations the parameter update
// degenerates immediately, so the run stops after one cycle with every
// parameter at its floor.
func ExampleRun() {
	const n, k, l = 3, 1, 4

	x, _ := matrix.NewDense(n, l) // all-zero observations
	psi := []float64{1, 1, 1}
	loadings, _ := matrix.NewDense(n, k)
	loadings.Fill(0.5)
	scores, _ := matrix.NewDense(k, l)
	lapla, _ := matrix.NewDense(k, l)
	lapla.Fill(1)

	opts := fabia.DefaultOptions()
	opts.Cycles = 50
	opts.Eps = 1e-3

	res, err := fabia.Run(x, psi, loadings, scores, lapla, &opts)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Println("cycles:", res.Iterations)
	fmt.Println("early:", res.EarlyConverged)
	fmt.Println("psi floor:", psi[0])
	// Output:
	// cycles: 1
	// early: true
	// psi floor: 0.001
}

// iterPrinter is a minimal Reporter that logs the iteration index.
type iterPrinter struct{}

func (iterPrinter) Update(s fabia.Snapshot) {
	fmt.Println("iteration", s.Iteration)
}

// ExampleRun_reporter attaches a Reporter that fires every cycle. The data
// carries a real factor (columns alternate sign), so the run uses its full
// budget.
func ExampleRun_reporter() {
	const n, k, l = 2, 1, 6

	x, _ := matrix.NewDense(n, l)
	for j := 0; j < l; j++ {
		sign := 1.0
		if j%2 == 1 {
			sign = -1.0
		}
		_ = x.Set(0, j, 1.5*sign)
		_ = x.Set(1, j, -0.5*sign)
	}
	psi := []float64{1, 1}
	loadings, _ := matrix.NewDense(n, k)
	loadings.Fill(1)
	scores, _ := matrix.NewDense(k, l)
	lapla, _ := matrix.NewDense(k, l)
	lapla.Fill(1)

	opts := fabia.DefaultOptions()
	opts.Cycles = 3
	opts.Alpha = 0 // keep all loadings live
	opts.ReportEvery = 1
	opts.Reporter = iterPrinter{}

	if _, err := fabia.Run(x, psi, loadings, scores, lapla, &opts); err != nil {
		fmt.Println("error:", err)

		return
	}
	// Output:
	// iteration 1
	// iteration 2
	// iteration 3
}
