package fabia

import (
	"errors"
	"math/rand"
	"runtime"
	"time"

	"github.com/katalvlaran/biclust/matrix"
)

// Sentinel errors. Tests and callers match them with errors.Is; Run never
// panics on user-triggered conditions.
var (
	// ErrBadOption is returned when an Options field is outside its documented
	// domain (Eps <= 0, negative sparseness, negative cycle budget, ...).
	ErrBadOption = errors.New("fabia: invalid option value")

	// ErrDegenerateMatrix is returned when the reduced moment matrix cannot be
	// Cholesky-factorized. Retrying with a larger Eps (stronger diagonal
	// regularization) is the usual remedy.
	ErrDegenerateMatrix = errors.New("fabia: moment matrix is not positive-definite")

	// ErrScratchTooLarge is returned when the per-run scratch arena would
	// exceed the configured limit; the output loadings and scores are zeroed
	// and no EM iteration is attempted.
	ErrScratchTooLarge = errors.New("fabia: scratch arena exceeds limit")
)

// machineEps is the small numerical floor used inside the EM kernels. It is
// independent of the caller-supplied Eps, which controls regularization and
// convergence instead.
const machineEps = 1e-7

// Documented defaults for Options; DefaultOptions is the single source of
// truth that mirrors them.
const (
	// DefaultCycles is the EM cycle budget.
	DefaultCycles = 500

	// DefaultAlpha weights the Laplace sparseness penalty on the loadings.
	DefaultAlpha = 0.01

	// DefaultEps is the regularization epsilon: noise floor, moment-matrix
	// diagonal seed and convergence threshold.
	DefaultEps = 1e-3

	// DefaultSparseZ tunes extra sparseness of the factor scores.
	DefaultSparseZ = 0.5

	// DefaultSparseL tunes extra sparseness of the loadings (0 = plain
	// soft-thresholding).
	DefaultSparseL = 0.0

	// DefaultLaplaFloor is the minimal value of the variational sparsity
	// parameter (clamped up to Eps on entry).
	DefaultLaplaFloor = 1.0
)

// Options configures a Run. The zero value is NOT usable; start from
// DefaultOptions and override fields.
//
// Fields:
//   - Cycles       — EM cycle budget (> 0; the loop may stop earlier when the
//     parameter update degenerates below Eps).
//   - Alpha        — Laplace prior weight for the loading sparsification.
//   - Eps          — regularization epsilon: floors Psi, seeds the moment
//     matrix diagonal, and acts as the convergence threshold.
//   - SparseL      — extra-sparseness exponent for the loadings (spl ≥ 0).
//   - SparseZ      — extra-sparseness exponent for the scores (spz ≥ 0).
//   - Scale        — rescale each loading column to unit RMS every cycle,
//     compensating lapla so the score distribution stays consistent.
//   - NonNegative  — experimental: zero negative loadings before
//     soft-thresholding, yielding non-negative factors.
//   - LaplaFloor   — minimal variational sparsity value (lap); values below
//     Eps are clamped up to Eps at entry.
//   - Workers      — worker goroutines for the per-sample E-step fan-out;
//     0 means runtime.GOMAXPROCS(0).
//   - ReportEvery  — invoke Reporter every N iterations (0 disables).
//   - Reporter     — read-only observer of iteration snapshots.
//   - Verbose      — print textual progress (early bailout, factor resets,
//     phase timing summary) to stdout.
//   - Rand         — standard-normal source for reinitializing dead factors;
//     nil uses the global math/rand source.
type Options struct {
	Cycles      int
	Alpha       float64
	Eps         float64
	SparseL     float64
	SparseZ     float64
	Scale       bool
	NonNegative bool
	LaplaFloor  float64
	Workers     int
	ReportEvery int
	Reporter    Reporter
	Verbose     bool
	Rand        *rand.Rand
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Cycles:     DefaultCycles,
		Alpha:      DefaultAlpha,
		Eps:        DefaultEps,
		SparseL:    DefaultSparseL,
		SparseZ:    DefaultSparseZ,
		LaplaFloor: DefaultLaplaFloor,
	}
}

// normalize validates the option domain and resolves derived values
// (lap clamping, worker default). Returns ErrBadOption on violations.
func (o *Options) normalize() error {
	if o.Cycles < 0 || o.Eps <= 0 || o.Alpha < 0 || o.SparseL < 0 || o.SparseZ < 0 {
		return ErrBadOption
	}
	if o.ReportEvery < 0 {
		o.ReportEvery = 0
	}
	if o.LaplaFloor < o.Eps {
		o.LaplaFloor = o.Eps
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}

	return nil
}

// Snapshot is the read-only view handed to a Reporter. The matrices alias
// live model state; reporters must not mutate them.
type Snapshot struct {
	Iteration int
	Elapsed   time.Duration

	Factors   int // k
	Variables int // n
	Samples   int // l

	Loadings *matrix.Dense // n×k
	Scores   *matrix.Dense // k×l
	Lapla    *matrix.Dense // k×l
	Psi      []float64     // n
}

// Reporter observes periodic iteration snapshots. Implementations must treat
// the snapshot as read-only and should return quickly: Update runs on the
// driver goroutine between EM phases.
type Reporter interface {
	Update(s Snapshot)
}

// PhaseTimings is the wall-clock split of a run.
type PhaseTimings struct {
	EStep     time.Duration // parallel posterior estimation
	Cholesky  time.Duration // moment-matrix inversion
	Remainder time.Duration // loading/noise updates, rescale, recovery
	Total     time.Duration
}

// Result summarizes a completed Run.
type Result struct {
	// Iterations is the number of EM cycles actually executed.
	Iterations int

	// EarlyConverged is true when the run stopped before exhausting the cycle
	// budget because the maximal parameter update fell below Eps.
	EarlyConverged bool

	// FactorResets counts loading columns that collapsed to zero and were
	// reinitialized over the whole run.
	FactorResets int

	Timings PhaseTimings
}
