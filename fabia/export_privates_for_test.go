package fabia

// Test-Bridge (White-Box) for the scratch arena.
//
// Purpose:
//   - Let fabia_test exercise the allocation-failure degradation path
//     without widening the production API.
//
// Provided Surface:
//   - SetScratchLimit_TestOnly — override the scratch arena byte limit,
//     returning a restore func for deferred cleanup.
//   - ScratchBytes_TestOnly    — compute the arena footprint a Run would
//     request for a given shape, so tests can pick a limit just below it.

// SetScratchLimit_TestOnly overrides scratchLimitBytes and returns a restore
// function. Not safe for concurrent use with Run; tests apply it before
// starting the run under test.
func SetScratchLimit_TestOnly(bytes int64) (restore func()) {
	prev := scratchLimitBytes
	scratchLimitBytes = bytes

	return func() { scratchLimitBytes = prev }
}

// ScratchBytes_TestOnly forwards to the private footprint calculation.
func ScratchBytes_TestOnly(n, k, workers int) int64 {
	return scratchBytes(n, k, workers)
}
