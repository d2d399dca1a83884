package dsp

import (
	"fmt"
	"math/cmplx"
)

// CrossCorrelate computes the valid-region cross-correlation magnitude between
// a reference waveform and a longer signal for lags 0..maxLag:
//
//	r[lag] = | sum_m conj(ref[m]) * sig[m+lag] |
//
// The correlation is evaluated through an FFT cross-spectrum sized to the next
// power of two, then only the requested lag window is materialized, bounding
// both compute and memory. maxLag is clamped to the valid region
// len(sig)-len(ref).
func (c *FFTCache) CrossCorrelate(ref, sig []complex128, maxLag int) ([]float64, error) {
	if len(ref) == 0 || len(sig) == 0 {
		return nil, fmt.Errorf("correlate empty waveform (%d ref, %d sig): %w", len(ref), len(sig), ErrInvalidParameter)
	}
	if len(ref) > len(sig) {
		return nil, fmt.Errorf("reference (%d) longer than signal (%d): %w", len(ref), len(sig), ErrDimensionMismatch)
	}
	if maxLag < 0 {
		return nil, fmt.Errorf("negative lag window %d: %w", maxLag, ErrInvalidParameter)
	}
	if valid := len(sig) - len(ref); maxLag > valid {
		maxLag = valid
	}

	size := NextPow2(len(sig))
	plan := c.Plan(size)

	padRef := make([]complex128, size)
	copy(padRef, ref)
	padSig := make([]complex128, size)
	copy(padSig, sig)

	refSpec := plan.Coefficients(nil, padRef)
	sigSpec := plan.Coefficients(nil, padSig)
	for i := range sigSpec {
		sigSpec[i] *= cmplx.Conj(refSpec[i])
	}
	lagged := plan.Sequence(nil, sigSpec)

	out := make([]float64, maxLag+1)
	inv := 1 / float64(size)
	for lag := range out {
		out[lag] = cmplx.Abs(lagged[lag]) * inv
	}
	return out, nil
}

// PeakIndex returns the index of the maximum value. Ties resolve to the first
// occurrence so repeated runs over identical data give identical results.
func PeakIndex(mags []float64) int {
	best := 0
	for i, v := range mags {
		if v > mags[best] {
			best = i
		}
	}
	return best
}
