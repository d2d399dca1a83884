package dsp

import "fmt"

// Convolve computes the full linear convolution of a complex waveform with a
// real-valued kernel. The output length is len(x)+len(taps)-1, matching the
// growth contract of every filtering stage in the pipeline.
func Convolve(x []complex128, taps []float64) ([]complex128, error) {
	if len(x) == 0 || len(taps) == 0 {
		return nil, fmt.Errorf("convolve with empty input (%d samples, %d taps): %w", len(x), len(taps), ErrInvalidParameter)
	}
	out := make([]complex128, len(x)+len(taps)-1)
	for n := range x {
		xn := x[n]
		if xn == 0 {
			continue
		}
		for k, h := range taps {
			out[n+k] += xn * complex(h, 0)
		}
	}
	return out, nil
}

// ConvolveSparse behaves like Convolve but skips zero taps, which makes it the
// right shape for multipath impulse responses (a direct path plus a handful of
// delayed reflections).
func ConvolveSparse(x []complex128, taps []float64) ([]complex128, error) {
	if len(x) == 0 || len(taps) == 0 {
		return nil, fmt.Errorf("sparse convolve with empty input (%d samples, %d taps): %w", len(x), len(taps), ErrInvalidParameter)
	}
	out := make([]complex128, len(x)+len(taps)-1)
	for k, h := range taps {
		if h == 0 {
			continue
		}
		hc := complex(h, 0)
		for n := range x {
			out[n+k] += x[n] * hc
		}
	}
	return out, nil
}
