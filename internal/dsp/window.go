package dsp

import (
	"fmt"
	"math"
)

// Hamming returns a Hamming window of length n.
// If n is zero or negative, an empty slice is returned.
func Hamming(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n == 1 {
		return []float64{1}
	}
	win := make([]float64, n)
	for i := 0; i < n; i++ {
		win[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return win
}

// Sinc is the normalized sinc function sin(pi x)/(pi x).
func Sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// FractionalDelayTaps designs a Hamming-windowed sinc kernel that delays a
// waveform by frac samples, 0 <= frac < 1, on top of the kernel's own group
// delay of (length-1)/2 samples. The taps are normalized to unit DC gain so
// the filter does not alter signal amplitude. Length must be odd so the group
// delay sits on a whole sample and cancels between signals filtered with
// kernels of the same length.
//
// With frac == 0 the kernel degenerates to a unit impulse at the center tap.
func FractionalDelayTaps(length int, frac float64) ([]float64, error) {
	if length <= 0 || length%2 == 0 {
		return nil, fmt.Errorf("fractional delay length %d must be positive and odd: %w", length, ErrInvalidParameter)
	}
	if frac < 0 || frac >= 1 {
		return nil, fmt.Errorf("fractional delay %v outside [0,1): %w", frac, ErrInvalidParameter)
	}

	center := (length - 1) / 2
	win := Hamming(length)
	taps := make([]float64, length)
	var sum float64
	for i := range taps {
		taps[i] = Sinc(float64(i-center)-frac) * win[i]
		sum += taps[i]
	}
	if sum == 0 {
		return nil, fmt.Errorf("fractional delay kernel has zero DC gain: %w", ErrInvalidParameter)
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps, nil
}
