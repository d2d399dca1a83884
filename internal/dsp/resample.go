package dsp

import "fmt"

// Interpolate upsamples a waveform by an integer factor using frequency-domain
// resampling: the spectrum is zero-padded in the middle and transformed back,
// which preserves all content inside the original Nyquist band. The output has
// exactly len(x)*factor samples with unchanged amplitude.
//
// For even input lengths the Nyquist bin is split evenly between the positive
// and negative halves of the padded spectrum, keeping the output real for real
// inputs.
func (c *FFTCache) Interpolate(x []complex128, factor int) ([]complex128, error) {
	if factor < 1 {
		return nil, fmt.Errorf("interpolation factor %d below 1: %w", factor, ErrInvalidParameter)
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("interpolate empty waveform: %w", ErrInvalidParameter)
	}
	if factor == 1 {
		out := make([]complex128, len(x))
		copy(out, x)
		return out, nil
	}

	n := len(x)
	m := n * factor
	spec := c.Plan(n).Coefficients(nil, x)

	padded := make([]complex128, m)
	if n%2 == 0 {
		half := n / 2
		copy(padded[:half], spec[:half])
		copy(padded[m-half+1:], spec[half+1:])
		padded[half] = spec[half] / 2
		padded[m-half] = spec[half] / 2
	} else {
		half := (n + 1) / 2
		copy(padded[:half], spec[:half])
		copy(padded[m-(n-half):], spec[half:])
	}

	td := c.Plan(m).Sequence(nil, padded)
	out := make([]complex128, m)
	// Sequence is unnormalized; dividing by n (not m) folds in the factor-of-R
	// amplitude gain so samples keep their original scale.
	inv := complex(1/float64(n), 0)
	for i, v := range td {
		out[i] = v * inv
	}
	return out, nil
}
