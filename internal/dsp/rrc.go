package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// RaisedCosine returns the time-domain raised-cosine kernel with the given odd
// tap count, roll-off beta in (0,1), and samples per symbol. The kernel is
// symmetric about its center tap and has unit amplitude there.
func RaisedCosine(taps int, beta float64, sps int) ([]float64, error) {
	if taps <= 0 || taps%2 == 0 {
		return nil, fmt.Errorf("raised cosine taps %d must be positive and odd: %w", taps, ErrInvalidParameter)
	}
	if beta <= 0 || beta >= 1 {
		return nil, fmt.Errorf("raised cosine roll-off %v outside (0,1): %w", beta, ErrInvalidParameter)
	}
	if sps < 1 {
		return nil, fmt.Errorf("raised cosine samples-per-symbol %d below 1: %w", sps, ErrInvalidParameter)
	}

	center := (taps - 1) / 2
	h := make([]float64, taps)
	for i := range h {
		t := float64(i-center) / float64(sps)
		den := 1 - (2*beta*t)*(2*beta*t)
		if math.Abs(den) < 1e-12 {
			// De l'Hopital point at t = ±1/(2 beta).
			h[i] = math.Pi / 4 * Sinc(1/(2*beta))
			continue
		}
		h[i] = Sinc(t) * math.Cos(math.Pi*beta*t) / den
	}
	return h, nil
}

// RootRaisedCosine designs an RRC kernel by taking the element-wise square
// root of the raised-cosine magnitude spectrum and transforming back to the
// time domain. The spectrum of a symmetric real kernel is real and even, so
// the inverse transform is real to machine precision; the zero-phase result is
// recentered with FFTShift and normalized to unit energy. Convolving the
// kernel with itself (transmit filter followed by matched receive filter)
// reconstructs the raised-cosine response, which is what minimizes ISI.
func RootRaisedCosine(taps int, beta float64, sps int) ([]float64, error) {
	rc, err := RaisedCosine(taps, beta, sps)
	if err != nil {
		return nil, err
	}

	seq := make([]complex128, taps)
	for i, v := range rc {
		seq[i] = complex(v, 0)
	}
	plan := fourier.NewCmplxFFT(taps)
	spec := plan.Coefficients(nil, seq)
	for i := range spec {
		spec[i] = complex(math.Sqrt(cmplx.Abs(spec[i])), 0)
	}
	td := plan.Sequence(nil, spec)

	shifted := FFTShift(td)
	h := make([]float64, taps)
	var energy float64
	for i, v := range shifted {
		h[i] = real(v) / float64(taps)
		energy += h[i] * h[i]
	}
	if energy == 0 {
		return nil, fmt.Errorf("degenerate RRC kernel: %w", ErrInvalidParameter)
	}
	scale := 1 / math.Sqrt(energy)
	for i := range h {
		h[i] *= scale
	}
	return h, nil
}
