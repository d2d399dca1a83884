// Package channel simulates baseband link impairments: integer and fractional
// delay, carrier frequency offset, multipath, and additive noise.
package channel

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/rjboer/GoRanging/internal/dsp"
)

// Impairments describes what one transmit path suffers on its way to the
// receiver. Pure configuration; the channel holds no state across runs.
type Impairments struct {
	DelaySamples    int     // whole-sample delay, realized as prepended zeros
	FractionalDelay float64 // sub-sample delay in [0,1)
	FreqOffsetHz    float64 // carrier frequency offset, 0 disables
}

// Config carries the channel-wide simulation parameters.
type Config struct {
	SampleRate float64
	// FracTaps is the windowed-sinc kernel length for fractional delays. It is
	// channel-wide, not per path: every path passes through a kernel of the
	// same length so the filter group delay cancels in peak differences.
	FracTaps int
	// Multipath is an optional sparse impulse response applied to the
	// composite signal (direct path plus attenuated reflections). Empty
	// disables the stage.
	Multipath []float64
	// NoiseLevel is the RMS of the circular complex Gaussian noise added per
	// sample. 0 disables the stage.
	NoiseLevel float64
}

// Channel applies impairments to transmit waveforms and combines them into a
// single received waveform.
type Channel struct {
	cfg Config
	rng *rand.Rand
}

// New validates the configuration and binds the channel to a seedable noise
// source.
func New(cfg Config, rng *rand.Rand) (*Channel, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("channel: sample rate %v must be positive: %w", cfg.SampleRate, dsp.ErrInvalidParameter)
	}
	if cfg.FracTaps <= 0 || cfg.FracTaps%2 == 0 {
		return nil, fmt.Errorf("channel: fractional delay taps %d must be positive and odd: %w", cfg.FracTaps, dsp.ErrInvalidParameter)
	}
	if cfg.NoiseLevel < 0 {
		return nil, fmt.Errorf("channel: noise level %v must not be negative: %w", cfg.NoiseLevel, dsp.ErrInvalidParameter)
	}
	if cfg.NoiseLevel > 0 && rng == nil {
		return nil, fmt.Errorf("channel: noise requested without a random source: %w", dsp.ErrInvalidParameter)
	}
	return &Channel{cfg: cfg, rng: rng}, nil
}

// ApplyPath runs one transmit waveform through its per-path impairments, in
// order: integer delay, fractional delay, frequency offset. The fractional
// delay filter runs even for a delay of zero so both paths share its group
// delay; the frequency offset is applied before any receiver noise because it
// models a front-end mismatch.
func (c *Channel) ApplyPath(x []complex128, imp Impairments) ([]complex128, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("channel: empty waveform: %w", dsp.ErrInvalidParameter)
	}
	if imp.DelaySamples < 0 {
		return nil, fmt.Errorf("channel: negative sample delay %d: %w", imp.DelaySamples, dsp.ErrInvalidParameter)
	}

	delayed := make([]complex128, imp.DelaySamples+len(x))
	copy(delayed[imp.DelaySamples:], x)

	taps, err := dsp.FractionalDelayTaps(c.cfg.FracTaps, imp.FractionalDelay)
	if err != nil {
		return nil, fmt.Errorf("channel: %w", err)
	}
	out, err := dsp.Convolve(delayed, taps)
	if err != nil {
		return nil, fmt.Errorf("channel: %w", err)
	}

	if imp.FreqOffsetHz != 0 {
		step := 2 * math.Pi * imp.FreqOffsetHz / c.cfg.SampleRate
		for n := range out {
			out[n] *= cmplx.Exp(complex(0, step*float64(n)))
		}
	}
	return out, nil
}

// Sum adds equal-length waveforms and scales by 1/sqrt(count) to preserve
// average power. Length disagreement is the caller's bug, not something to
// paper over.
func Sum(paths ...[]complex128) ([]complex128, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("channel: nothing to sum: %w", dsp.ErrInvalidParameter)
	}
	n := len(paths[0])
	for i, p := range paths {
		if len(p) != n {
			return nil, fmt.Errorf("channel: path %d has %d samples, path 0 has %d: %w", i, len(p), n, dsp.ErrDimensionMismatch)
		}
	}
	scale := complex(1/math.Sqrt(float64(len(paths))), 0)
	out := make([]complex128, n)
	for _, p := range paths {
		for i, v := range p {
			out[i] += v
		}
	}
	for i := range out {
		out[i] *= scale
	}
	return out, nil
}

// Combine aligns the impaired paths to a common length with trailing zeros
// (delays make paths grow unevenly), sums them at equal power, then applies
// the optional multipath response and additive noise.
func (c *Channel) Combine(paths ...[]complex128) ([]complex128, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("channel: nothing to combine: %w", dsp.ErrInvalidParameter)
	}
	maxLen := 0
	for i, p := range paths {
		if len(p) == 0 {
			return nil, fmt.Errorf("channel: path %d is empty: %w", i, dsp.ErrInvalidParameter)
		}
		if len(p) > maxLen {
			maxLen = len(p)
		}
	}
	aligned := make([][]complex128, len(paths))
	for i, p := range paths {
		buf := make([]complex128, maxLen)
		copy(buf, p)
		aligned[i] = buf
	}

	out, err := Sum(aligned...)
	if err != nil {
		return nil, err
	}

	if len(c.cfg.Multipath) > 0 {
		out, err = dsp.ConvolveSparse(out, c.cfg.Multipath)
		if err != nil {
			return nil, fmt.Errorf("channel: multipath: %w", err)
		}
	}

	if c.cfg.NoiseLevel > 0 {
		sigma := c.cfg.NoiseLevel / math.Sqrt2
		for i := range out {
			out[i] += complex(c.rng.NormFloat64()*sigma, c.rng.NormFloat64()*sigma)
		}
	}
	return out, nil
}
