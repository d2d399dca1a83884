// Package estimator recovers the relative timing delay between two transmit
// waveforms from a composite received waveform, with sub-sample resolution.
package estimator

import (
	"fmt"

	"github.com/rjboer/GoRanging/internal/dsp"
)

// Config bounds the estimator's search.
type Config struct {
	// InterpFactor is the integer upsampling factor R. Peak positions are
	// resolved to 1/R of a sample.
	InterpFactor int
	// MaxLagSamples bounds the correlation search window, expressed in
	// pre-interpolation samples. It must cover the integer delay plus the
	// combined group delay of the shaping and fractional-delay filters.
	MaxLagSamples int
}

// Peak locates one reference's correlation maximum.
type Peak struct {
	Lag       int // in interpolated samples
	Magnitude float64
}

// Result is the output of a single estimation run.
type Result struct {
	// DelaySamples is the estimated delay of the second reference relative to
	// the first, in (fractional) samples of the original rate.
	DelaySamples float64
	Peaks        [2]Peak
}

// Estimator matched-filters the received waveform, interpolates, and locates
// correlation peaks. Stateless between calls apart from cached FFT plans; not
// safe for concurrent use.
type Estimator struct {
	cfg    Config
	rxTaps []float64
	cache  *dsp.FFTCache
}

// New builds an estimator around the transmit pulse kernel, which doubles as
// the matched receive filter.
func New(cfg Config, matchedTaps []float64) (*Estimator, error) {
	if cfg.InterpFactor < 1 {
		return nil, fmt.Errorf("estimator: interpolation factor %d below 1: %w", cfg.InterpFactor, dsp.ErrInvalidParameter)
	}
	if cfg.MaxLagSamples <= 0 {
		return nil, fmt.Errorf("estimator: lag window %d must be positive: %w", cfg.MaxLagSamples, dsp.ErrInvalidParameter)
	}
	if len(matchedTaps) == 0 {
		return nil, fmt.Errorf("estimator: empty matched filter: %w", dsp.ErrInvalidParameter)
	}
	taps := make([]float64, len(matchedTaps))
	copy(taps, matchedTaps)
	return &Estimator{cfg: cfg, rxTaps: taps, cache: dsp.NewFFTCache()}, nil
}

// Estimate runs the receive side of the pipeline: matched filter the received
// waveform, interpolate it and both references by R, cross-correlate within
// the lag window, and convert the difference of the two peak lags back to a
// fractional-sample delay. Correlation peak ties resolve to the first maximum.
func (e *Estimator) Estimate(rx []complex128, refA, refB []complex128) (Result, error) {
	if len(rx) == 0 {
		return Result{}, fmt.Errorf("estimator: empty received waveform: %w", dsp.ErrInvalidParameter)
	}

	filtered, err := dsp.Convolve(rx, e.rxTaps)
	if err != nil {
		return Result{}, fmt.Errorf("estimator: matched filter: %w", err)
	}
	rxUp, err := e.cache.Interpolate(filtered, e.cfg.InterpFactor)
	if err != nil {
		return Result{}, fmt.Errorf("estimator: interpolate rx: %w", err)
	}

	var peaks [2]Peak
	for i, ref := range [2][]complex128{refA, refB} {
		peak, err := e.peakAgainst(rxUp, ref)
		if err != nil {
			return Result{}, fmt.Errorf("estimator: reference %d: %w", i, err)
		}
		peaks[i] = peak
	}

	delay := float64(peaks[1].Lag-peaks[0].Lag) / float64(e.cfg.InterpFactor)
	return Result{DelaySamples: delay, Peaks: peaks}, nil
}

// peakAgainst interpolates one reference and finds its correlation peak
// against the already-interpolated received waveform.
func (e *Estimator) peakAgainst(rxUp, ref []complex128) (Peak, error) {
	if len(ref) == 0 {
		return Peak{}, fmt.Errorf("empty reference: %w", dsp.ErrInvalidParameter)
	}
	refUp, err := e.cache.Interpolate(ref, e.cfg.InterpFactor)
	if err != nil {
		return Peak{}, err
	}
	maxLag := e.cfg.MaxLagSamples * e.cfg.InterpFactor
	mags, err := e.cache.CrossCorrelate(refUp, rxUp, maxLag)
	if err != nil {
		return Peak{}, err
	}
	lag := dsp.PeakIndex(mags)
	return Peak{Lag: lag, Magnitude: mags[lag]}, nil
}
