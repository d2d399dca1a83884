// Package app wires signal generation, channel simulation and delay
// estimation into runnable pipelines.
package app

import (
	"fmt"

	"github.com/rjboer/GoRanging/internal/cacode"
	"github.com/rjboer/GoRanging/internal/channel"
	"github.com/rjboer/GoRanging/internal/dsp"
)

// Signal sources for the two transmit references.
const (
	SourceQPSK   = "qpsk"
	SourceCACode = "cacode"
)

// Config captures application level configuration for one ranging run.
type Config struct {
	SampleRate       float64
	SymbolCount      int
	SamplesPerSymbol int
	RRCTaps          int
	RollOff          float64
	FracTaps         int
	InterpFactor     int
	// SearchWindow bounds the correlation lag search, in pre-interpolation
	// samples. It must cover the integer delay plus the combined group delay
	// of the shaping and fractional-delay filters.
	SearchWindow int
	Seed         int64

	Source string
	// PRNA and PRNB select the spreading codes when Source is cacode.
	PRNA int
	PRNB int

	PathA      channel.Impairments
	PathB      channel.Impairments
	NoiseLevel float64
	Multipath  []float64

	HistoryLimit int
}

// DefaultConfig returns the reference two-signal scenario: 2000 QPSK symbols
// at one megasample per second, the second path late by two and a half
// samples, tenfold interpolation.
func DefaultConfig() Config {
	return Config{
		SampleRate:       1e6,
		SymbolCount:      2000,
		SamplesPerSymbol: 4,
		RRCTaps:          129,
		RollOff:          0.35,
		FracTaps:         31,
		InterpFactor:     10,
		SearchWindow:     128,
		Seed:             1,
		Source:           SourceQPSK,
		PRNA:             1,
		PRNB:             2,
		PathB:            channel.Impairments{DelaySamples: 2, FractionalDelay: 0.5},
		HistoryLimit:     500,
	}
}

// Validate rejects configurations the pipeline stages would refuse anyway,
// with clearer messages.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("app: sample rate %v must be positive: %w", c.SampleRate, dsp.ErrInvalidParameter)
	}
	if c.SymbolCount <= 0 {
		return fmt.Errorf("app: symbol count %d must be positive: %w", c.SymbolCount, dsp.ErrInvalidParameter)
	}
	if c.SamplesPerSymbol < 1 {
		return fmt.Errorf("app: samples per symbol %d below 1: %w", c.SamplesPerSymbol, dsp.ErrInvalidParameter)
	}
	if c.RRCTaps < 3 || c.RRCTaps%2 == 0 {
		return fmt.Errorf("app: rrc taps %d must be odd and at least 3: %w", c.RRCTaps, dsp.ErrInvalidParameter)
	}
	if c.RollOff <= 0 || c.RollOff >= 1 {
		return fmt.Errorf("app: roll-off %v outside (0,1): %w", c.RollOff, dsp.ErrInvalidParameter)
	}
	if c.FracTaps < 1 || c.FracTaps%2 == 0 {
		return fmt.Errorf("app: fractional delay taps %d must be positive and odd: %w", c.FracTaps, dsp.ErrInvalidParameter)
	}
	if c.InterpFactor < 1 {
		return fmt.Errorf("app: interpolation factor %d below 1: %w", c.InterpFactor, dsp.ErrInvalidParameter)
	}
	if c.SearchWindow <= 0 {
		return fmt.Errorf("app: search window %d must be positive: %w", c.SearchWindow, dsp.ErrInvalidParameter)
	}
	if c.NoiseLevel < 0 {
		return fmt.Errorf("app: noise level %v must not be negative: %w", c.NoiseLevel, dsp.ErrInvalidParameter)
	}
	switch c.Source {
	case SourceQPSK:
	case SourceCACode:
		if c.PRNA < 1 || c.PRNA > cacode.NumPRN() || c.PRNB < 1 || c.PRNB > cacode.NumPRN() {
			return fmt.Errorf("app: prn pair %d/%d outside 1..%d: %w", c.PRNA, c.PRNB, cacode.NumPRN(), dsp.ErrInvalidParameter)
		}
		if c.PRNA == c.PRNB {
			return fmt.Errorf("app: prn pair must differ, both are %d: %w", c.PRNA, dsp.ErrInvalidParameter)
		}
	default:
		return fmt.Errorf("app: unknown signal source %q: %w", c.Source, dsp.ErrInvalidParameter)
	}
	return nil
}
