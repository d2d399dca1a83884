// Package modem generates QPSK baseband impulse trains and shapes them with a
// root-raised-cosine transmit filter.
package modem

import (
	"fmt"
	"math/rand"

	"github.com/rjboer/GoRanging/internal/dsp"
)

// BitsPerSymbol is fixed for QPSK.
const BitsPerSymbol = 2

// Symbols draws n independent uniform QPSK symbol indices from {0,1,2,3}
// using the provided generator. The generator is injected rather than global
// so runs are reproducible from a seed.
func Symbols(rng *rand.Rand, n int) ([]byte, error) {
	if rng == nil {
		return nil, fmt.Errorf("modem: nil random source: %w", dsp.ErrInvalidParameter)
	}
	if n <= 0 {
		return nil, fmt.Errorf("modem: symbol count %d must be positive: %w", n, dsp.ErrInvalidParameter)
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(rng.Intn(1 << BitsPerSymbol))
	}
	return out, nil
}

// Map converts a symbol index to its constellation point: the low bit drives
// the in-phase component, the high bit the quadrature, each as bit-0.5. All
// four points land on (±0.5, ±0.5); the mapping can never produce the origin.
func Map(symbol byte) complex128 {
	i := float64(symbol&1) - 0.5
	q := float64((symbol>>1)&1) - 0.5
	return complex(i, q)
}

// Impulses expands a symbol sequence into a sparse impulse train with one
// constellation point per symbol period and zeros elsewhere. The output length
// is len(symbols)*sps.
func Impulses(symbols []byte, sps int) ([]complex128, error) {
	points := make([]complex128, len(symbols))
	for i, s := range symbols {
		if s >= 1<<BitsPerSymbol {
			return nil, fmt.Errorf("modem: symbol %d out of range at index %d: %w", s, i, dsp.ErrInvalidParameter)
		}
		points[i] = Map(s)
	}
	return Train(points, sps)
}

// Train spreads arbitrary constellation points into a sparse impulse train,
// one point per symbol period. It also serves spreading-code references whose
// chips are already complex values.
func Train(points []complex128, sps int) ([]complex128, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("modem: empty point sequence: %w", dsp.ErrInvalidParameter)
	}
	if sps < 1 {
		return nil, fmt.Errorf("modem: samples-per-symbol %d below 1: %w", sps, dsp.ErrInvalidParameter)
	}
	out := make([]complex128, len(points)*sps)
	for i, p := range points {
		out[i*sps] = p
	}
	return out, nil
}

// Shaper applies an RRC transmit pulse to impulse trains.
type Shaper struct {
	taps []float64
	sps  int
}

// NewShaper designs the RRC kernel once and reuses it for every waveform.
func NewShaper(taps int, beta float64, sps int) (*Shaper, error) {
	h, err := dsp.RootRaisedCosine(taps, beta, sps)
	if err != nil {
		return nil, fmt.Errorf("modem: shaper design: %w", err)
	}
	return &Shaper{taps: h, sps: sps}, nil
}

// Shape convolves the impulse train with the RRC kernel. The output grows to
// len(impulses)+taps-1 samples.
func (s *Shaper) Shape(impulses []complex128) ([]complex128, error) {
	out, err := dsp.Convolve(impulses, s.taps)
	if err != nil {
		return nil, fmt.Errorf("modem: shape: %w", err)
	}
	return out, nil
}

// Taps returns a copy of the RRC kernel, used by the matched receive filter.
func (s *Shaper) Taps() []float64 {
	out := make([]float64, len(s.taps))
	copy(out, s.taps)
	return out
}

// GroupDelay reports the kernel's delay in whole samples.
func (s *Shaper) GroupDelay() int {
	return (len(s.taps) - 1) / 2
}
