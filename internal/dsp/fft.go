package dsp

import (
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTShift rotates the sequence so that index 0 moves to the center.
// For even lengths this is the usual half-swap; for odd lengths the zero bin
// lands on index (n-1)/2, which recenters a zero-phase kernel produced by an
// inverse transform.
func FFTShift(data []complex128) []complex128 {
	n := len(data)
	if n == 0 {
		return []complex128{}
	}
	split := n - n/2
	shifted := make([]complex128, 0, n)
	shifted = append(shifted, data[split:]...)
	shifted = append(shifted, data[:split]...)
	return shifted
}

// NextPow2 returns the smallest power of two >= n. NextPow2(0) is 1.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// FFTCache memoizes FFT plans by transform size so repeated convolutions,
// interpolations, and correlations over same-sized buffers reuse the twiddle
// tables instead of rebuilding them per call.
type FFTCache struct {
	mu    sync.RWMutex
	plans map[int]*fourier.CmplxFFT
}

// NewFFTCache returns an empty plan cache.
func NewFFTCache() *FFTCache {
	return &FFTCache{plans: make(map[int]*fourier.CmplxFFT)}
}

// Plan returns the cached FFT plan for size n, creating it on first use.
// Plan itself is safe for concurrent use, but a returned plan carries scratch
// state and must only be driven by one goroutine at a time.
func (c *FFTCache) Plan(n int) *fourier.CmplxFFT {
	if c == nil {
		return fourier.NewCmplxFFT(n)
	}
	c.mu.RLock()
	plan, ok := c.plans[n]
	c.mu.RUnlock()
	if ok {
		return plan
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if plan, ok = c.plans[n]; ok {
		return plan
	}
	plan = fourier.NewCmplxFFT(n)
	c.plans[n] = plan
	return plan
}

// Sizes reports how many distinct transform sizes are currently cached.
func (c *FFTCache) Sizes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.plans)
}
