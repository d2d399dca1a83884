package dsp

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func TestHamming(t *testing.T) {
	win := Hamming(21)
	if len(win) != 21 {
		t.Fatalf("length %d, want 21", len(win))
	}
	if math.Abs(win[0]-0.08) > 1e-12 || math.Abs(win[20]-0.08) > 1e-12 {
		t.Fatalf("edge taps %v %v, want 0.08", win[0], win[20])
	}
	if math.Abs(win[10]-1) > 1e-12 {
		t.Fatalf("center tap %v, want 1", win[10])
	}
	for i := 0; i < 10; i++ {
		if math.Abs(win[i]-win[20-i]) > 1e-12 {
			t.Fatalf("window not symmetric at %d", i)
		}
	}
	if len(Hamming(0)) != 0 {
		t.Fatal("expected empty window for n=0")
	}
}

func TestFractionalDelayTapsValidation(t *testing.T) {
	tests := []struct {
		name   string
		length int
		frac   float64
	}{
		{name: "even_length", length: 20, frac: 0.5},
		{name: "zero_length", length: 0, frac: 0.5},
		{name: "negative_frac", length: 21, frac: -0.1},
		{name: "frac_too_large", length: 21, frac: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FractionalDelayTaps(tt.length, tt.frac); !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestFractionalDelayZeroIsIdentity(t *testing.T) {
	taps, err := FractionalDelayTaps(21, 0)
	if err != nil {
		t.Fatalf("design failed: %v", err)
	}
	center := 10
	for i, v := range taps {
		want := 0.0
		if i == center {
			want = 1.0
		}
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("tap %d = %v, want %v", i, v, want)
		}
	}
}

func TestFractionalDelayUnitDCGain(t *testing.T) {
	for _, frac := range []float64{0, 0.1, 0.25, 0.5, 0.9} {
		taps, err := FractionalDelayTaps(31, frac)
		if err != nil {
			t.Fatalf("design failed for frac=%v: %v", frac, err)
		}
		var sum float64
		for _, v := range taps {
			sum += v
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("DC gain %v for frac=%v, want 1", sum, frac)
		}
	}
}

func TestFractionalDelayPhaseShift(t *testing.T) {
	// A slow complex exponential through the kernel picks up a phase lag of
	// 2*pi*f*(center+frac) in steady state.
	const (
		length = 21
		frac   = 0.3
		freq   = 0.05
	)
	taps, err := FractionalDelayTaps(length, frac)
	if err != nil {
		t.Fatalf("design failed: %v", err)
	}

	n := 256
	x := make([]complex128, n)
	for i := range x {
		x[i] = cmplx.Exp(complex(0, 2*math.Pi*freq*float64(i)))
	}
	y, err := Convolve(x, taps)
	if err != nil {
		t.Fatalf("convolve failed: %v", err)
	}

	center := (length - 1) / 2
	probe := n / 2
	got := cmplx.Phase(y[probe+center] / x[probe])
	want := -2 * math.Pi * freq * frac
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("phase shift %v, want %v", got, want)
	}
}
