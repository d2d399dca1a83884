package dsp

import (
	"errors"
	"math/cmplx"
	"testing"
)

func TestConvolveKnownValues(t *testing.T) {
	x := []complex128{1, 2}
	taps := []float64{1, 1, 1}
	out, err := Convolve(x, taps)
	if err != nil {
		t.Fatalf("convolve failed: %v", err)
	}
	expected := []complex128{1, 3, 3, 2}
	if len(out) != len(expected) {
		t.Fatalf("length %d, want %d", len(out), len(expected))
	}
	for i := range expected {
		if out[i] != expected[i] {
			t.Fatalf("index %d: got %v want %v", i, out[i], expected[i])
		}
	}
}

func TestConvolveEmptyInputs(t *testing.T) {
	if _, err := Convolve(nil, []float64{1}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := Convolve([]complex128{1}, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestConvolveSparseMatchesDense(t *testing.T) {
	x := []complex128{1, 2i, -1, 0.5, 3 - 1i}
	taps := []float64{1, 0, 0, 0.4, 0, -0.2}
	dense, err := Convolve(x, taps)
	if err != nil {
		t.Fatalf("dense convolve failed: %v", err)
	}
	sparse, err := ConvolveSparse(x, taps)
	if err != nil {
		t.Fatalf("sparse convolve failed: %v", err)
	}
	if len(dense) != len(sparse) {
		t.Fatalf("length mismatch: %d vs %d", len(dense), len(sparse))
	}
	for i := range dense {
		if cmplx.Abs(dense[i]-sparse[i]) > 1e-12 {
			t.Fatalf("index %d: dense %v sparse %v", i, dense[i], sparse[i])
		}
	}
}

func BenchmarkConvolve(b *testing.B) {
	x := make([]complex128, 8192)
	for i := range x {
		x[i] = complex(float64(i%7), float64(i%5))
	}
	taps := make([]float64, 129)
	for i := range taps {
		taps[i] = 1 / float64(i+1)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Convolve(x, taps); err != nil {
			b.Fatal(err)
		}
	}
}
