package channel

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/rjboer/GoRanging/internal/dsp"
)

func testChannel(t *testing.T, cfg Config, seed int64) *Channel {
	t.Helper()
	ch, err := New(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("channel setup failed: %v", err)
	}
	return ch
}

func rampWave(n int) []complex128 {
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(math.Sin(float64(i)/7), math.Cos(float64(i)/11))
	}
	return out
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "bad_rate", cfg: Config{SampleRate: 0, FracTaps: 21}},
		{name: "even_frac_taps", cfg: Config{SampleRate: 1e6, FracTaps: 20}},
		{name: "zero_frac_taps", cfg: Config{SampleRate: 1e6, FracTaps: 0}},
		{name: "negative_noise", cfg: Config{SampleRate: 1e6, FracTaps: 21, NoiseLevel: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, rand.New(rand.NewSource(1))); !errors.Is(err, dsp.ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}

	if _, err := New(Config{SampleRate: 1e6, FracTaps: 21, NoiseLevel: 0.1}, nil); !errors.Is(err, dsp.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for noise without rng, got %v", err)
	}
}

func TestApplyPathLengthGrowth(t *testing.T) {
	const fracTaps = 21
	ch := testChannel(t, Config{SampleRate: 1e6, FracTaps: fracTaps}, 1)
	x := rampWave(100)
	out, err := ch.ApplyPath(x, Impairments{DelaySamples: 5, FractionalDelay: 0.25})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if want := 5 + len(x) + fracTaps - 1; len(out) != want {
		t.Fatalf("length %d, want %d", len(out), want)
	}
}

func TestApplyPathZeroFractionalDelayIsPureShift(t *testing.T) {
	const fracTaps = 21
	ch := testChannel(t, Config{SampleRate: 1e6, FracTaps: fracTaps}, 1)
	x := rampWave(200)
	out, err := ch.ApplyPath(x, Impairments{})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	group := (fracTaps - 1) / 2
	for i := range x {
		if cmplx.Abs(out[i+group]-x[i]) > 1e-9 {
			t.Fatalf("sample %d changed by zero fractional delay: got %v want %v", i, out[i+group], x[i])
		}
	}
}

func TestApplyPathFrequencyOffsetRotates(t *testing.T) {
	const fracTaps = 1
	ch := testChannel(t, Config{SampleRate: 1000, FracTaps: fracTaps}, 1)
	x := make([]complex128, 64)
	for i := range x {
		x[i] = 1
	}
	out, err := ch.ApplyPath(x, Impairments{FreqOffsetHz: 125})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	// 125 Hz at 1 kHz advances an eighth of a turn per sample.
	want := cmplx.Exp(complex(0, 2*math.Pi*125.0/1000.0))
	if cmplx.Abs(out[1]/out[0]-want) > 1e-9 {
		t.Fatalf("per-sample rotation %v, want %v", out[1]/out[0], want)
	}
}

func TestApplyPathRejectsNegativeDelay(t *testing.T) {
	ch := testChannel(t, Config{SampleRate: 1e6, FracTaps: 21}, 1)
	if _, err := ch.ApplyPath(rampWave(10), Impairments{DelaySamples: -1}); !errors.Is(err, dsp.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestSumEqualPower(t *testing.T) {
	a := []complex128{1, 1, 1, 1}
	b := []complex128{1, 1, 1, 1}
	out, err := Sum(a, b)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	want := complex(2/math.Sqrt2, 0)
	for i, v := range out {
		if cmplx.Abs(v-want) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestSumLengthMismatch(t *testing.T) {
	if _, err := Sum([]complex128{1, 2}, []complex128{1}); !errors.Is(err, dsp.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCombinePadsUnequalPaths(t *testing.T) {
	ch := testChannel(t, Config{SampleRate: 1e6, FracTaps: 21}, 1)
	a := rampWave(50)
	b := rampWave(80)
	out, err := ch.Combine(a, b)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if len(out) != 80 {
		t.Fatalf("length %d, want 80", len(out))
	}
}

func TestCombineNoiselessIsDeterministic(t *testing.T) {
	cfg := Config{SampleRate: 1e6, FracTaps: 21}
	a := rampWave(64)
	b := rampWave(64)

	out1, err := testChannel(t, cfg, 1).Combine(a, b)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	out2, err := testChannel(t, cfg, 99).Combine(a, b)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	for i := range out1 {
		if out1[i] != out2[i] {
			t.Fatalf("noiseless combine depends on seed at index %d", i)
		}
	}
}

func TestCombineNoisePower(t *testing.T) {
	const level = 0.5
	ch := testChannel(t, Config{SampleRate: 1e6, FracTaps: 21, NoiseLevel: level}, 7)
	n := 20000
	silence := make([]complex128, n)
	out, err := ch.Combine(silence)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	var power float64
	for _, v := range out {
		power += real(v)*real(v) + imag(v)*imag(v)
	}
	power /= float64(n)
	if math.Abs(power-level*level) > 0.05*level*level {
		t.Fatalf("noise power %v, want about %v", power, level*level)
	}
}

func TestCombineMultipathGrowsLength(t *testing.T) {
	ir := []float64{1, 0, 0, 0.4, 0, 0, 0, 0.2}
	ch := testChannel(t, Config{SampleRate: 1e6, FracTaps: 21, Multipath: ir}, 1)
	out, err := ch.Combine(rampWave(100))
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if want := 100 + len(ir) - 1; len(out) != want {
		t.Fatalf("length %d, want %d", len(out), want)
	}
}
