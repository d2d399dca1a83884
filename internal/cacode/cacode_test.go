package cacode

import (
	"errors"
	"testing"

	"github.com/rjboer/GoRanging/internal/dsp"
)

// circular correlation of two ±1 chip sequences at one lag.
func circCorr(a, b []int8, lag int) int {
	sum := 0
	n := len(a)
	for i := 0; i < n; i++ {
		sum += int(a[i]) * int(b[(i+lag)%n])
	}
	return sum
}

func TestChipsValidation(t *testing.T) {
	for _, prn := range []int{0, -3, NumPRN() + 1} {
		if _, err := Chips(prn); !errors.Is(err, dsp.ErrInvalidParameter) {
			t.Fatalf("prn %d: expected ErrInvalidParameter, got %v", prn, err)
		}
	}
}

func TestChipsShape(t *testing.T) {
	chips, err := Chips(1)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if len(chips) != Length {
		t.Fatalf("length %d, want %d", len(chips), Length)
	}
	for i, c := range chips {
		if c != 1 && c != -1 {
			t.Fatalf("chip %d is %d, want ±1", i, c)
		}
	}
}

// Gold codes of period 1023 are balanced with an excess of one chip.
func TestChipBalance(t *testing.T) {
	for _, prn := range []int{1, 7, 19, 32} {
		chips, err := Chips(prn)
		if err != nil {
			t.Fatalf("prn %d failed: %v", prn, err)
		}
		sum := 0
		for _, c := range chips {
			sum += int(c)
		}
		if sum != 1 && sum != -1 {
			t.Fatalf("prn %d balance %d, want ±1", prn, sum)
		}
	}
}

// Off-peak circular autocorrelation of a Gold code only takes the three
// values -65, -1 and 63.
func TestAutocorrelationLevels(t *testing.T) {
	chips, err := Chips(5)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if got := circCorr(chips, chips, 0); got != Length {
		t.Fatalf("zero-lag autocorrelation %d, want %d", got, Length)
	}
	for lag := 1; lag < Length; lag++ {
		v := circCorr(chips, chips, lag)
		if v != -65 && v != -1 && v != 63 {
			t.Fatalf("lag %d autocorrelation %d outside Gold code levels", lag, v)
		}
	}
}

func TestCrossCorrelationBounded(t *testing.T) {
	a, err := Chips(1)
	if err != nil {
		t.Fatalf("prn 1 failed: %v", err)
	}
	b, err := Chips(2)
	if err != nil {
		t.Fatalf("prn 2 failed: %v", err)
	}
	for lag := 0; lag < Length; lag++ {
		v := circCorr(a, b, lag)
		if v < -65 || v > 63 {
			t.Fatalf("lag %d cross-correlation %d outside [-65, 63]", lag, v)
		}
	}
}

func TestCodesDistinctAcrossPRNs(t *testing.T) {
	a, err := Chips(3)
	if err != nil {
		t.Fatalf("prn 3 failed: %v", err)
	}
	b, err := Chips(4)
	if err != nil {
		t.Fatalf("prn 4 failed: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("prn 3 and prn 4 produced identical codes")
	}
}

func TestSamplesMatchChips(t *testing.T) {
	chips, err := Chips(9)
	if err != nil {
		t.Fatalf("chips failed: %v", err)
	}
	samples, err := Samples(9)
	if err != nil {
		t.Fatalf("samples failed: %v", err)
	}
	if len(samples) != len(chips) {
		t.Fatalf("length %d, want %d", len(samples), len(chips))
	}
	for i := range chips {
		if real(samples[i]) != float64(chips[i]) || imag(samples[i]) != 0 {
			t.Fatalf("sample %d = %v, want (%d, 0)", i, samples[i], chips[i])
		}
	}
}
