package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rjboer/GoRanging/internal/dsp"
)

// TrialStats summarizes repeated delay estimates from noisy trials.
type TrialStats struct {
	Trials int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize reduces a batch of delay estimates to its trial statistics.
// A single estimate yields a standard deviation of zero.
func Summarize(estimates []float64) (TrialStats, error) {
	if len(estimates) == 0 {
		return TrialStats{}, fmt.Errorf("estimator: no estimates to summarize: %w", dsp.ErrInvalidParameter)
	}
	s := TrialStats{
		Trials: len(estimates),
		Mean:   stat.Mean(estimates, nil),
		Min:    math.Inf(1),
		Max:    math.Inf(-1),
	}
	if len(estimates) > 1 {
		s.StdDev = stat.StdDev(estimates, nil)
	}
	for _, v := range estimates {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s, nil
}
