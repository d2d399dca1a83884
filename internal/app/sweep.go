package app

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/rjboer/GoRanging/internal/channel"
	"github.com/rjboer/GoRanging/internal/dsp"
	"github.com/rjboer/GoRanging/internal/estimator"
	"github.com/rjboer/GoRanging/internal/logging"
)

type trialResult struct {
	trial int
	delay float64
	res   estimator.Result
	err   error
}

// RunTrials repeats the pipeline with fresh noise per trial and summarizes
// the estimates. References and impaired paths are deterministic, so they are
// built once and only the noisy combine and the estimation run per trial.
// Workers below 1 means one worker per CPU.
func (r *Runner) RunTrials(ctx context.Context, trials, workers int) (estimator.TrialStats, []float64, error) {
	if trials <= 0 {
		return estimator.TrialStats{}, nil, fmt.Errorf("app: trial count %d must be positive: %w", trials, dsp.ErrInvalidParameter)
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > trials {
		workers = trials
	}
	start := time.Now()

	shaper, refA, refB, err := r.references()
	if err != nil {
		return estimator.TrialStats{}, nil, err
	}
	quiet, err := channel.New(channel.Config{
		SampleRate: r.cfg.SampleRate,
		FracTaps:   r.cfg.FracTaps,
	}, nil)
	if err != nil {
		return estimator.TrialStats{}, nil, err
	}
	pathA, err := quiet.ApplyPath(refA, r.cfg.PathA)
	if err != nil {
		return estimator.TrialStats{}, nil, fmt.Errorf("app: path A: %w", err)
	}
	pathB, err := quiet.ApplyPath(refB, r.cfg.PathB)
	if err != nil {
		return estimator.TrialStats{}, nil, fmt.Errorf("app: path B: %w", err)
	}
	matched := shaper.Taps()

	jobs := make(chan int)
	results := make(chan trialResult, workers)

	// Each worker carries its own estimator; FFT plans hold scratch state
	// and must not be shared across goroutines.
	for w := 0; w < workers; w++ {
		go func() {
			est, err := estimator.New(estimator.Config{
				InterpFactor:  r.cfg.InterpFactor,
				MaxLagSamples: r.cfg.SearchWindow,
			}, matched)
			for trial := range jobs {
				if err != nil {
					results <- trialResult{trial: trial, err: err}
					continue
				}
				results <- r.runTrial(trial, est, pathA, pathB, refA, refB)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < trials; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	estimates := make([]float64, 0, trials)
	var firstErr error
	for i := 0; i < trials; i++ {
		select {
		case out := <-results:
			if out.err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("app: trial %d: %w", out.trial, out.err)
				}
				continue
			}
			estimates = append(estimates, out.delay)
			r.report(out.trial, out.res)
		case <-ctx.Done():
			return estimator.TrialStats{}, nil, ctx.Err()
		}
	}
	if firstErr != nil {
		return estimator.TrialStats{}, nil, firstErr
	}

	stats, err := estimator.Summarize(estimates)
	if err != nil {
		return estimator.TrialStats{}, nil, err
	}
	r.logger.Info("sweep complete",
		logging.F("trials", stats.Trials),
		logging.F("mean", stats.Mean),
		logging.F("stddev", stats.StdDev),
		logging.F("duration_ms", time.Since(start).Seconds()*1000))
	return stats, estimates, nil
}

func (r *Runner) runTrial(trial int, est *estimator.Estimator, pathA, pathB, refA, refB []complex128) trialResult {
	ch, err := channel.New(channel.Config{
		SampleRate: r.cfg.SampleRate,
		FracTaps:   r.cfg.FracTaps,
		Multipath:  r.cfg.Multipath,
		NoiseLevel: r.cfg.NoiseLevel,
	}, rand.New(rand.NewSource(r.cfg.Seed+int64(trial))))
	if err != nil {
		return trialResult{trial: trial, err: err}
	}
	rx, err := ch.Combine(pathA, pathB)
	if err != nil {
		return trialResult{trial: trial, err: err}
	}
	res, err := est.Estimate(rx, refA, refB)
	if err != nil {
		return trialResult{trial: trial, err: err}
	}
	return trialResult{trial: trial, delay: res.DelaySamples, res: res}
}
