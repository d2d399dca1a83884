package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rjboer/GoRanging/internal/cacode"
	"github.com/rjboer/GoRanging/internal/channel"
	"github.com/rjboer/GoRanging/internal/estimator"
	"github.com/rjboer/GoRanging/internal/logging"
	"github.com/rjboer/GoRanging/internal/modem"
	"github.com/rjboer/GoRanging/internal/telemetry"
)

// Runner executes the ranging pipeline: generate two references, impair them
// through the simulated channel, and recover their relative delay.
type Runner struct {
	cfg      Config
	logger   logging.Logger
	reporter telemetry.Reporter
}

// NewRunner validates the configuration and binds logging and telemetry.
func NewRunner(cfg Config, logger logging.Logger, reporter telemetry.Reporter) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{cfg: cfg, logger: logger, reporter: reporter}, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config { return r.cfg }

// references builds the two transmit waveforms through a shared pulse shaper.
func (r *Runner) references() (*modem.Shaper, []complex128, []complex128, error) {
	shaper, err := modem.NewShaper(r.cfg.RRCTaps, r.cfg.RollOff, r.cfg.SamplesPerSymbol)
	if err != nil {
		return nil, nil, nil, err
	}

	build := func(seed int64, prn int) ([]complex128, error) {
		var points []complex128
		switch r.cfg.Source {
		case SourceCACode:
			chips, err := cacode.Samples(prn)
			if err != nil {
				return nil, err
			}
			points = chips
		default:
			syms, err := modem.Symbols(rand.New(rand.NewSource(seed)), r.cfg.SymbolCount)
			if err != nil {
				return nil, err
			}
			points = make([]complex128, len(syms))
			for i, s := range syms {
				points[i] = modem.Map(s)
			}
		}
		train, err := modem.Train(points, r.cfg.SamplesPerSymbol)
		if err != nil {
			return nil, err
		}
		return shaper.Shape(train)
	}

	refA, err := build(r.cfg.Seed, r.cfg.PRNA)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("app: reference A: %w", err)
	}
	refB, err := build(r.cfg.Seed+1, r.cfg.PRNB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("app: reference B: %w", err)
	}
	return shaper, refA, refB, nil
}

// Run executes one end-to-end estimate and reports it as trial zero.
func (r *Runner) Run(ctx context.Context) (estimator.Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return estimator.Result{}, err
	}

	shaper, refA, refB, err := r.references()
	if err != nil {
		return estimator.Result{}, err
	}
	r.logger.Debug("references built",
		logging.F("source", r.cfg.Source),
		logging.F("samples", len(refA)))

	ch, err := channel.New(channel.Config{
		SampleRate: r.cfg.SampleRate,
		FracTaps:   r.cfg.FracTaps,
		Multipath:  r.cfg.Multipath,
		NoiseLevel: r.cfg.NoiseLevel,
	}, rand.New(rand.NewSource(r.cfg.Seed)))
	if err != nil {
		return estimator.Result{}, err
	}

	pathA, err := ch.ApplyPath(refA, r.cfg.PathA)
	if err != nil {
		return estimator.Result{}, fmt.Errorf("app: path A: %w", err)
	}
	pathB, err := ch.ApplyPath(refB, r.cfg.PathB)
	if err != nil {
		return estimator.Result{}, fmt.Errorf("app: path B: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return estimator.Result{}, err
	}
	rx, err := ch.Combine(pathA, pathB)
	if err != nil {
		return estimator.Result{}, err
	}

	est, err := estimator.New(estimator.Config{
		InterpFactor:  r.cfg.InterpFactor,
		MaxLagSamples: r.cfg.SearchWindow,
	}, shaper.Taps())
	if err != nil {
		return estimator.Result{}, err
	}
	res, err := est.Estimate(rx, refA, refB)
	if err != nil {
		return estimator.Result{}, err
	}

	r.report(0, res)
	r.logger.Info("run complete",
		logging.F("delay_samples", res.DelaySamples),
		logging.F("duration_ms", time.Since(start).Seconds()*1000))
	return res, nil
}

func (r *Runner) report(trial int, res estimator.Result) {
	if r.reporter == nil {
		return
	}
	r.reporter.Report(telemetry.Sample{
		Timestamp:    time.Now(),
		Trial:        trial,
		DelaySamples: res.DelaySamples,
		DelaySeconds: res.DelaySamples / r.cfg.SampleRate,
		PeakLagA:     res.Peaks[0].Lag,
		PeakLagB:     res.Peaks[1].Lag,
	})
}
