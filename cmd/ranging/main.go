// Command ranging simulates two pulse-shaped transmit signals through an
// impaired channel and recovers their relative delay with sub-sample
// resolution.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rjboer/GoRanging/internal/app"
	"github.com/rjboer/GoRanging/internal/cacode"
	"github.com/rjboer/GoRanging/internal/estimator"
	"github.com/rjboer/GoRanging/internal/logging"
	"github.com/rjboer/GoRanging/internal/telemetry"
)

func main() {
	const configPath = "ranging.json"
	persisted, err := loadOrCreateConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := newRootCmd(persisted, configPath).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(defaults persistentConfig, configPath string) *cobra.Command {
	opts := defaults
	lookup := os.LookupEnv

	root := &cobra.Command{
		Use:   "ranging",
		Short: "Two-signal delay estimation over a simulated channel",
		Long: `Ranging generates two independent pulse-shaped signals, sends them through
a simulated channel (integer and fractional delay, frequency offset,
multipath, noise), and recovers the delay between them by matched filtering,
FFT interpolation and cross-correlation.

Defaults come from ranging.json; RANGING_* environment variables and flags
override it. The merged configuration is written back after each run.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.Float64Var(&opts.SampleRate, "sample-rate", envFloat(lookup, "RANGING_SAMPLE_RATE", defaults.SampleRate), "sample rate in Hz")
	pf.IntVar(&opts.SymbolCount, "symbols", envInt(lookup, "RANGING_SYMBOLS", defaults.SymbolCount), "QPSK symbols per reference")
	pf.IntVar(&opts.SamplesPerSymbol, "sps", envInt(lookup, "RANGING_SPS", defaults.SamplesPerSymbol), "samples per symbol")
	pf.IntVar(&opts.RRCTaps, "rrc-taps", envInt(lookup, "RANGING_RRC_TAPS", defaults.RRCTaps), "root-raised-cosine filter length (odd)")
	pf.Float64Var(&opts.RollOff, "roll-off", envFloat(lookup, "RANGING_ROLL_OFF", defaults.RollOff), "RRC roll-off factor in (0,1)")
	pf.IntVar(&opts.FracTaps, "frac-taps", envInt(lookup, "RANGING_FRAC_TAPS", defaults.FracTaps), "fractional delay filter length (odd)")
	pf.IntVar(&opts.InterpFactor, "interp", envInt(lookup, "RANGING_INTERP", defaults.InterpFactor), "FFT interpolation factor")
	pf.IntVar(&opts.SearchWindow, "search-window", envInt(lookup, "RANGING_SEARCH_WINDOW", defaults.SearchWindow), "correlation search window in samples")
	pf.Int64Var(&opts.Seed, "seed", envInt64(lookup, "RANGING_SEED", defaults.Seed), "random seed")
	pf.StringVar(&opts.Source, "source", envString(lookup, "RANGING_SOURCE", defaults.Source), "signal source (qpsk|cacode)")
	pf.IntVar(&opts.PRNA, "prn-a", envInt(lookup, "RANGING_PRN_A", defaults.PRNA), "spreading code PRN for the first signal")
	pf.IntVar(&opts.PRNB, "prn-b", envInt(lookup, "RANGING_PRN_B", defaults.PRNB), "spreading code PRN for the second signal")
	pf.IntVar(&opts.DelaySamples, "delay", envInt(lookup, "RANGING_DELAY", defaults.DelaySamples), "whole-sample delay applied to the second signal")
	pf.Float64Var(&opts.FractionalDelay, "frac-delay", envFloat(lookup, "RANGING_FRAC_DELAY", defaults.FractionalDelay), "sub-sample delay in [0,1)")
	pf.Float64Var(&opts.FreqOffsetHz, "freq-offset", envFloat(lookup, "RANGING_FREQ_OFFSET", defaults.FreqOffsetHz), "carrier frequency offset in Hz")
	pf.Float64Var(&opts.NoiseLevel, "noise", envFloat(lookup, "RANGING_NOISE", defaults.NoiseLevel), "RMS level of additive noise")
	pf.StringVar(&opts.Multipath, "multipath", envString(lookup, "RANGING_MULTIPATH", defaults.Multipath), "comma-separated multipath impulse response, e.g. 1,0,0,0.4")
	pf.IntVar(&opts.HistoryLimit, "history-limit", envInt(lookup, "RANGING_HISTORY_LIMIT", defaults.HistoryLimit), "telemetry history depth")
	pf.StringVar(&opts.WebAddr, "web-addr", envString(lookup, "RANGING_WEB_ADDR", defaults.WebAddr), "optional telemetry listen address, e.g. :8080")
	pf.StringVar(&opts.LogLevel, "log-level", envString(lookup, "RANGING_LOG_LEVEL", defaults.LogLevel), "log level (debug|info|warn|error)")
	pf.StringVar(&opts.LogFormat, "log-format", envString(lookup, "RANGING_LOG_FORMAT", defaults.LogFormat), "log format (text|json)")

	root.AddCommand(newRunCmd(&opts, configPath))
	root.AddCommand(newSweepCmd(&opts, configPath))
	root.AddCommand(newCodeCmd())
	return root
}

// setup builds the logger and telemetry fan-out, starting the web hub when an
// address is configured.
func setup(ctx context.Context, opts *persistentConfig) (logging.Logger, telemetry.Reporter, error) {
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	format, err := logging.ParseFormat(opts.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(level, format, os.Stderr)
	logging.SetDefault(logger)

	reporters := telemetry.MultiReporter{telemetry.NewLogReporter(logger)}
	if opts.WebAddr != "" {
		hub := telemetry.NewHub(opts.HistoryLimit)
		reporters = append(reporters, hub)
		go telemetry.NewWebServer(opts.WebAddr, hub, logger).Start(ctx)
		logger.Info("telemetry listening", logging.F("addr", opts.WebAddr))
	}
	return logger, reporters, nil
}

func buildRunner(ctx context.Context, opts *persistentConfig, configPath string) (*app.Runner, error) {
	logger, reporter, err := setup(ctx, opts)
	if err != nil {
		return nil, err
	}
	cfg, err := opts.appConfig()
	if err != nil {
		return nil, err
	}
	runner, err := app.NewRunner(cfg, logger, reporter)
	if err != nil {
		return nil, err
	}
	if err := saveConfig(configPath, *opts); err != nil {
		logger.Warn("persist config", logging.F("error", err))
	}
	return runner, nil
}

func newRunCmd(opts *persistentConfig, configPath string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one end-to-end delay estimate",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			runner, err := buildRunner(ctx, opts, configPath)
			if err != nil {
				return err
			}
			res, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			printResult(res, opts.SampleRate)
			return nil
		},
	}
}

func newSweepCmd(opts *persistentConfig, configPath string) *cobra.Command {
	var (
		trials  int
		workers int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Repeat noisy trials and summarize the estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			runner, err := buildRunner(ctx, opts, configPath)
			if err != nil {
				return err
			}
			stats, _, err := runner.RunTrials(ctx, trials, workers)
			if err != nil {
				return err
			}
			printStats(stats, opts.SampleRate)
			return nil
		},
	}
	cmd.Flags().IntVar(&trials, "trials", 100, "number of Monte Carlo trials")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 means one per CPU)")
	return cmd
}

func newCodeCmd() *cobra.Command {
	var prn int
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Inspect a GPS L1 C/A spreading code",
		RunE: func(cmd *cobra.Command, args []string) error {
			chips, err := cacode.Chips(prn)
			if err != nil {
				return err
			}
			printCode(prn, chips)
			return nil
		},
	}
	cmd.Flags().IntVar(&prn, "prn", 1, fmt.Sprintf("satellite PRN number (1..%d)", cacode.NumPRN()))
	return cmd
}

func printResult(res estimator.Result, sampleRate float64) {
	head := color.New(color.FgCyan, color.Bold)
	head.Printf("estimated delay = %.3f samples", res.DelaySamples)
	fmt.Printf(" (%.4f µs at %.0f Sa/s)\n", res.DelaySamples/sampleRate*1e6, sampleRate)
	fmt.Printf("correlation peaks: reference A at lag %d (|r|=%.4f), reference B at lag %d (|r|=%.4f)\n",
		res.Peaks[0].Lag, res.Peaks[0].Magnitude, res.Peaks[1].Lag, res.Peaks[1].Magnitude)
}

func printStats(stats estimator.TrialStats, sampleRate float64) {
	head := color.New(color.FgCyan, color.Bold)
	head.Printf("delay over %d trials\n", stats.Trials)
	fmt.Printf("  mean   %10.4f samples (%.4f µs)\n", stats.Mean, stats.Mean/sampleRate*1e6)
	fmt.Printf("  stddev %10.4f samples\n", stats.StdDev)
	fmt.Printf("  min    %10.4f samples\n", stats.Min)
	fmt.Printf("  max    %10.4f samples\n", stats.Max)
}

func printCode(prn int, chips []int8) {
	head := color.New(color.FgCyan, color.Bold)
	head.Printf("L1 C/A code, PRN %d\n", prn)

	balance := 0
	var first strings.Builder
	for i, c := range chips {
		balance += int(c)
		if i < 40 {
			if c > 0 {
				first.WriteByte('+')
			} else {
				first.WriteByte('-')
			}
		}
	}
	worst := 0
	for lag := 1; lag < len(chips); lag++ {
		sum := 0
		for i := range chips {
			sum += int(chips[i]) * int(chips[(i+lag)%len(chips)])
		}
		if sum > worst {
			worst = sum
		}
		if -sum > worst {
			worst = -sum
		}
	}
	fmt.Printf("  length          %d chips at %.3f Mchip/s\n", len(chips), cacode.ChipRateHz/1e6)
	fmt.Printf("  chip balance    %+d\n", balance)
	fmt.Printf("  worst sidelobe  %d (peak %d)\n", worst, len(chips))
	fmt.Printf("  first chips     %s...\n", first.String())
}
