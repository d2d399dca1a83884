package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rjboer/GoRanging/internal/app"
	"github.com/rjboer/GoRanging/internal/channel"
)

// persistentConfig is the JSON-backed configuration written next to the
// binary so a tuned scenario survives between invocations. Flags and
// RANGING_* environment variables override it per run.
type persistentConfig struct {
	SampleRate       float64 `json:"sample_rate"`
	SymbolCount      int     `json:"symbol_count"`
	SamplesPerSymbol int     `json:"samples_per_symbol"`
	RRCTaps          int     `json:"rrc_taps"`
	RollOff          float64 `json:"roll_off"`
	FracTaps         int     `json:"frac_taps"`
	InterpFactor     int     `json:"interp_factor"`
	SearchWindow     int     `json:"search_window"`
	Seed             int64   `json:"seed"`
	Source           string  `json:"source"`
	PRNA             int     `json:"prn_a"`
	PRNB             int     `json:"prn_b"`
	DelaySamples     int     `json:"delay_samples"`
	FractionalDelay  float64 `json:"fractional_delay"`
	FreqOffsetHz     float64 `json:"freq_offset_hz"`
	NoiseLevel       float64 `json:"noise_level"`
	Multipath        string  `json:"multipath"`
	HistoryLimit     int     `json:"history_limit"`
	WebAddr          string  `json:"web_addr"`
	LogLevel         string  `json:"log_level"`
	LogFormat        string  `json:"log_format"`
}

func defaultPersistentConfig() persistentConfig {
	d := app.DefaultConfig()
	return persistentConfig{
		SampleRate:       d.SampleRate,
		SymbolCount:      d.SymbolCount,
		SamplesPerSymbol: d.SamplesPerSymbol,
		RRCTaps:          d.RRCTaps,
		RollOff:          d.RollOff,
		FracTaps:         d.FracTaps,
		InterpFactor:     d.InterpFactor,
		SearchWindow:     d.SearchWindow,
		Seed:             d.Seed,
		Source:           d.Source,
		PRNA:             d.PRNA,
		PRNB:             d.PRNB,
		DelaySamples:     d.PathB.DelaySamples,
		FractionalDelay:  d.PathB.FractionalDelay,
		FreqOffsetHz:     d.PathB.FreqOffsetHz,
		NoiseLevel:       d.NoiseLevel,
		HistoryLimit:     d.HistoryLimit,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// appConfig converts the flat persisted form into the pipeline configuration.
// The second path carries all the impairments; the first is the timing
// reference.
func (p persistentConfig) appConfig() (app.Config, error) {
	multipath, err := parseMultipath(p.Multipath)
	if err != nil {
		return app.Config{}, err
	}
	return app.Config{
		SampleRate:       p.SampleRate,
		SymbolCount:      p.SymbolCount,
		SamplesPerSymbol: p.SamplesPerSymbol,
		RRCTaps:          p.RRCTaps,
		RollOff:          p.RollOff,
		FracTaps:         p.FracTaps,
		InterpFactor:     p.InterpFactor,
		SearchWindow:     p.SearchWindow,
		Seed:             p.Seed,
		Source:           p.Source,
		PRNA:             p.PRNA,
		PRNB:             p.PRNB,
		PathB: channel.Impairments{
			DelaySamples:    p.DelaySamples,
			FractionalDelay: p.FractionalDelay,
			FreqOffsetHz:    p.FreqOffsetHz,
		},
		NoiseLevel:   p.NoiseLevel,
		Multipath:    multipath,
		HistoryLimit: p.HistoryLimit,
	}, nil
}

// parseMultipath reads a comma-separated impulse response, e.g. "1,0,0,0.4".
func parseMultipath(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("multipath tap %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func loadOrCreateConfig(path string) (persistentConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultPersistentConfig()
			if saveErr := saveConfig(path, cfg); saveErr != nil {
				return persistentConfig{}, saveErr
			}
			return cfg, nil
		}
		return persistentConfig{}, err
	}
	defer f.Close()

	var cfg persistentConfig
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return persistentConfig{}, err
	}
	return cfg, nil
}

func saveConfig(path string, cfg persistentConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func envFloat(lookup func(string) (string, bool), key string, def float64) float64 {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

func envInt(lookup func(string) (string, bool), key string, def int) int {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envInt64(lookup func(string) (string, bool), key string, def int64) int64 {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func envString(lookup func(string) (string, bool), key, def string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return def
}
