// Package telemetry publishes delay estimates to log output and to a small
// HTTP hub with history and live streaming endpoints.
package telemetry

import (
	"time"

	"github.com/rjboer/GoRanging/internal/logging"
)

// Sample captures one delay estimate for reporting.
type Sample struct {
	Timestamp    time.Time `json:"timestamp"`
	Trial        int       `json:"trial"`
	DelaySamples float64   `json:"delaySamples"`
	DelaySeconds float64   `json:"delaySeconds"`
	PeakLagA     int       `json:"peakLagA"`
	PeakLagB     int       `json:"peakLagB"`
}

// Reporter captures telemetry events.
type Reporter interface {
	Report(s Sample)
}

// MultiReporter fans out telemetry to multiple destinations.
type MultiReporter []Reporter

// Report forwards the sample to each configured reporter.
func (m MultiReporter) Report(s Sample) {
	for _, r := range m {
		if r != nil {
			r.Report(s)
		}
	}
}

// LogReporter writes estimates through the structured logger.
type LogReporter struct {
	logger logging.Logger
}

// NewLogReporter builds a log-backed reporter. A nil logger falls back to the
// process default.
func NewLogReporter(logger logging.Logger) LogReporter {
	if logger == nil {
		logger = logging.Default()
	}
	return LogReporter{logger: logger}
}

func (r LogReporter) Report(s Sample) {
	r.logger.Info("delay estimate",
		logging.F("trial", s.Trial),
		logging.F("delay_samples", s.DelaySamples),
		logging.F("delay_seconds", s.DelaySeconds),
		logging.F("peak_lag_a", s.PeakLagA),
		logging.F("peak_lag_b", s.PeakLagB),
	)
}
