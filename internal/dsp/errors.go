package dsp

import "errors"

// Sentinel errors for local validation failures. Callers wrap these with %w so
// errors.Is works across package boundaries. None of these are retryable; the
// pipeline has no external resources to retry against.
var (
	// ErrInvalidParameter reports a malformed filter or pipeline parameter,
	// such as an even kernel length, a roll-off outside (0,1), or an
	// interpolation factor below 1.
	ErrInvalidParameter = errors.New("dsp: invalid parameter")

	// ErrDimensionMismatch reports two sequences whose lengths are
	// incompatible for the requested operation.
	ErrDimensionMismatch = errors.New("dsp: dimension mismatch")
)
