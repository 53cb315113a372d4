// SPDX-License-Identifier: MIT
package features

import "fmt"

// AmbiguousConfidence is the confidence below which a tempo or key estimate
// should be presented as uncertain.
const AmbiguousConfidence = 0.4

// TempoResult is the raw beat-period estimate of a track.
type TempoResult struct {
	RawBPM     float64
	Confidence float64
}

// Ambiguous reports whether the estimate is too uncertain to act on.
func (t TempoResult) Ambiguous() bool {
	return t.Confidence < AmbiguousConfidence
}

// RangeCheck is the tri-state outcome of checking a tempo against a genre.
type RangeCheck int

const (
	RangeUnknown RangeCheck = iota // no genre given
	RangeOK
	RangeOutside
)

func (r RangeCheck) String() string {
	switch r {
	case RangeOK:
		return "ok"
	case RangeOutside:
		return "outside"
	default:
		return "unknown"
	}
}

// Bool converts the check to an optional boolean, nil meaning unknown.
func (r RangeCheck) Bool() *bool {
	if r == RangeUnknown {
		return nil
	}
	ok := r == RangeOK
	return &ok
}

// CorrectedBPM is a raw tempo after half-time correction. BPM is always either
// OriginalBPM or exactly twice it.
type CorrectedBPM struct {
	BPM         float64
	OriginalBPM float64
	Corrected   bool
	GenreRange  RangeCheck
	Genre       Genre
	Confidence  float64 // carried over from the TempoResult, 0 when unknown
}

// Reason describes the correction for display, empty when none was applied.
func (c CorrectedBPM) Reason() string {
	if !c.Corrected {
		return ""
	}
	return fmt.Sprintf("half-time detected: %.1f BPM doubled to %.1f BPM", c.OriginalBPM, c.BPM)
}
