// SPDX-License-Identifier: MIT
package compare

import (
	"fmt"
	"math"

	"mixref/internal/features"
)

// LoudnessStatus classifies the integrated loudness difference.
type LoudnessStatus int

const (
	LoudnessMatch LoudnessStatus = iota
	LoudnessLouder
	LoudnessQuieter
)

func (s LoudnessStatus) String() string {
	switch s {
	case LoudnessLouder:
		return "louder"
	case LoudnessQuieter:
		return "quieter"
	default:
		return "match"
	}
}

// Icon returns the status marker shown next to the difference.
func (s LoudnessStatus) Icon() string {
	switch s {
	case LoudnessLouder:
		return "🔺"
	case LoudnessQuieter:
		return "🔻"
	default:
		return "✅"
	}
}

// LoudnessDiff compares integrated loudness, true peak and loudness range.
// Every Diff field is mix minus reference.
type LoudnessDiff struct {
	MixLUFS       float64
	ReferenceLUFS float64
	DiffLUFS      float64
	Status        LoudnessStatus

	MixPeak       float64
	ReferencePeak float64
	PeakDiff      float64
	ClippingRisk  bool

	MixLRA       float64
	ReferenceLRA float64
	LRADiff      float64

	// Notes holds loudness and clipping advice. It is kept apart from the
	// ordered suggestion list.
	Notes []string
}

// Magnitude is the absolute loudness difference in LU.
func (d LoudnessDiff) Magnitude() float64 {
	return math.Abs(d.DiffLUFS)
}

// CompareLoudness diffs two loudness measurements.
func (e *Engine) CompareLoudness(mix, ref features.LoudnessResult) LoudnessDiff {
	t := e.Thresholds
	d := LoudnessDiff{
		MixLUFS:       mix.IntegratedLUFS,
		ReferenceLUFS: ref.IntegratedLUFS,
		DiffLUFS:      mix.IntegratedLUFS - ref.IntegratedLUFS,
		MixPeak:       mix.TruePeakDBTP,
		ReferencePeak: ref.TruePeakDBTP,
		PeakDiff:      mix.TruePeakDBTP - ref.TruePeakDBTP,
		MixLRA:        mix.LRA,
		ReferenceLRA:  ref.LRA,
		LRADiff:       mix.LRA - ref.LRA,
	}

	switch {
	case d.Magnitude() <= t.LoudnessToleranceLU:
		d.Status = LoudnessMatch
	case d.DiffLUFS > 0:
		d.Status = LoudnessLouder
	default:
		d.Status = LoudnessQuieter
	}

	d.ClippingRisk = mix.TruePeakDBTP >= -t.ClippingMarginDB

	switch {
	case d.DiffLUFS < -t.LoudnessNoteLU:
		d.Notes = append(d.Notes, fmt.Sprintf("💡 Your track is %.1f dB quieter. Consider increasing gain or limiting.", -d.DiffLUFS))
	case d.DiffLUFS > t.LoudnessNoteLU:
		d.Notes = append(d.Notes, fmt.Sprintf("💡 Your track is %.1f dB louder. May cause clipping or fatigue.", d.DiffLUFS))
	}
	if d.ClippingRisk {
		d.Notes = append(d.Notes, fmt.Sprintf("⚠️ True peak is %.1f dBTP (within %.1f dB of 0 dBTP). Risk of clipping on some systems.", mix.TruePeakDBTP, t.ClippingMarginDB))
	}
	return d
}
