// SPDX-License-Identifier: MIT

// Package compare diffs two feature snapshots, a mix and a reference, and
// turns the significant differences into mastering suggestions.
package compare

import (
	"fmt"
	"math"

	"mixref/internal/features"
)

// Default significance thresholds.
const (
	DefaultLoudnessToleranceLU = 1.0 // |diff| at or below is a match
	DefaultSpectralThreshold   = 3.0 // percentage points, strict
	DefaultBPMThreshold        = 3.0 // percent, strict
	DefaultClippingMarginDB    = 1.0 // mix true peak at or above -margin dBTP
	DefaultLoudnessNoteLU      = 2.0 // loudness gap worth a note, strict
)

// Thresholds configures when a difference counts.
type Thresholds struct {
	LoudnessToleranceLU float64
	SpectralPct         float64
	BPMPct              float64
	ClippingMarginDB    float64
	LoudnessNoteLU      float64
}

// DefaultThresholds returns the standard comparison thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LoudnessToleranceLU: DefaultLoudnessToleranceLU,
		SpectralPct:         DefaultSpectralThreshold,
		BPMPct:              DefaultBPMThreshold,
		ClippingMarginDB:    DefaultClippingMarginDB,
		LoudnessNoteLU:      DefaultLoudnessNoteLU,
	}
}

// Validate rejects negative thresholds.
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"loudness tolerance": t.LoudnessToleranceLU,
		"spectral threshold": t.SpectralPct,
		"bpm threshold":      t.BPMPct,
		"clipping margin":    t.ClippingMarginDB,
		"loudness note":      t.LoudnessNoteLU,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%s must be non-negative, got %v", name, v)
		}
	}
	return nil
}

// Result is the full comparison of a mix against a reference. BPM and Key are
// nil unless requested.
type Result struct {
	MixName       string
	ReferenceName string
	Loudness      LoudnessDiff
	Spectral      SpectralDiff
	BPM           *BPMDiff
	Key           *KeyDiff

	// Suggestions lists spectral suggestions from low to high band, then the
	// tempo suggestion, then the key suggestion.
	Suggestions []string
}

// Engine compares snapshots. It holds no state beyond its thresholds.
type Engine struct {
	Thresholds Thresholds
}

// NewEngine returns an engine using t.
func NewEngine(t Thresholds) *Engine {
	return &Engine{Thresholds: t}
}

// CompareTracks compares loudness and spectral balance, and tempo and key when
// asked. A requested feature missing from either snapshot fails with
// features.ErrMissingFeature naming the side.
func (e *Engine) CompareTracks(mix, ref features.Snapshot, includeBPM, includeKey bool) (Result, error) {
	res := Result{
		MixName:       mix.Name,
		ReferenceName: ref.Name,
		Loudness:      e.CompareLoudness(mix.Loudness, ref.Loudness),
		Spectral:      e.CompareSpectral(mix.Spectral, ref.Spectral),
	}
	res.Suggestions = append(res.Suggestions, res.Spectral.Suggestions()...)

	if includeBPM {
		if err := requireFeature(mix.Tempo != nil, ref.Tempo != nil, "tempo"); err != nil {
			return Result{}, err
		}
		diff, err := e.CompareBPM(*mix.Tempo, *ref.Tempo)
		if err != nil {
			return Result{}, err
		}
		res.BPM = &diff
		if diff.Suggestion != "" {
			res.Suggestions = append(res.Suggestions, diff.Suggestion)
		}
	}

	if includeKey {
		if err := requireFeature(mix.Key != nil, ref.Key != nil, "key"); err != nil {
			return Result{}, err
		}
		diff := e.CompareKey(*mix.Key, *ref.Key)
		res.Key = &diff
		if diff.Suggestion != "" {
			res.Suggestions = append(res.Suggestions, diff.Suggestion)
		}
	}

	return res, nil
}

func requireFeature(mixHas, refHas bool, metric string) error {
	switch {
	case !mixHas:
		return features.WithSide(features.NewError(features.ErrMissingFeature, metric, "not analyzed"), features.SideMix)
	case !refHas:
		return features.WithSide(features.NewError(features.ErrMissingFeature, metric, "not analyzed"), features.SideReference)
	}
	return nil
}
