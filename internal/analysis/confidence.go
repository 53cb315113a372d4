// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TempoConfidence scores how regular a sequence of inter-beat intervals is.
// Implementations return a value in [0, 1].
type TempoConfidence interface {
	Score(intervals []float64) float64
}

// KeyConfidence scores how clearly the best key profile beat the runner-up.
// Implementations return a value in [0, 1].
type KeyConfidence interface {
	Score(best, second float64) float64
}

// IntervalVariance maps the normalised variance of beat intervals
// (variance / mean^2) linearly onto [0, 1]: zero variance scores 1 and
// MaxVariance or more scores 0.
type IntervalVariance struct {
	MaxVariance float64
}

// DefaultIntervalVariance is tuned so that intervals drawn uniformly from
// +/- 25% of the period (what beat tracking yields on noise) score about 0.
var DefaultIntervalVariance = IntervalVariance{MaxVariance: 0.02}

func (s IntervalVariance) Score(intervals []float64) float64 {
	if len(intervals) < 2 || s.MaxVariance <= 0 {
		return 0
	}
	mean, variance := stat.MeanVariance(intervals, nil)
	if mean <= 0 || math.IsNaN(variance) {
		return 0
	}
	return 1 - clamp(variance/(mean*mean)/s.MaxVariance, 0, 1)
}

// CorrelationMargin scores the gap between the two best correlations relative
// to the room left above the runner-up: (best - second) / (1 - second).
// A chroma that matches a profile exactly scores 1; a flat or noisy chroma,
// where the best few profiles correlate almost equally, scores near 0.
type CorrelationMargin struct{}

func (CorrelationMargin) Score(best, second float64) float64 {
	if math.IsNaN(best) || math.IsNaN(second) || best <= 0 {
		return 0
	}
	room := 1 - second
	if room <= 1e-12 {
		return 0
	}
	return clamp((best-second)/room, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

var (
	_ TempoConfidence = IntervalVariance{}
	_ KeyConfidence   = CorrelationMargin{}
)
