// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"mixref/internal/features"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Tempo detection limits.
const (
	DefaultMinDuration = 2.0   // seconds of signal needed for tempo or key
	DefaultMinBPM      = 60.0  // slowest beat period searched
	DefaultMaxBPM      = 200.0 // fastest beat period searched
	DefaultTempoBPM    = 120.0 // reported for signals without any onsets
)

// TempoDetector estimates the tempo of an onset envelope.
//
// The beat period is the autocorrelation lag with the highest score inside
// [MinBPM, MaxBPM], weighted by a log-normal prior centred on PriorBPM (one
// octave standard deviation) so that a period and its double do not tie.
// Beats are then tracked one period at a time, snapping to the strongest onset
// within a quarter period of the expected position, and the raw BPM is taken
// from the mean inter-beat interval.
type TempoDetector struct {
	MinDuration float64
	MinBPM      float64
	MaxBPM      float64
	PriorBPM    float64
	Confidence  TempoConfidence
}

// NewTempoDetector returns a detector with the default limits and the
// interval-variance confidence score.
func NewTempoDetector() *TempoDetector {
	return &TempoDetector{
		MinDuration: DefaultMinDuration,
		MinBPM:      DefaultMinBPM,
		MaxBPM:      DefaultMaxBPM,
		PriorBPM:    DefaultTempoBPM,
		Confidence:  DefaultIntervalVariance,
	}
}

// Detect returns the raw tempo and its confidence. Envelopes covering less
// than MinDuration are rejected with ErrInsufficientSignal.
func (d *TempoDetector) Detect(env features.Envelope) (features.TempoResult, error) {
	if env.FrameRate > 0 && len(env.Values) > 0 && env.Duration() < d.MinDuration {
		return features.TempoResult{}, features.NewError(features.ErrInsufficientSignal, "tempo", "signal shorter than minimum analyzable duration")
	}
	return d.detect(env)
}

func (d *TempoDetector) detect(env features.Envelope) (features.TempoResult, error) {
	if env.FrameRate <= 0 {
		return features.TempoResult{}, features.NewError(features.ErrInvalidInput, "tempo", "envelope frame rate must be positive")
	}
	if len(env.Values) == 0 {
		return features.TempoResult{}, features.NewError(features.ErrEmptyBuffer, "tempo", "")
	}

	minLag := int(math.Floor(60 * env.FrameRate / d.MaxBPM))
	maxLag := int(math.Ceil(60 * env.FrameRate / d.MinBPM))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag > len(env.Values)-2 {
		maxLag = len(env.Values) - 2
	}
	if maxLag <= minLag {
		return features.TempoResult{}, features.NewError(features.ErrInsufficientSignal, "tempo", "envelope too short for the tempo search range")
	}

	centred := make([]float64, len(env.Values))
	copy(centred, env.Values)
	floats.AddConst(-stat.Mean(env.Values, nil), centred)
	if floats.Norm(centred, 2) < 1e-12 {
		// Silence or a constant envelope: nothing to lock onto.
		return features.TempoResult{RawBPM: d.PriorBPM, Confidence: 0}, nil
	}

	ac := autocorrelate(centred, maxLag+1)
	bestLag, bestScore := 0, math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		score := ac[lag] * d.prior(60*env.FrameRate/float64(lag))
		if score > bestScore {
			bestLag, bestScore = lag, score
		}
	}
	if bestScore <= 0 {
		return features.TempoResult{RawBPM: d.PriorBPM, Confidence: 0}, nil
	}

	period := refinePeak(ac, bestLag)
	intervals := trackBeats(env.Values, period, env.FrameRate)

	bpm := 60 * env.FrameRate / period
	if len(intervals) > 0 {
		if mean := stat.Mean(intervals, nil); mean > 0 {
			bpm = 60 / mean
		}
	}

	var confidence float64
	if d.Confidence != nil {
		confidence = clamp(d.Confidence.Score(intervals), 0, 1)
	}
	return features.TempoResult{RawBPM: bpm, Confidence: confidence}, nil
}

// prior weights a candidate tempo by its distance in octaves from PriorBPM.
func (d *TempoDetector) prior(bpm float64) float64 {
	if d.PriorBPM <= 0 {
		return 1
	}
	octaves := math.Log2(bpm / d.PriorBPM)
	return math.Exp(-0.5 * octaves * octaves)
}

// autocorrelate returns the unbiased autocorrelation for lags [0, maxLag).
func autocorrelate(x []float64, maxLag int) []float64 {
	ac := make([]float64, maxLag)
	for lag := range maxLag {
		n := len(x) - lag
		if n <= 0 {
			break
		}
		ac[lag] = floats.Dot(x[:n], x[lag:]) / float64(n)
	}
	return ac
}

// refinePeak interpolates a parabola through the peak and its neighbours to get
// a fractional lag.
func refinePeak(ac []float64, lag int) float64 {
	if lag <= 0 || lag >= len(ac)-1 {
		return float64(lag)
	}
	a, b, c := ac[lag-1], ac[lag], ac[lag+1]
	den := a - 2*b + c
	if den >= 0 {
		return float64(lag)
	}
	delta := 0.5 * (a - c) / den
	if math.Abs(delta) > 0.5 {
		return float64(lag)
	}
	return float64(lag) + delta
}

// trackBeats steps through the envelope one period at a time, snapping each beat
// to the strongest onset within a quarter period of where it was expected, and
// returns the inter-beat intervals in seconds.
func trackBeats(env []float64, period, frameRate float64) []float64 {
	n := len(env)
	first := argmax(env, 0, min(n-1, int(math.Ceil(period))))
	beats := []int{first}

	pos := float64(first)
	slack := period / 4
	for {
		expected := pos + period
		lo := int(math.Round(expected - slack))
		hi := int(math.Round(expected + slack))
		if hi >= n {
			break
		}
		next := argmax(env, lo, hi)
		if env[next]-floats.Min(env[lo:hi+1]) < 1e-12 {
			// Flat window, no onset to snap to.
			next = int(math.Round(expected))
		}
		beats = append(beats, next)
		pos = float64(next)
	}

	intervals := make([]float64, 0, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		intervals = append(intervals, float64(beats[i]-beats[i-1])/frameRate)
	}
	return intervals
}

// argmax returns the index of the largest value in x[lo:hi+1], first wins.
func argmax(x []float64, lo, hi int) int {
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best
}
