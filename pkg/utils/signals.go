// SPDX-License-Identifier: MIT

// Package utils generates deterministic test signals.
package utils

import (
	"math"
	"math/rand/v2"
)

// Sine returns seconds of a sine wave at freq Hz with the given amplitude.
func Sine(seconds float64, sampleRate int, freq, amplitude float64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = amplitude * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

// Chord sums equal-amplitude sines at each frequency, scaled so the peak stays
// within amplitude.
func Chord(seconds float64, sampleRate int, amplitude float64, freqs ...float64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	if len(freqs) == 0 {
		return out
	}
	scale := amplitude / float64(len(freqs))
	for _, f := range freqs {
		for i := range out {
			t := float64(i) / float64(sampleRate)
			out[i] += scale * math.Sin(2*math.Pi*f*t)
		}
	}
	return out
}

// ClickTrack returns seconds of silence with a short decaying noise burst on
// every beat at bpm. The first click is at t = 0.
func ClickTrack(seconds float64, sampleRate int, bpm float64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	period := 60 / bpm * float64(sampleRate)
	clickLen := sampleRate / 100 // 10 ms
	rng := rand.New(rand.NewPCG(1, 2))

	for beat := 0; ; beat++ {
		start := int(math.Round(float64(beat) * period))
		if start >= n {
			break
		}
		for i := 0; i < clickLen && start+i < n; i++ {
			decay := math.Exp(-5 * float64(i) / float64(clickLen))
			out[start+i] = decay * (2*rng.Float64() - 1)
		}
	}
	return out
}

// Noise returns seconds of uniform white noise in [-amplitude, amplitude]
// from a fixed seed.
func Noise(seconds float64, sampleRate int, amplitude float64, seed uint64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}
	return out
}

// Interleave zips equal-length channels into one interleaved slice. The result
// is as long as the shortest channel.
func Interleave(channels ...[]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	for _, c := range channels[1:] {
		frames = min(frames, len(c))
	}
	out := make([]float64, frames*len(channels))
	for i := range frames {
		for c, ch := range channels {
			out[i*len(channels)+c] = ch[i]
		}
	}
	return out
}

// FindPeakBin returns the index of the largest magnitude in [startBin, endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	startBin = max(startBin, 0)
	endBin = min(endBin, len(magnitudes)-1)

	peak := startBin
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > magnitudes[peak] {
			peak = bin
		}
	}
	return peak
}
