// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"mixref/internal/features"
)

const (
	// DefaultReferencePower is the 0 dB reference for band energies.
	DefaultReferencePower = 1.0
	// DefaultPowerFloor is added to band power before taking the logarithm so
	// silence reports a finite level instead of -Inf.
	DefaultPowerFloor = 1e-10
)

// SpectralAnalyzer folds a magnitude spectrogram into the five production
// bands. Band power is the sum of squared magnitudes of every bin whose centre
// frequency falls in the band, over every frame.
type SpectralAnalyzer struct {
	ReferencePower float64
	PowerFloor     float64
}

// NewSpectralAnalyzer returns an analyzer with a 1.0 power reference.
func NewSpectralAnalyzer() *SpectralAnalyzer {
	return &SpectralAnalyzer{
		ReferencePower: DefaultReferencePower,
		PowerFloor:     DefaultPowerFloor,
	}
}

// Analyze measures band energies. Energy outside 20 Hz - 20 kHz is ignored,
// including in the percentage denominator. A silent spectrogram yields 0% in
// every band.
func (a *SpectralAnalyzer) Analyze(spec features.Spectrogram) (features.SpectralResult, error) {
	if spec.BinHz <= 0 {
		return features.SpectralResult{}, features.NewError(features.ErrInvalidInput, "spectral", "bin width must be positive")
	}
	if len(spec.Frames) == 0 {
		return features.SpectralResult{}, features.NewError(features.ErrEmptyBuffer, "spectral", "")
	}

	// Bin to band assignment is the same for every frame.
	bins := 0
	for _, frame := range spec.Frames {
		bins = max(bins, len(frame))
	}
	bandOf := make([]int, bins)
	for k := range bandOf {
		bandOf[k] = BandIndex(spec.FrequencyForBin(k))
	}

	var power [features.NumBands]float64
	for _, frame := range spec.Frames {
		for k, mag := range frame {
			if b := bandOf[k]; b >= 0 {
				power[b] += mag * mag
			}
		}
	}

	var total float64
	for _, p := range power {
		total += p
	}

	var out features.SpectralResult
	for i, p := range power {
		band := features.SpectralBand{
			Name:     features.BandNames[i],
			LowHz:    features.BandEdges[i],
			HighHz:   features.BandEdges[i+1],
			EnergyDB: a.decibels(p),
		}
		if total > 0 {
			band.EnergyPct = 100 * p / total
		}
		out.Bands[i] = band
	}
	out.TotalEnergyDB = a.decibels(total)
	return out, nil
}

func (a *SpectralAnalyzer) decibels(power float64) float64 {
	ref := a.ReferencePower
	if ref <= 0 {
		ref = DefaultReferencePower
	}
	return 10 * math.Log10((power+a.PowerFloor)/ref)
}

// BandIndex returns the production band containing freq, or -1 when freq is
// outside 20 Hz - 20 kHz. Bands are half-open except the top one, which
// includes 20 kHz.
func BandIndex(freq float64) int {
	edges := features.BandEdges
	for i := range features.NumBands {
		if freq >= edges[i] && freq < edges[i+1] {
			return i
		}
	}
	if freq == edges[features.NumBands] {
		return features.NumBands - 1
	}
	return -1
}
