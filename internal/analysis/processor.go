// SPDX-License-Identifier: MIT
package analysis

import (
	"context"

	"mixref/internal/features"
)

// Frontend supplies the low-level spectral representations the detectors work
// on. All methods take a mono signal; any conforming DSP implementation can be
// substituted, which lets the detectors be tested with synthetic fixtures.
type Frontend interface {
	// STFT returns the magnitude spectrogram of the signal.
	STFT(mono []float64, sampleRate int) (features.Spectrogram, error)
	// Chroma returns the pitch-class energy summed over the whole signal.
	Chroma(mono []float64, sampleRate int) (features.Chroma, error)
	// OnsetStrength returns the onset envelope used for beat tracking.
	OnsetStrength(mono []float64, sampleRate int) (features.Envelope, error)
}

// LoudnessMeter measures EBU R128 loudness. The buffer is passed with its
// original channel layout since channel weighting is part of the measurement.
type LoudnessMeter interface {
	Measure(ctx context.Context, buf features.Buffer) (features.LoudnessResult, error)
}
