// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"

	"mixref/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectBPM(t *testing.T) {
	tests := []struct {
		name      string
		raw       float64
		genre     features.Genre
		bpm       float64
		corrected bool
		rng       features.RangeCheck
	}{
		{"dnb half time", 85, features.GenreDnB, 170, true, features.RangeOK},
		{"no genre", 68, features.GenreNone, 136, true, features.RangeUnknown},
		{"threshold not corrected", 100, features.GenreNone, 100, false, features.RangeUnknown},
		{"just below threshold", 99.9, features.GenreNone, 199.8, true, features.RangeUnknown},
		{"house in range", 124, features.GenreHouse, 124, false, features.RangeOK},
		{"house lower bound", 118, features.GenreHouse, 118, false, features.RangeOK},
		{"house upper bound", 128, features.GenreHouse, 128, false, features.RangeOK},
		{"techno outside", 150, features.GenreTechno, 150, false, features.RangeOutside},
		{"doubled outside", 95, features.GenreDnB, 190, true, features.RangeOutside},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CorrectBPM(tt.raw, tt.genre)
			require.NoError(t, err)
			assert.InDelta(t, tt.bpm, got.BPM, 1e-9)
			assert.Equal(t, tt.raw, got.OriginalBPM)
			assert.Equal(t, tt.corrected, got.Corrected)
			assert.Equal(t, tt.rng, got.GenreRange)
			assert.True(t, got.BPM == tt.raw || got.BPM == 2*tt.raw)
		})
	}
}

func TestCorrectBPMInvalid(t *testing.T) {
	for _, raw := range []float64{0, -120, math.NaN(), math.Inf(1)} {
		_, err := CorrectBPM(raw, features.GenreNone)
		assert.ErrorIs(t, err, features.ErrInvalidInput, "raw=%v", raw)
	}

	_, err := CorrectBPM(128, features.Genre("polka"))
	assert.ErrorIs(t, err, features.ErrInvalidInput)
}

func TestCorrectTempoKeepsConfidence(t *testing.T) {
	got, err := CorrectTempo(features.TempoResult{RawBPM: 87, Confidence: 0.8}, features.GenreDnB)
	require.NoError(t, err)
	assert.Equal(t, 174.0, got.BPM)
	assert.Equal(t, 0.8, got.Confidence)
	assert.Contains(t, got.Reason(), "doubled")
}
