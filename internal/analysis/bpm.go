// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"mixref/internal/features"
)

// HalfTimeThreshold is the tempo below which a detection is assumed to have
// locked onto half the real tempo. The comparison is strict: exactly 100 BPM
// is left alone.
const HalfTimeThreshold = 100.0

// CorrectBPM applies half-time correction to a raw tempo and, when genre is not
// GenreNone, checks the result against the genre range (bounds inclusive).
// The returned BPM is always raw or exactly 2*raw.
func CorrectBPM(raw float64, genre features.Genre) (features.CorrectedBPM, error) {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return features.CorrectedBPM{}, features.NewError(features.ErrInvalidInput, "tempo", "raw BPM must be positive")
	}

	out := features.CorrectedBPM{
		BPM:         raw,
		OriginalBPM: raw,
		Genre:       genre,
	}
	if raw < HalfTimeThreshold {
		out.BPM = raw * 2
		out.Corrected = true
	}

	if genre == features.GenreNone {
		return out, nil
	}
	profile, ok := genre.Profile()
	if !ok {
		return features.CorrectedBPM{}, features.NewError(features.ErrInvalidInput, "genre", "unknown genre "+string(genre))
	}
	if profile.Contains(out.BPM) {
		out.GenreRange = features.RangeOK
	} else {
		out.GenreRange = features.RangeOutside
	}
	return out, nil
}

// CorrectTempo corrects a detector result, keeping its confidence.
func CorrectTempo(t features.TempoResult, genre features.Genre) (features.CorrectedBPM, error) {
	out, err := CorrectBPM(t.RawBPM, genre)
	if err != nil {
		return out, err
	}
	out.Confidence = t.Confidence
	return out, nil
}
