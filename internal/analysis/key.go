// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"mixref/internal/features"

	"gonum.org/v1/gonum/stat"
)

// Krumhansl-Schmuckler key profiles, index 0 = tonic.
var (
	majorProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

type keyProfile struct {
	tonic   features.PitchClass
	mode    features.Mode
	weights [12]float64
}

// KeyScore is the correlation of a chroma vector with one key profile.
type KeyScore struct {
	Tonic features.PitchClass
	Mode  features.Mode
	Score float64
}

// KeyDetector matches a chroma vector against the 24 major and minor key
// profiles. Profiles are visited tonic by tonic, major before minor, and the
// first of equal scores wins, so results are deterministic.
type KeyDetector struct {
	Confidence KeyConfidence
	profiles   [24]keyProfile
}

// NewKeyDetector builds the 24 rotated profiles and uses the correlation-margin
// confidence score.
func NewKeyDetector() *KeyDetector {
	d := &KeyDetector{Confidence: CorrelationMargin{}}
	for tonic := range 12 {
		for m, base := range [2][12]float64{majorProfile, minorProfile} {
			p := keyProfile{tonic: features.PitchClass(tonic), mode: features.Mode(m)}
			for i, w := range base {
				p.weights[(tonic+i)%12] = w
			}
			d.profiles[2*tonic+m] = p
		}
	}
	return d
}

// Scores returns the correlation of chroma with every profile. A flat chroma
// has no variance and correlates 0 with everything.
func (d *KeyDetector) Scores(chroma features.Chroma) [24]KeyScore {
	var out [24]KeyScore
	for i, p := range d.profiles {
		r := stat.Correlation(chroma[:], p.weights[:], nil)
		if math.IsNaN(r) {
			r = 0
		}
		out[i] = KeyScore{Tonic: p.tonic, Mode: p.mode, Score: r}
	}
	return out
}

// Detect returns the best-matching key for chroma.
func (d *KeyDetector) Detect(chroma features.Chroma) (features.KeyResult, error) {
	for _, v := range chroma {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return features.KeyResult{}, features.NewError(features.ErrInvalidInput, "key", "chroma values must be finite and non-negative")
		}
	}

	scores := d.Scores(chroma)
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Score > scores[best].Score {
			best = i
		}
	}
	second := math.Inf(-1)
	for i, s := range scores {
		if i != best && s.Score > second {
			second = s.Score
		}
	}

	var confidence float64
	if d.Confidence != nil {
		confidence = clamp(d.Confidence.Score(scores[best].Score, second), 0, 1)
	}
	return features.NewKeyResult(scores[best].Tonic, scores[best].Mode, confidence), nil
}
