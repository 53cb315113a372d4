// SPDX-License-Identifier: MIT
package compare

import (
	"fmt"
	"math"

	"mixref/internal/features"
)

// Direction says which way a band moved relative to the reference.
type Direction int

const (
	Lower Direction = iota
	Higher
)

func (d Direction) String() string {
	if d == Higher {
		return "higher"
	}
	return "lower"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Where to reach for an EQ, per band.
var bandHints = map[string]string{
	"Sub":  "20-60 Hz",
	"Low":  "60-250 Hz",
	"Mid":  "250-2000 Hz",
	"High": "2-8 kHz",
	"Air":  "8-20 kHz",
}

// BandDiff is one band of a spectral comparison.
type BandDiff struct {
	Name         string
	MixPct       float64
	ReferencePct float64
	DiffPct      float64
	Significant  bool
	Direction    Direction
	Suggestion   string // empty unless Significant
}

// SpectralDiff compares the five bands, low to high.
type SpectralDiff struct {
	Bands [features.NumBands]BandDiff
}

// Suggestions returns the suggestion of each significant band, low to high.
func (s SpectralDiff) Suggestions() []string {
	var out []string
	for _, b := range s.Bands {
		if b.Suggestion != "" {
			out = append(out, b.Suggestion)
		}
	}
	return out
}

// CompareSpectral diffs band energy shares. A band is significant when the
// difference strictly exceeds the spectral threshold.
func (e *Engine) CompareSpectral(mix, ref features.SpectralResult) SpectralDiff {
	var out SpectralDiff
	for i := range features.NumBands {
		m, r := mix.Bands[i], ref.Bands[i]
		d := BandDiff{
			Name:         features.BandNames[i],
			MixPct:       m.EnergyPct,
			ReferencePct: r.EnergyPct,
			DiffPct:      m.EnergyPct - r.EnergyPct,
		}
		if d.DiffPct > 0 {
			d.Direction = Higher
		}
		d.Significant = math.Abs(d.DiffPct) > e.Thresholds.SpectralPct
		if d.Significant {
			d.Suggestion = bandSuggestion(d)
		}
		out.Bands[i] = d
	}
	return out
}

func bandSuggestion(d BandDiff) string {
	hint := bandHints[d.Name]
	if d.Direction == Higher {
		return fmt.Sprintf("💡 %s band is %.1f%% higher. Consider cutting around %s.", d.Name, d.DiffPct, hint)
	}
	return fmt.Sprintf("💡 %s band is %.1f%% lower. Boost around %s.", d.Name, -d.DiffPct, hint)
}
