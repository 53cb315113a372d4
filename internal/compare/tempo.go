// SPDX-License-Identifier: MIT
package compare

import (
	"fmt"
	"math"

	"mixref/internal/features"
)

// BPMDiff compares corrected tempos.
type BPMDiff struct {
	MixBPM       float64
	ReferenceBPM float64
	DiffBPM      float64
	PctDiff      float64 // relative to the reference
	Significant  bool
	Suggestion   string
}

// CompareBPM diffs two corrected tempos. The difference is significant when it
// strictly exceeds the BPM threshold, as a percentage of the reference tempo.
func (e *Engine) CompareBPM(mix, ref features.CorrectedBPM) (BPMDiff, error) {
	if ref.BPM <= 0 {
		return BPMDiff{}, features.WithSide(features.NewError(features.ErrInvalidInput, "tempo", "BPM must be positive"), features.SideReference)
	}
	d := BPMDiff{
		MixBPM:       mix.BPM,
		ReferenceBPM: ref.BPM,
		DiffBPM:      mix.BPM - ref.BPM,
	}
	d.PctDiff = d.DiffBPM / ref.BPM * 100
	d.Significant = math.Abs(d.PctDiff) > e.Thresholds.BPMPct
	if d.Significant {
		word := "faster"
		if d.DiffBPM < 0 {
			word = "slower"
		}
		d.Suggestion = fmt.Sprintf("💡 Tempo is %.1f%% %s than the reference (%.1f vs %.1f BPM). Match the grid before comparing groove and energy.",
			math.Abs(d.PctDiff), word, mix.BPM, ref.BPM)
	}
	return d, nil
}
