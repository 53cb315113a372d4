// SPDX-License-Identifier: MIT
package features

// LoudnessResult is produced by an EBU R128 meter.
type LoudnessResult struct {
	IntegratedLUFS float64
	TruePeakDBTP   float64
	LRA            float64
	ShortTermMax   float64
	ShortTermMin   float64
}

// Snapshot aggregates every feature measured on one track. Tempo and Key are
// nil when they were not analysed.
type Snapshot struct {
	Name     string
	Loudness LoudnessResult
	Tempo    *CorrectedBPM
	Key      *KeyResult
	Spectral SpectralResult
}
