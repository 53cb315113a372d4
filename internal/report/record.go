// SPDX-License-Identifier: MIT

// Package report turns snapshots and comparisons into JSON records and
// terminal tables.
package report

import (
	"encoding/json"
	"io"

	"mixref/internal/compare"
	"mixref/internal/features"
)

type LoudnessRecord struct {
	IntegratedLUFS float64 `json:"integrated_lufs"`
	TruePeakDBTP   float64 `json:"true_peak_dbtp"`
	LRA            float64 `json:"lra"`
	ShortTermMax   float64 `json:"short_term_max"`
	ShortTermMin   float64 `json:"short_term_min"`
}

type TempoRecord struct {
	BPM          float64 `json:"bpm"`
	Confidence   float64 `json:"confidence"`
	Corrected    bool    `json:"corrected"`
	OriginalBPM  float64 `json:"original_bpm"`
	GenreRangeOK *bool   `json:"genre_range_ok"`
	Reason       string  `json:"reason,omitempty"`
}

type KeyRecord struct {
	KeyName        string   `json:"key_name"`
	CamelotCode    string   `json:"camelot_code"`
	Confidence     float64  `json:"confidence"`
	CompatibleKeys []string `json:"compatible_keys"`
}

type BandRecord struct {
	Name      string  `json:"name"`
	LowHz     float64 `json:"low_hz"`
	HighHz    float64 `json:"high_hz"`
	EnergyDB  float64 `json:"energy_db"`
	EnergyPct float64 `json:"energy_pct"`
}

type SpectralRecord struct {
	Bands         []BandRecord `json:"bands"`
	TotalEnergyDB float64      `json:"total_energy_db"`
}

type TargetRecord struct {
	Name       string  `json:"name"`
	TargetLUFS float64 `json:"target_lufs"`
	Diff       float64 `json:"diff"`
	Status     string  `json:"status"`
	Message    string  `json:"message"`
}

// AnalysisRecord is the JSON form of a single-track analysis.
type AnalysisRecord struct {
	Name     string         `json:"name"`
	Loudness LoudnessRecord `json:"loudness"`
	Tempo    *TempoRecord   `json:"tempo,omitempty"`
	Key      *KeyRecord     `json:"key,omitempty"`
	Spectral SpectralRecord `json:"spectral"`
	Targets  []TargetRecord `json:"targets,omitempty"`
}

// NewAnalysisRecord flattens a snapshot and any target checks.
func NewAnalysisRecord(s features.Snapshot, targets []compare.TargetCheck) AnalysisRecord {
	rec := AnalysisRecord{
		Name:     s.Name,
		Loudness: LoudnessRecord(s.Loudness),
		Spectral: spectralRecord(s.Spectral),
	}
	if s.Tempo != nil {
		rec.Tempo = tempoRecord(*s.Tempo)
	}
	if s.Key != nil {
		rec.Key = keyRecord(*s.Key)
	}
	for _, t := range targets {
		rec.Targets = append(rec.Targets, TargetRecord{
			Name:       t.Name,
			TargetLUFS: t.TargetLUFS,
			Diff:       t.Diff,
			Status:     t.Status.String(),
			Message:    t.Message,
		})
	}
	return rec
}

func tempoRecord(c features.CorrectedBPM) *TempoRecord {
	return &TempoRecord{
		BPM:          c.BPM,
		Confidence:   c.Confidence,
		Corrected:    c.Corrected,
		OriginalBPM:  c.OriginalBPM,
		GenreRangeOK: c.GenreRange.Bool(),
		Reason:       c.Reason(),
	}
}

func keyRecord(k features.KeyResult) *KeyRecord {
	rec := &KeyRecord{
		KeyName:     k.Name,
		CamelotCode: k.Camelot.String(),
		Confidence:  k.Confidence,
	}
	for _, c := range k.Compatible {
		rec.CompatibleKeys = append(rec.CompatibleKeys, c.String())
	}
	return rec
}

func spectralRecord(s features.SpectralResult) SpectralRecord {
	rec := SpectralRecord{
		Bands:         make([]BandRecord, 0, features.NumBands),
		TotalEnergyDB: s.TotalEnergyDB,
	}
	for _, b := range s.Bands {
		rec.Bands = append(rec.Bands, BandRecord(b))
	}
	return rec
}

type LoudnessDiffRecord struct {
	MixLUFS       float64  `json:"mix_lufs"`
	ReferenceLUFS float64  `json:"reference_lufs"`
	DiffLUFS      float64  `json:"diff_lufs"`
	Status        string   `json:"status"`
	MixPeak       float64  `json:"mix_peak"`
	ReferencePeak float64  `json:"reference_peak"`
	PeakDiff      float64  `json:"peak_diff"`
	ClippingRisk  bool     `json:"clipping_risk"`
	MixLRA        float64  `json:"mix_lra"`
	ReferenceLRA  float64  `json:"reference_lra"`
	LRADiff       float64  `json:"lra_diff"`
	Notes         []string `json:"notes"`
}

type BandDiffRecord struct {
	Name         string            `json:"name"`
	MixPct       float64           `json:"mix_pct"`
	ReferencePct float64           `json:"reference_pct"`
	DiffPct      float64           `json:"diff_pct"`
	Significant  bool              `json:"significant"`
	Direction    compare.Direction `json:"direction"`
}

type BPMDiffRecord struct {
	MixBPM       float64 `json:"mix_bpm"`
	ReferenceBPM float64 `json:"reference_bpm"`
	DiffBPM      float64 `json:"diff_bpm"`
	PctDiff      float64 `json:"pct_diff"`
	Significant  bool    `json:"significant"`
}

type KeyDiffRecord struct {
	MixKey           string             `json:"mix_key"`
	MixCamelot       string             `json:"mix_camelot"`
	ReferenceKey     string             `json:"reference_key"`
	ReferenceCamelot string             `json:"reference_camelot"`
	Verdict          compare.KeyVerdict `json:"verdict"`
}

// ComparisonRecord is the JSON form of a comparison.
type ComparisonRecord struct {
	Mix       string             `json:"mix"`
	Reference string             `json:"reference"`
	Loudness  LoudnessDiffRecord `json:"loudness"`
	Spectral  struct {
		Bands []BandDiffRecord `json:"bands"`
	} `json:"spectral"`
	BPM         *BPMDiffRecord `json:"bpm,omitempty"`
	Key         *KeyDiffRecord `json:"key,omitempty"`
	Suggestions []string       `json:"suggestions"`
}

// NewComparisonRecord flattens a comparison result. Suggestions and notes are
// always arrays, never null.
func NewComparisonRecord(r compare.Result) ComparisonRecord {
	l := r.Loudness
	rec := ComparisonRecord{
		Mix:       r.MixName,
		Reference: r.ReferenceName,
		Loudness: LoudnessDiffRecord{
			MixLUFS:       l.MixLUFS,
			ReferenceLUFS: l.ReferenceLUFS,
			DiffLUFS:      l.DiffLUFS,
			Status:        l.Status.String(),
			MixPeak:       l.MixPeak,
			ReferencePeak: l.ReferencePeak,
			PeakDiff:      l.PeakDiff,
			ClippingRisk:  l.ClippingRisk,
			MixLRA:        l.MixLRA,
			ReferenceLRA:  l.ReferenceLRA,
			LRADiff:       l.LRADiff,
			Notes:         append([]string{}, l.Notes...),
		},
		Suggestions: append([]string{}, r.Suggestions...),
	}
	for _, b := range r.Spectral.Bands {
		rec.Spectral.Bands = append(rec.Spectral.Bands, BandDiffRecord{
			Name:         b.Name,
			MixPct:       b.MixPct,
			ReferencePct: b.ReferencePct,
			DiffPct:      b.DiffPct,
			Significant:  b.Significant,
			Direction:    b.Direction,
		})
	}
	if r.BPM != nil {
		rec.BPM = &BPMDiffRecord{
			MixBPM:       r.BPM.MixBPM,
			ReferenceBPM: r.BPM.ReferenceBPM,
			DiffBPM:      r.BPM.DiffBPM,
			PctDiff:      r.BPM.PctDiff,
			Significant:  r.BPM.Significant,
		}
	}
	if r.Key != nil {
		rec.Key = &KeyDiffRecord{
			MixKey:           r.Key.Mix.Name,
			MixCamelot:       r.Key.Mix.Camelot.String(),
			ReferenceKey:     r.Key.Reference.Name,
			ReferenceCamelot: r.Key.Reference.Camelot.String(),
			Verdict:          r.Key.Verdict,
		}
	}
	return rec
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
