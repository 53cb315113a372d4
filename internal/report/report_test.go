// SPDX-License-Identifier: MIT
package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"mixref/internal/capture"
	"mixref/internal/compare"
	"mixref/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(name string, lufs float64, pcts [features.NumBands]float64, bpm float64, key features.KeyResult) features.Snapshot {
	s := features.Snapshot{
		Name:     name,
		Loudness: features.LoudnessResult{IntegratedLUFS: lufs, TruePeakDBTP: -1.5, LRA: 5, ShortTermMax: lufs + 2, ShortTermMin: lufs - 6},
		Tempo:    &features.CorrectedBPM{BPM: bpm, OriginalBPM: bpm, Confidence: 0.9},
		Key:      &key,
	}
	for i := range features.NumBands {
		s.Spectral.Bands[i] = features.SpectralBand{
			Name:      features.BandNames[i],
			LowHz:     features.BandEdges[i],
			HighHz:    features.BandEdges[i+1],
			EnergyDB:  -10,
			EnergyPct: pcts[i],
		}
	}
	return s
}

var (
	flat   = [features.NumBands]float64{20, 20, 20, 20, 20}
	bright = [features.NumBands]float64{10, 20, 20, 30, 20}
)

func TestAnalysisRecordJSON(t *testing.T) {
	s := snapshot("mix.wav", -9.2, flat, 87, features.NewKeyResult(9, features.Minor, 0.8))
	s.Tempo = &features.CorrectedBPM{BPM: 174, OriginalBPM: 87, Corrected: true, GenreRange: features.RangeOK, Genre: features.GenreDnB, Confidence: 0.9}
	check, err := compare.CheckPlatform(-9.2, features.PlatformSpotify)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewAnalysisRecord(s, []compare.TargetCheck{check})))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	tempo := got["tempo"].(map[string]any)
	assert.Equal(t, 174.0, tempo["bpm"])
	assert.Equal(t, 87.0, tempo["original_bpm"])
	assert.Equal(t, true, tempo["corrected"])
	assert.Equal(t, true, tempo["genre_range_ok"])

	key := got["key"].(map[string]any)
	assert.Equal(t, "A minor", key["key_name"])
	assert.Equal(t, "8A", key["camelot_code"])
	assert.Equal(t, []any{"8B", "7A", "9A"}, key["compatible_keys"])

	bands := got["spectral"].(map[string]any)["bands"].([]any)
	require.Len(t, bands, features.NumBands)
	sub := bands[0].(map[string]any)
	assert.Equal(t, "Sub", sub["name"])
	assert.Equal(t, 20.0, sub["low_hz"])
	assert.Equal(t, 60.0, sub["high_hz"])
	assert.Contains(t, sub, "energy_db")
	assert.Contains(t, sub, "energy_pct")

	targets := got["targets"].([]any)
	require.Len(t, targets, 1)
	assert.Equal(t, check.Status.String(), targets[0].(map[string]any)["status"])
}

func TestAnalysisRecordOmitsMissingFeatures(t *testing.T) {
	s := snapshot("mix.wav", -14, flat, 120, features.NewKeyResult(0, features.Major, 1))
	s.Key = nil
	rec := NewAnalysisRecord(s, nil)
	assert.Nil(t, rec.Key)
	// No genre given: range check is null rather than false.
	assert.Nil(t, rec.Tempo.GenreRangeOK)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rec))
	assert.NotContains(t, buf.String(), `"key"`)
	assert.NotContains(t, buf.String(), `"targets"`)
	assert.Contains(t, buf.String(), `"genre_range_ok": null`)
}

func compareResult(t *testing.T, bpm, key bool) compare.Result {
	t.Helper()
	mix := snapshot("My Mix", -6.2, bright, 128, features.NewKeyResult(9, features.Minor, 0.8))
	ref := snapshot("Reference", -14, flat, 120, features.NewKeyResult(6, features.Major, 0.8))
	res, err := compare.NewEngine(compare.DefaultThresholds()).CompareTracks(mix, ref, bpm, key)
	require.NoError(t, err)
	return res
}

func TestComparisonRecordJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewComparisonRecord(compareResult(t, true, true))))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "My Mix", got["mix"])
	loud := got["loudness"].(map[string]any)
	assert.InDelta(t, 7.8, loud["diff_lufs"], 1e-9)
	assert.Equal(t, "louder", loud["status"])

	bands := got["spectral"].(map[string]any)["bands"].([]any)
	require.Len(t, bands, features.NumBands)
	sub := bands[0].(map[string]any)
	assert.Equal(t, true, sub["significant"])
	assert.Equal(t, "lower", sub["direction"])
	assert.Equal(t, false, bands[1].(map[string]any)["significant"])

	assert.Contains(t, got, "bpm")
	assert.Equal(t, "incompatible", got["key"].(map[string]any)["verdict"])
	assert.NotEmpty(t, got["suggestions"])
}

func TestComparisonRecordEmptyLists(t *testing.T) {
	s := snapshot("a", -14, flat, 120, features.NewKeyResult(0, features.Major, 1))
	res, err := compare.NewEngine(compare.DefaultThresholds()).CompareTracks(s, s, false, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewComparisonRecord(res)))
	out := buf.String()
	assert.Contains(t, out, `"suggestions": []`)
	assert.Contains(t, out, `"notes": []`)
	assert.NotContains(t, out, `"bpm"`)
	assert.NotContains(t, out, `"key"`)
}

func TestRenderAnalysis(t *testing.T) {
	s := snapshot("mix.wav", -9.2, flat, 174, features.NewKeyResult(9, features.Minor, 0.2))
	check, err := compare.CheckGenre(-9.2, features.GenreDnB)
	require.NoError(t, err)

	var buf bytes.Buffer
	Analysis(&buf, s, []compare.TargetCheck{check})
	out := buf.String()
	for _, want := range []string{"mix.wav", "-9.2 LUFS", "174.0 BPM", "A minor (8A)", "(uncertain)", "Sub", "20-60 Hz", check.Message} {
		assert.Contains(t, out, want)
	}
}

func TestRenderComparison(t *testing.T) {
	var buf bytes.Buffer
	Comparison(&buf, compareResult(t, true, true))
	out := buf.String()
	for _, want := range []string{"My Mix vs Reference", "+7.8", "🔺", "⚠ lower", "Tempo", "incompatible", "Suggestions", "💡"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderDevices(t *testing.T) {
	var buf bytes.Buffer
	Devices(&buf, nil, capture.DefaultDevice)
	assert.Contains(t, buf.String(), "No input devices found.")

	buf.Reset()
	Devices(&buf, []capture.Device{
		{ID: 0, Name: "Built-in Mic", HostAPI: "Core Audio", MaxInputChannels: 1, DefaultSampleRate: 48000, LowInputLatencyMs: 4.2},
		{ID: 3, Name: "Interface", HostAPI: "Core Audio", MaxInputChannels: 8, DefaultSampleRate: 44100},
	}, 3)
	out := buf.String()
	assert.Contains(t, out, "Interface (default)")
	assert.NotContains(t, out, "Built-in Mic (default)")
	assert.Contains(t, out, "48000 Hz")
	assert.Contains(t, out, "4.2 ms")
}
