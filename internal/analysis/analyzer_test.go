// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"errors"
	"testing"

	"mixref/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFrontend struct {
	spec   features.Spectrogram
	chroma features.Chroma
	env    features.Envelope
	err    error

	gotMono []float64
}

func (f *fakeFrontend) STFT(mono []float64, _ int) (features.Spectrogram, error) {
	f.gotMono = mono
	return f.spec, f.err
}

func (f *fakeFrontend) Chroma([]float64, int) (features.Chroma, error) {
	return f.chroma, f.err
}

func (f *fakeFrontend) OnsetStrength([]float64, int) (features.Envelope, error) {
	return f.env, f.err
}

type fakeMeter struct {
	result   features.LoudnessResult
	err      error
	channels int
}

func (m *fakeMeter) Measure(_ context.Context, buf features.Buffer) (features.LoudnessResult, error) {
	m.channels = buf.Channels
	return m.result, m.err
}

var (
	_ Frontend      = (*fakeFrontend)(nil)
	_ LoudnessMeter = (*fakeMeter)(nil)
)

func newFakes() (*fakeFrontend, *fakeMeter) {
	return &fakeFrontend{
			spec:   spectrogram(2, map[float64]float64{100: 1, 1000: 1}),
			chroma: rotate(minorProfile, 9),
			env:    pulseEnvelope(10, 87),
		}, &fakeMeter{
			result: features.LoudnessResult{IntegratedLUFS: -8.5, TruePeakDBTP: -0.3, LRA: 5},
		}
}

// stereoSeconds returns a stereo buffer of the given length at 1 kHz.
func stereoSeconds(seconds float64) features.Buffer {
	frames := int(seconds * 1000)
	samples := make([]float64, 2*frames)
	for i := range frames {
		samples[2*i] = 1
		samples[2*i+1] = 0
	}
	return features.Buffer{Samples: samples, Channels: 2, SampleRate: 1000}
}

func TestAnalyzerFullSnapshot(t *testing.T) {
	frontend, meter := newFakes()
	a, err := NewAnalyzer(frontend, meter)
	require.NoError(t, err)

	var stages []string
	snap, err := a.Analyze(context.Background(), stereoSeconds(10), Options{
		Name:    "mix",
		Genre:   features.GenreDnB,
		Tempo:   true,
		Key:     true,
		OnStage: func(s string) { stages = append(stages, s) },
	})
	require.NoError(t, err)

	assert.Equal(t, "mix", snap.Name)
	assert.Equal(t, -8.5, snap.Loudness.IntegratedLUFS)
	assert.Equal(t, 2, meter.channels, "the meter sees the original channel layout")
	assert.InDelta(t, 0.5, frontend.gotMono[0], 1e-12, "the front end sees the mono mix")
	assert.InDelta(t, 50, snap.Spectral.Bands[1].EnergyPct, 1e-9)

	require.NotNil(t, snap.Tempo)
	assert.True(t, snap.Tempo.Corrected)
	assert.InDelta(t, 174, snap.Tempo.BPM, 2)
	assert.Equal(t, features.RangeOK, snap.Tempo.GenreRange)

	require.NotNil(t, snap.Key)
	assert.Equal(t, "A minor", snap.Key.Name)

	assert.Equal(t, []string{StageLoudness, StageSpectral, StageTempo, StageKey}, stages)
}

func TestAnalyzerOptionalFeatures(t *testing.T) {
	frontend, meter := newFakes()
	a, err := NewAnalyzer(frontend, meter)
	require.NoError(t, err)

	snap, err := a.Analyze(context.Background(), stereoSeconds(10), Options{})
	require.NoError(t, err)
	assert.Nil(t, snap.Tempo)
	assert.Nil(t, snap.Key)
}

func TestAnalyzerShortSignal(t *testing.T) {
	frontend, meter := newFakes()
	frontend.env = pulseEnvelope(1, 120)
	a, err := NewAnalyzer(frontend, meter)
	require.NoError(t, err)

	snap, err := a.Analyze(context.Background(), stereoSeconds(1), Options{Tempo: true, Key: true})
	require.NoError(t, err)
	assert.Nil(t, snap.Tempo, "too short for tempo")
	assert.Nil(t, snap.Key, "too short for key")
	assert.Equal(t, -8.5, snap.Loudness.IntegratedLUFS)
}

func TestAnalyzerMinimumDuration(t *testing.T) {
	t.Run("buffer at the minimum", func(t *testing.T) {
		frontend, meter := newFakes()
		// Shorter than the buffer, as a real front end's envelope is.
		frontend.env = pulseEnvelope(DefaultMinDuration-0.05, 120)
		a, err := NewAnalyzer(frontend, meter)
		require.NoError(t, err)

		snap, err := a.Analyze(context.Background(), stereoSeconds(DefaultMinDuration), Options{Tempo: true, Key: true})
		require.NoError(t, err)
		assert.NotNil(t, snap.Tempo)
		assert.NotNil(t, snap.Key)
	})

	t.Run("configured minimum", func(t *testing.T) {
		frontend, meter := newFakes()
		a, err := NewAnalyzer(frontend, meter)
		require.NoError(t, err)
		a.MinDuration = 5

		var stages []string
		snap, err := a.Analyze(context.Background(), stereoSeconds(3), Options{
			Tempo:   true,
			Key:     true,
			OnStage: func(s string) { stages = append(stages, s) },
		})
		require.NoError(t, err)
		assert.Nil(t, snap.Tempo)
		assert.Nil(t, snap.Key)
		assert.Len(t, stages, 4, "skipped stages still advance progress")
	})

	t.Run("nil detectors", func(t *testing.T) {
		frontend, meter := newFakes()
		a, err := NewAnalyzer(frontend, meter)
		require.NoError(t, err)
		a.Tempo, a.Key = nil, nil

		snap, err := a.Analyze(context.Background(), stereoSeconds(3), Options{Tempo: true, Key: true})
		require.NoError(t, err)
		assert.NotNil(t, snap.Tempo)
		require.NotNil(t, snap.Key)
		assert.Equal(t, "A minor", snap.Key.Name)
	})
}

func TestAnalyzerErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("invalid buffer", func(t *testing.T) {
		a, _ := NewAnalyzer(newFakes())
		_, err := a.Analyze(context.Background(), features.Buffer{Channels: 1}, Options{})
		assert.ErrorIs(t, err, features.ErrInvalidInput)
	})

	t.Run("unknown genre", func(t *testing.T) {
		a, _ := NewAnalyzer(newFakes())
		_, err := a.Analyze(context.Background(), stereoSeconds(3), Options{Genre: "polka"})
		assert.ErrorIs(t, err, features.ErrInvalidInput)
	})

	t.Run("meter failure", func(t *testing.T) {
		frontend, meter := newFakes()
		meter.err = boom
		a, _ := NewAnalyzer(frontend, meter)
		_, err := a.Analyze(context.Background(), stereoSeconds(3), Options{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("frontend failure", func(t *testing.T) {
		frontend, meter := newFakes()
		frontend.err = boom
		a, _ := NewAnalyzer(frontend, meter)
		_, err := a.Analyze(context.Background(), stereoSeconds(3), Options{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		a, _ := NewAnalyzer(newFakes())
		_, err := a.Analyze(ctx, stereoSeconds(3), Options{Tempo: true})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("nil collaborators", func(t *testing.T) {
		_, err := NewAnalyzer(nil, &fakeMeter{})
		assert.Error(t, err)
		_, err = NewAnalyzer(&fakeFrontend{}, nil)
		assert.Error(t, err)
	})
}
