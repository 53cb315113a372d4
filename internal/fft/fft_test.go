// SPDX-License-Identifier: MIT
package fft

import (
	"context"
	"testing"

	"mixref/internal/analysis"
	"mixref/internal/features"
	"mixref/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 44100

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	p, err := NewProcessor(DefaultConfig())
	require.NoError(t, err)
	return p
}

func TestNewProcessorValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"fft size not power of two", func(c *Config) { c.FFTSize = 1000 }},
		{"zero fft size", func(c *Config) { c.FFTSize = 0 }},
		{"zero hop", func(c *Config) { c.HopSize = 0 }},
		{"hop larger than frame", func(c *Config) { c.HopSize = 4096 }},
		{"inverted chroma range", func(c *Config) { c.ChromaMinHz, c.ChromaMaxHz = 2000, 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			_, err := NewProcessor(cfg)
			assert.Error(t, err)
		})
	}
}

func TestParseWindowFunc(t *testing.T) {
	for w, name := range windowNames {
		got, err := ParseWindowFunc(name)
		require.NoError(t, err)
		assert.Equal(t, w, got)
		assert.Equal(t, name, w.String())
	}

	got, err := ParseWindowFunc("HANNING")
	require.NoError(t, err)
	assert.Equal(t, Hann, got)

	got, err = ParseWindowFunc("kaiser")
	assert.Error(t, err)
	assert.Equal(t, Hann, got)
}

func TestSTFTPeak(t *testing.T) {
	p := newTestProcessor(t)
	spec, err := p.STFT(utils.Sine(1, testSampleRate, 1000, 0.5), testSampleRate)
	require.NoError(t, err)

	assert.InDelta(t, testSampleRate/2048.0, spec.BinHz, 1e-9)
	require.NotEmpty(t, spec.Frames)
	assert.Len(t, spec.Frames[0], DefaultFFTSize/2+1)

	peak := utils.FindPeakBin(spec.Frames[0], 0, len(spec.Frames[0])-1)
	assert.InDelta(t, 1000, spec.FrequencyForBin(peak), spec.BinHz)
}

func TestSTFTShortSignal(t *testing.T) {
	p := newTestProcessor(t)
	spec, err := p.STFT(utils.Sine(0.01, testSampleRate, 440, 0.5), testSampleRate)
	require.NoError(t, err)
	assert.Len(t, spec.Frames, 1, "a signal shorter than one frame is zero-padded")
}

func TestSTFTInvalid(t *testing.T) {
	p := newTestProcessor(t)

	_, err := p.STFT(nil, testSampleRate)
	assert.ErrorIs(t, err, features.ErrEmptyBuffer)

	_, err = p.STFT([]float64{0, 1}, 0)
	assert.ErrorIs(t, err, features.ErrInvalidInput)
}

func TestChromaPitchClass(t *testing.T) {
	tests := []struct {
		name  string
		freq  float64
		pitch int
	}{
		{"A4", 440, 9},
		{"C4", 261.63, 0},
		{"E5", 659.26, 4},
		{"F#5", 739.99, 6},
	}

	p := newTestProcessor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chroma, err := p.Chroma(utils.Sine(1, testSampleRate, tt.freq, 0.5), testSampleRate)
			require.NoError(t, err)
			assert.Equal(t, tt.pitch, utils.FindPeakBin(chroma[:], 0, 11))
		})
	}
}

func TestChromaDetectsKey(t *testing.T) {
	// A minor triad, A4 C5 E5.
	signal := utils.Chord(4, testSampleRate, 0.8, 440, 523.25, 659.26)
	chroma, err := newTestProcessor(t).Chroma(signal, testSampleRate)
	require.NoError(t, err)

	key, err := analysis.NewKeyDetector().Detect(chroma)
	require.NoError(t, err)
	assert.Equal(t, "A minor", key.Name)
}

func TestOnsetStrengthTempo(t *testing.T) {
	tests := []struct {
		name string
		bpm  float64
	}{
		{"house", 124},
		{"techno", 132},
	}

	p := newTestProcessor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := p.OnsetStrength(utils.ClickTrack(12, testSampleRate, tt.bpm), testSampleRate)
			require.NoError(t, err)
			assert.InDelta(t, testSampleRate/float64(DefaultHopSize), env.FrameRate, 1e-9)
			assert.Zero(t, env.Values[0])

			tempo, err := analysis.NewTempoDetector().Detect(env)
			require.NoError(t, err)
			assert.InDelta(t, tt.bpm, tempo.RawBPM, 2)
		})
	}
}

type fixedMeter struct{}

func (fixedMeter) Measure(context.Context, features.Buffer) (features.LoudnessResult, error) {
	return features.LoudnessResult{IntegratedLUFS: -10}, nil
}

// The onset envelope drops the trailing partial frame, so a buffer of exactly
// the minimum length yields an envelope slightly shorter than it.
func TestAnalyzeAtMinimumDuration(t *testing.T) {
	for _, seconds := range []float64{analysis.DefaultMinDuration, analysis.DefaultMinDuration + 0.02} {
		clicks := utils.ClickTrack(seconds, testSampleRate, 120)
		chord := utils.Chord(seconds, testSampleRate, 0.3, 440, 523.25, 659.26)
		mono := make([]float64, len(clicks))
		for i := range mono {
			mono[i] = 0.6*clicks[i] + chord[i]
		}
		buf := features.Buffer{Samples: mono, Channels: 1, SampleRate: testSampleRate}
		require.GreaterOrEqual(t, buf.Duration(), analysis.DefaultMinDuration)

		a, err := analysis.NewAnalyzer(newTestProcessor(t), fixedMeter{})
		require.NoError(t, err)
		snap, err := a.Analyze(context.Background(), buf, analysis.Options{Tempo: true, Key: true})
		require.NoError(t, err)
		assert.NotNil(t, snap.Tempo, "tempo at %.2fs", seconds)
		assert.NotNil(t, snap.Key, "key at %.2fs", seconds)
	}
}

func TestOnsetStrengthSilence(t *testing.T) {
	env, err := newTestProcessor(t).OnsetStrength(make([]float64, 3*testSampleRate), testSampleRate)
	require.NoError(t, err)
	for _, v := range env.Values {
		require.Zero(t, v)
	}
}

func BenchmarkSTFT(b *testing.B) {
	p, err := NewProcessor(DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	signal := utils.Chord(10, testSampleRate, 0.8, 440, 880, 1320)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := p.STFT(signal, testSampleRate); err != nil {
			b.Fatal(err)
		}
	}
}
