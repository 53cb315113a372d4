// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"errors"

	"mixref/internal/features"
)

// Analysis stages reported through Options.OnStage.
const (
	StageLoudness = "loudness"
	StageSpectral = "spectral"
	StageTempo    = "tempo"
	StageKey      = "key"
)

// Options selects what Analyze extracts.
type Options struct {
	Name  string
	Genre features.Genre
	Tempo bool
	Key   bool

	// OnStage, when set, is called before each stage starts.
	OnStage func(stage string)
}

// Analyzer turns a decoded buffer into a feature snapshot.
type Analyzer struct {
	frontend Frontend
	meter    LoudnessMeter

	// MinDuration is the shortest buffer, in seconds, that tempo and key
	// detection run on.
	MinDuration float64

	Tempo    *TempoDetector
	Key      *KeyDetector
	Spectral *SpectralAnalyzer
}

// NewAnalyzer wires the detectors to a DSP front end and a loudness meter.
func NewAnalyzer(frontend Frontend, meter LoudnessMeter) (*Analyzer, error) {
	if frontend == nil {
		return nil, errors.New("analysis: nil frontend")
	}
	if meter == nil {
		return nil, errors.New("analysis: nil loudness meter")
	}
	return &Analyzer{
		frontend:    frontend,
		meter:       meter,
		MinDuration: DefaultMinDuration,
		Tempo:       NewTempoDetector(),
		Key:         NewKeyDetector(),
		Spectral:    NewSpectralAnalyzer(),
	}, nil
}

// Analyze measures loudness and spectral balance, plus tempo and key when
// requested. Multi-channel buffers are averaged to mono for everything except
// the loudness meter.
//
// A buffer shorter than MinDuration leaves tempo and key nil rather than
// failing the whole analysis; any other detector error is returned.
func (a *Analyzer) Analyze(ctx context.Context, buf features.Buffer, opts Options) (features.Snapshot, error) {
	if err := buf.Validate(); err != nil {
		return features.Snapshot{}, err
	}
	if opts.Genre != features.GenreNone {
		if _, ok := opts.Genre.Profile(); !ok {
			return features.Snapshot{}, features.NewError(features.ErrInvalidInput, "genre", "unknown genre "+string(opts.Genre))
		}
	}

	stage := func(name string) {
		if opts.OnStage != nil {
			opts.OnStage(name)
		}
	}
	snap := features.Snapshot{Name: opts.Name}

	stage(StageLoudness)
	loudness, err := a.meter.Measure(ctx, buf)
	if err != nil {
		return features.Snapshot{}, err
	}
	snap.Loudness = loudness

	mono := buf.Mono()
	long := buf.Duration() >= a.MinDuration

	stage(StageSpectral)
	spec, err := a.frontend.STFT(mono, buf.SampleRate)
	if err != nil {
		return features.Snapshot{}, err
	}
	if snap.Spectral, err = a.Spectral.Analyze(spec); err != nil {
		return features.Snapshot{}, err
	}

	if opts.Tempo {
		if err := ctx.Err(); err != nil {
			return features.Snapshot{}, err
		}
		stage(StageTempo)
		if long {
			tempo, err := a.detectTempo(mono, buf.SampleRate, opts.Genre)
			switch {
			case errors.Is(err, features.ErrInsufficientSignal):
			case err != nil:
				return features.Snapshot{}, err
			default:
				snap.Tempo = &tempo
			}
		}
	}

	if opts.Key {
		if err := ctx.Err(); err != nil {
			return features.Snapshot{}, err
		}
		stage(StageKey)
		if long {
			key, err := a.detectKey(mono, buf.SampleRate)
			if err != nil {
				return features.Snapshot{}, err
			}
			snap.Key = &key
		}
	}

	return snap, nil
}

func (a *Analyzer) detectTempo(mono []float64, sampleRate int, genre features.Genre) (features.CorrectedBPM, error) {
	env, err := a.frontend.OnsetStrength(mono, sampleRate)
	if err != nil {
		return features.CorrectedBPM{}, err
	}
	detector := a.Tempo
	if detector == nil {
		detector = NewTempoDetector()
	}
	// The envelope loses the last partial frame, so the buffer length was
	// already checked against MinDuration instead.
	raw, err := detector.detect(env)
	if err != nil {
		return features.CorrectedBPM{}, err
	}
	return CorrectTempo(raw, genre)
}

func (a *Analyzer) detectKey(mono []float64, sampleRate int) (features.KeyResult, error) {
	chroma, err := a.frontend.Chroma(mono, sampleRate)
	if err != nil {
		return features.KeyResult{}, err
	}
	detector := a.Key
	if detector == nil {
		detector = NewKeyDetector()
	}
	return detector.Detect(chroma)
}
