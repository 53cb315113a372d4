// SPDX-License-Identifier: MIT

// Package fft is the spectral front end: short-time Fourier transform, chroma
// and onset strength, built on gonum's real FFT.
package fft

import (
	"fmt"
	"math"
	"math/cmplx"

	"mixref/internal/analysis"
	"mixref/internal/features"
	"mixref/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Front end defaults.
const (
	DefaultFFTSize     = 2048
	DefaultHopSize     = 512 // onset envelope hop, ~11.6 ms at 44.1 kHz
	DefaultChromaMinHz = 65.0
	DefaultChromaMaxHz = 2100.0
	DefaultTuningHz    = 440.0
)

// Config holds the front end parameters. SpectralHop applies to STFT and
// chroma frames; HopSize applies to the onset envelope, which needs finer time
// resolution.
type Config struct {
	FFTSize     int
	HopSize     int
	SpectralHop int
	Window      WindowFunc
	ChromaMinHz float64
	ChromaMaxHz float64
	TuningHz    float64
}

// DefaultConfig returns a config with 2048-point Hann frames, non-overlapping
// spectral frames and a 512-sample onset hop.
func DefaultConfig() Config {
	return Config{
		FFTSize:     DefaultFFTSize,
		HopSize:     DefaultHopSize,
		SpectralHop: DefaultFFTSize,
		Window:      Hann,
		ChromaMinHz: DefaultChromaMinHz,
		ChromaMaxHz: DefaultChromaMaxHz,
		TuningHz:    DefaultTuningHz,
	}
}

// Processor implements analysis.Frontend. The window is computed once; frame
// buffers are allocated per call so a Processor can serve concurrent analyses.
type Processor struct {
	cfg    Config
	window []float64
}

var _ analysis.Frontend = (*Processor)(nil)

// NewProcessor validates cfg and precomputes the analysis window.
func NewProcessor(cfg Config) (*Processor, error) {
	if !bitint.IsPowerOfTwo(cfg.FFTSize) {
		return nil, fmt.Errorf("FFT size must be a power of 2, got %d", cfg.FFTSize)
	}
	if cfg.HopSize <= 0 || cfg.HopSize > cfg.FFTSize {
		return nil, fmt.Errorf("hop size must be in (0, %d], got %d", cfg.FFTSize, cfg.HopSize)
	}
	if cfg.SpectralHop <= 0 {
		cfg.SpectralHop = cfg.FFTSize
	}
	if cfg.TuningHz <= 0 {
		cfg.TuningHz = DefaultTuningHz
	}
	if cfg.ChromaMinHz <= 0 || cfg.ChromaMaxHz <= cfg.ChromaMinHz {
		return nil, fmt.Errorf("invalid chroma range %.1f-%.1f Hz", cfg.ChromaMinHz, cfg.ChromaMaxHz)
	}
	return &Processor{cfg: cfg, window: cfg.Window.coefficients(cfg.FFTSize)}, nil
}

// Config returns the processor configuration.
func (p *Processor) Config() Config { return p.cfg }

// workspace holds the buffers for one pass over a signal.
type workspace struct {
	fft       *fourier.FFT
	input     []float64
	output    []complex128
	magnitude []float64
}

func (p *Processor) newWorkspace() *workspace {
	bins := p.cfg.FFTSize/2 + 1
	return &workspace{
		fft:       fourier.NewFFT(p.cfg.FFTSize),
		input:     make([]float64, p.cfg.FFTSize),
		output:    make([]complex128, bins),
		magnitude: make([]float64, bins),
	}
}

// frameCount returns the number of hop-spaced frames covering n samples. A
// signal shorter than one frame still yields one zero-padded frame.
func (p *Processor) frameCount(n, hop int) int {
	if n <= p.cfg.FFTSize {
		return 1
	}
	return 1 + (n-p.cfg.FFTSize+hop-1)/hop
}

// spectrum windows the frame starting at start, zero-padding past the end of
// mono, and leaves its magnitude spectrum in ws.magnitude.
func (p *Processor) spectrum(ws *workspace, mono []float64, start int) {
	for i := range ws.input {
		if j := start + i; j < len(mono) {
			ws.input[i] = mono[j] * p.window[i]
		} else {
			ws.input[i] = 0
		}
	}
	ws.fft.Coefficients(ws.output, ws.input)
	for i, c := range ws.output {
		ws.magnitude[i] = cmplx.Abs(c)
	}
}

func checkInput(mono []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return features.NewError(features.ErrInvalidInput, "sample_rate", "sample rate must be positive")
	}
	if len(mono) == 0 {
		return features.NewError(features.ErrEmptyBuffer, "samples", "")
	}
	return nil
}

// STFT returns the magnitude spectrogram with SpectralHop spacing.
func (p *Processor) STFT(mono []float64, sampleRate int) (features.Spectrogram, error) {
	if err := checkInput(mono, sampleRate); err != nil {
		return features.Spectrogram{}, err
	}

	ws := p.newWorkspace()
	hop := p.cfg.SpectralHop
	n := p.frameCount(len(mono), hop)
	out := features.Spectrogram{
		Frames: make([][]float64, n),
		BinHz:  float64(sampleRate) / float64(p.cfg.FFTSize),
	}
	for f := range n {
		p.spectrum(ws, mono, f*hop)
		frame := make([]float64, len(ws.magnitude))
		copy(frame, ws.magnitude)
		out.Frames[f] = frame
	}
	return out, nil
}

// Chroma folds the power spectrum of every frame into the 12 pitch classes,
// C = 0. Each bin between ChromaMinHz and ChromaMaxHz goes to the pitch class
// of its nearest equal-tempered note.
func (p *Processor) Chroma(mono []float64, sampleRate int) (features.Chroma, error) {
	var chroma features.Chroma
	if err := checkInput(mono, sampleRate); err != nil {
		return chroma, err
	}

	ws := p.newWorkspace()
	mapping := p.chromaMapping(len(ws.magnitude), float64(sampleRate)/float64(p.cfg.FFTSize))
	hop := p.cfg.SpectralHop
	for f := range p.frameCount(len(mono), hop) {
		p.spectrum(ws, mono, f*hop)
		for k, mag := range ws.magnitude {
			if pc := mapping[k]; pc >= 0 {
				chroma[pc] += mag * mag
			}
		}
	}
	return chroma, nil
}

func (p *Processor) chromaMapping(bins int, binHz float64) []int {
	mapping := make([]int, bins)
	for k := range mapping {
		freq := float64(k) * binHz
		if freq < p.cfg.ChromaMinHz || freq > p.cfg.ChromaMaxHz {
			mapping[k] = -1
			continue
		}
		midi := 69 + 12*math.Log2(freq/p.cfg.TuningHz)
		mapping[k] = int(math.Round(midi)) % 12
	}
	return mapping
}

// OnsetStrength returns the half-wave rectified spectral flux with HopSize
// spacing. The first frame has no predecessor and is 0.
func (p *Processor) OnsetStrength(mono []float64, sampleRate int) (features.Envelope, error) {
	if err := checkInput(mono, sampleRate); err != nil {
		return features.Envelope{}, err
	}

	ws := p.newWorkspace()
	prev := make([]float64, len(ws.magnitude))
	hop := p.cfg.HopSize
	n := p.frameCount(len(mono), hop)
	env := features.Envelope{
		Values:    make([]float64, n),
		FrameRate: float64(sampleRate) / float64(hop),
	}
	for f := range n {
		p.spectrum(ws, mono, f*hop)
		if f > 0 {
			var flux float64
			for k, mag := range ws.magnitude {
				if d := mag - prev[k]; d > 0 {
					flux += d
				}
			}
			env.Values[f] = flux
		}
		copy(prev, ws.magnitude)
	}
	return env, nil
}
