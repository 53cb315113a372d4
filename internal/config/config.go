// SPDX-License-Identifier: MIT

// Package config loads mixref settings from YAML with environment overrides.
package config

import (
	"mixref/internal/compare"
	"mixref/internal/fft"
)

// Defaults and limits for every setting.
const (
	DefaultConfigFile = "mixref.yaml"
	DefaultLogLevel   = "info"

	DefaultFFTSize     = fft.DefaultFFTSize
	DefaultHopSize     = fft.DefaultHopSize
	DefaultFFTWindow   = "hann"
	DefaultMinDuration = 2.0 // seconds

	DefaultFFmpeg = "ffmpeg"

	DefaultDeviceID        = MinDeviceID // system default input
	DefaultSampleRate      = 44100
	DefaultChannels        = 2
	DefaultFramesPerBuffer = 512
	DefaultLowLatency      = false
	DefaultGateThreshold   = 0.0
	DefaultBitDepth        = 24

	MinFFTSize = 256
	MaxFFTSize = 16384

	MinDeviceID     = -1
	MinSampleRate   = 8000
	MaxSampleRate   = 192000
	MaxChannels     = 2
	MaxBufferFrames = 8192
)

// Environment variables read after the file.
const (
	EnvLogLevel          = "MIXREF_LOG_LEVEL"
	EnvFFmpeg            = "MIXREF_FFMPEG"
	EnvSpectralThreshold = "MIXREF_SPECTRAL_THRESHOLD"
	EnvCaptureDevice     = "MIXREF_CAPTURE_DEVICE"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Analysis: AnalysisConfig{
			FFTSize:     DefaultFFTSize,
			HopSize:     DefaultHopSize,
			FFTWindow:   DefaultFFTWindow,
			MinDuration: DefaultMinDuration,
		},
		Compare: CompareConfig{
			LoudnessToleranceLU: compare.DefaultLoudnessToleranceLU,
			SpectralThreshold:   compare.DefaultSpectralThreshold,
			BPMThreshold:        compare.DefaultBPMThreshold,
			ClippingMarginDB:    compare.DefaultClippingMarginDB,
		},
		Meter: MeterConfig{FFmpeg: DefaultFFmpeg},
		Capture: CaptureConfig{
			DeviceID:        DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			Channels:        DefaultChannels,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			GateThreshold:   DefaultGateThreshold,
			BitDepth:        DefaultBitDepth,
		},
	}
}
