// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"mixref/internal/compare"
	"mixref/internal/features"
	"mixref/internal/fft"
	"mixref/internal/log"
	"mixref/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration as read from YAML.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Compare  CompareConfig  `yaml:"compare"`
	Meter    MeterConfig    `yaml:"meter"`
	Capture  CaptureConfig  `yaml:"capture"`
}

// AnalysisConfig tunes the STFT front end and detectors.
type AnalysisConfig struct {
	FFTSize     int     `yaml:"fft_size"`             // power of two
	HopSize     int     `yaml:"hop_size"`             // onset envelope hop in samples
	FFTWindow   string  `yaml:"fft_window"`           // hann, hamming, blackman, ...
	MinDuration float64 `yaml:"min_duration_seconds"` // shortest signal for tempo and key
	Genre       string  `yaml:"genre"`                // default genre when no flag is given
}

// CompareConfig holds the comparison thresholds.
type CompareConfig struct {
	LoudnessToleranceLU float64 `yaml:"loudness_tolerance_lu"`
	SpectralThreshold   float64 `yaml:"spectral_threshold_pct"`
	BPMThreshold        float64 `yaml:"bpm_threshold_pct"`
	ClippingMarginDB    float64 `yaml:"clipping_margin_db"`
}

// MeterConfig locates the loudness meter.
type MeterConfig struct {
	FFmpeg string `yaml:"ffmpeg"`
}

// CaptureConfig configures recording from an input device.
type CaptureConfig struct {
	DeviceID        int     `yaml:"device"` // -1 for the system default
	SampleRate      float64 `yaml:"sample_rate"`
	Channels        int     `yaml:"channels"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"`
	LowLatency      bool    `yaml:"low_latency"`
	GateThreshold   float64 `yaml:"gate_threshold"` // 0 to 1, fraction of full scale
	BitDepth        int     `yaml:"bit_depth"`
}

// LoadConfig reads path over the defaults. An empty path looks for
// DefaultConfigFile in the working directory and falls back to the defaults
// when it is absent. Environment overrides are applied last, then the result
// is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		log.Debugf("Loaded configuration from %s", path)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides reads the MIXREF_* variables. Malformed numbers are errors
// rather than silently ignored.
func (c *Config) applyEnvOverrides() error {
	if val, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = val
		log.Debugf("configuration: log_level from %s: %s", EnvLogLevel, val)
	}
	if val, ok := os.LookupEnv(EnvFFmpeg); ok {
		c.Meter.FFmpeg = val
		log.Debugf("configuration: meter.ffmpeg from %s: %s", EnvFFmpeg, val)
	}
	if val, ok := os.LookupEnv(EnvSpectralThreshold); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSpectralThreshold, err)
		}
		c.Compare.SpectralThreshold = f
		log.Debugf("configuration: compare.spectral_threshold_pct from %s: %v", EnvSpectralThreshold, f)
	}
	if val, ok := os.LookupEnv(EnvCaptureDevice); ok {
		id, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCaptureDevice, err)
		}
		c.Capture.DeviceID = id
		log.Debugf("configuration: capture.device from %s: %d", EnvCaptureDevice, id)
	}
	return nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	_, ok := log.ParseLevel(c.LogLevel)
	check(ok, "log_level: unknown level %q", c.LogLevel)

	a := c.Analysis
	check(a.FFTSize >= MinFFTSize && a.FFTSize <= MaxFFTSize && bitint.IsPowerOfTwo(a.FFTSize),
		"analysis.fft_size must be a power of two in [%d, %d], got %d", MinFFTSize, MaxFFTSize, a.FFTSize)
	check(a.HopSize > 0 && a.HopSize <= a.FFTSize,
		"analysis.hop_size must be in (0, fft_size], got %d", a.HopSize)
	if _, err := fft.ParseWindowFunc(a.FFTWindow); err != nil {
		errs = append(errs, fmt.Errorf("analysis.fft_window: %w", err))
	}
	check(a.MinDuration >= 0 && !math.IsNaN(a.MinDuration),
		"analysis.min_duration_seconds must be non-negative, got %v", a.MinDuration)
	if _, err := features.ParseGenre(a.Genre); err != nil {
		errs = append(errs, fmt.Errorf("analysis.genre: %w", err))
	}

	if err := c.Thresholds().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("compare: %w", err))
	}

	check(c.Meter.FFmpeg != "", "meter.ffmpeg must not be empty")

	p := c.Capture
	check(p.DeviceID >= MinDeviceID, "capture.device must be %d or a device ID, got %d", MinDeviceID, p.DeviceID)
	check(p.SampleRate >= MinSampleRate && p.SampleRate <= MaxSampleRate,
		"capture.sample_rate must be in [%d, %d], got %v", MinSampleRate, MaxSampleRate, p.SampleRate)
	check(p.Channels >= 1 && p.Channels <= MaxChannels,
		"capture.channels must be in [1, %d], got %d", MaxChannels, p.Channels)
	check(p.FramesPerBuffer > 0 && p.FramesPerBuffer <= MaxBufferFrames && bitint.IsPowerOfTwo(p.FramesPerBuffer),
		"capture.frames_per_buffer must be a power of two up to %d, got %d", MaxBufferFrames, p.FramesPerBuffer)
	check(p.GateThreshold >= 0 && p.GateThreshold <= 1,
		"capture.gate_threshold must be in [0, 1], got %v", p.GateThreshold)
	check(p.BitDepth == 16 || p.BitDepth == 24 || p.BitDepth == 32,
		"capture.bit_depth must be 16, 24 or 32, got %d", p.BitDepth)

	return errors.Join(errs...)
}

// Thresholds converts the compare section for the comparison engine.
func (c *Config) Thresholds() compare.Thresholds {
	t := compare.DefaultThresholds()
	t.LoudnessToleranceLU = c.Compare.LoudnessToleranceLU
	t.SpectralPct = c.Compare.SpectralThreshold
	t.BPMPct = c.Compare.BPMThreshold
	t.ClippingMarginDB = c.Compare.ClippingMarginDB
	return t
}

// FFT converts the analysis section for the STFT front end.
func (c *Config) FFT() (fft.Config, error) {
	cfg := fft.DefaultConfig()
	w, err := fft.ParseWindowFunc(c.Analysis.FFTWindow)
	if err != nil {
		return cfg, err
	}
	cfg.FFTSize = c.Analysis.FFTSize
	cfg.HopSize = c.Analysis.HopSize
	cfg.SpectralHop = c.Analysis.FFTSize
	cfg.Window = w
	return cfg, nil
}

// Level returns the parsed log level.
func (c *Config) Level() log.Level {
	l, _ := log.ParseLevel(c.LogLevel)
	return l
}
