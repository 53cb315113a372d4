// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mixref/internal/compare"
	"mixref/internal/fft"
	"mixref/internal/log"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mixref.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Analysis.FFTSize != DefaultFFTSize || cfg.Meter.FFmpeg != DefaultFFmpeg {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.Thresholds() != compare.DefaultThresholds() {
		t.Errorf("Thresholds() = %+v, want defaults", cfg.Thresholds())
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: debug
analysis:
  fft_size: 4096
  hop_size: 1024
  fft_window: blackman
  genre: techno
compare:
  spectral_threshold_pct: 5
meter:
  ffmpeg: /opt/ffmpeg/bin/ffmpeg
capture:
  device: 3
  channels: 1
  gate_threshold: 0.05
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Level() != log.LevelDebug {
		t.Errorf("Level() = %v, want DEBUG", cfg.Level())
	}
	if cfg.Capture.DeviceID != 3 || cfg.Capture.Channels != 1 || cfg.Capture.GateThreshold != 0.05 {
		t.Errorf("capture = %+v", cfg.Capture)
	}
	// Unset keys keep their defaults.
	if cfg.Capture.SampleRate != DefaultSampleRate || cfg.Compare.BPMThreshold != compare.DefaultBPMThreshold {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if got := cfg.Thresholds().SpectralPct; got != 5 {
		t.Errorf("SpectralPct = %v, want 5", got)
	}

	fc, err := cfg.FFT()
	if err != nil {
		t.Fatalf("FFT(): %v", err)
	}
	if fc.FFTSize != 4096 || fc.HopSize != 1024 || fc.SpectralHop != 4096 || fc.Window != fft.Blackman {
		t.Errorf("FFT() = %+v", fc)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvFFmpeg, "/usr/local/bin/ffmpeg")
	t.Setenv(EnvSpectralThreshold, "4.5")
	t.Setenv(EnvCaptureDevice, "2")

	cfg, err := LoadConfig(writeTempConfig(t, "log_level: debug\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("env should win over file, got log_level %q", cfg.LogLevel)
	}
	if cfg.Meter.FFmpeg != "/usr/local/bin/ffmpeg" || cfg.Compare.SpectralThreshold != 4.5 || cfg.Capture.DeviceID != 2 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfig_BadEnv(t *testing.T) {
	t.Setenv(EnvSpectralThreshold, "lots")
	if _, err := LoadConfig(""); err == nil || !strings.Contains(err.Error(), EnvSpectralThreshold) {
		t.Errorf("expected %s parse error, got %v", EnvSpectralThreshold, err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"log level", func(c *Config) { c.LogLevel = "chatty" }, "log_level"},
		{"fft not pow2", func(c *Config) { c.Analysis.FFTSize = 3000 }, "analysis.fft_size"},
		{"fft too small", func(c *Config) { c.Analysis.FFTSize = 128; c.Analysis.HopSize = 64 }, "analysis.fft_size"},
		{"hop larger than fft", func(c *Config) { c.Analysis.HopSize = 4096 }, "analysis.hop_size"},
		{"window", func(c *Config) { c.Analysis.FFTWindow = "kaiser" }, "analysis.fft_window"},
		{"min duration", func(c *Config) { c.Analysis.MinDuration = -1 }, "min_duration_seconds"},
		{"genre", func(c *Config) { c.Analysis.Genre = "polka" }, "analysis.genre"},
		{"threshold", func(c *Config) { c.Compare.SpectralThreshold = -1 }, "compare:"},
		{"ffmpeg", func(c *Config) { c.Meter.FFmpeg = "" }, "meter.ffmpeg"},
		{"device", func(c *Config) { c.Capture.DeviceID = -2 }, "capture.device"},
		{"sample rate", func(c *Config) { c.Capture.SampleRate = 4000 }, "capture.sample_rate"},
		{"channels", func(c *Config) { c.Capture.Channels = 6 }, "capture.channels"},
		{"frames", func(c *Config) { c.Capture.FramesPerBuffer = 1000 }, "capture.frames_per_buffer"},
		{"gate", func(c *Config) { c.Capture.GateThreshold = 1.5 }, "capture.gate_threshold"},
		{"bit depth", func(c *Config) { c.Capture.BitDepth = 8 }, "capture.bit_depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Meter.FFmpeg = ""
	cfg.Capture.Channels = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"meter.ffmpeg", "capture.channels"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
