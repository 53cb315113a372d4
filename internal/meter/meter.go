// SPDX-License-Identifier: MIT

// Package meter measures EBU R128 loudness by running ffmpeg's ebur128 filter
// and parsing its report.
package meter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"mixref/internal/analysis"
	"mixref/internal/audio"
	"mixref/internal/features"
	"mixref/internal/log"
)

const (
	// DefaultBinary is looked up on PATH.
	DefaultBinary = "ffmpeg"
	// SilenceFloorDB replaces -inf readings so results stay finite.
	SilenceFloorDB = -120.0
	// shortTermGate drops short-term readings from silent passages; ebur128
	// reports -70 LUFS and below before any audio has been measured.
	shortTermGate = -70.0
	// tempBitDepth keeps the intermediate file transparent.
	tempBitDepth = 32
)

// ErrNoSummary is returned when ffmpeg output has no ebur128 summary.
var ErrNoSummary = errors.New("ebur128 summary not found in ffmpeg output")

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// FFmpeg is an analysis.LoudnessMeter backed by the ffmpeg binary.
type FFmpeg struct {
	Binary  string
	TempDir string // empty uses os.TempDir
	run     Runner
}

var _ analysis.LoudnessMeter = (*FFmpeg)(nil)

// New returns a meter that runs binary, or DefaultBinary when empty.
func New(binary string) *FFmpeg {
	if binary == "" {
		binary = DefaultBinary
	}
	return &FFmpeg{Binary: binary, run: execRunner}
}

// Available reports whether the ffmpeg binary can be found.
func (m *FFmpeg) Available() error {
	if _, err := exec.LookPath(m.Binary); err != nil {
		return fmt.Errorf("ffmpeg not found (%s): %w", m.Binary, err)
	}
	return nil
}

// Measure writes buf to a temporary WAV file and meters it.
func (m *FFmpeg) Measure(ctx context.Context, buf features.Buffer) (features.LoudnessResult, error) {
	if err := buf.Validate(); err != nil {
		return features.LoudnessResult{}, err
	}

	f, err := os.CreateTemp(m.TempDir, "mixref-*.wav")
	if err != nil {
		return features.LoudnessResult{}, err
	}
	path := f.Name()
	defer os.Remove(path)

	if err := audio.WriteWAV(f, buf, tempBitDepth); err != nil {
		f.Close()
		return features.LoudnessResult{}, fmt.Errorf("write temp WAV: %w", err)
	}
	if err := f.Close(); err != nil {
		return features.LoudnessResult{}, err
	}
	return m.MeasureFile(ctx, path)
}

// MeasureFile meters any file ffmpeg can decode.
func (m *FFmpeg) MeasureFile(ctx context.Context, path string) (features.LoudnessResult, error) {
	args := []string{"-hide_banner", "-nostats", "-vn", "-i", path, "-filter_complex", "ebur128=peak=true", "-f", "null", "-"}
	log.Debugf("Running %s %s", m.Binary, strings.Join(args, " "))

	run := m.run
	if run == nil {
		run = execRunner
	}
	out, err := run(ctx, m.Binary, args...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return features.LoudnessResult{}, ctxErr
	}
	if err != nil {
		return features.LoudnessResult{}, fmt.Errorf("ffmpeg ebur128: %w: %s", err, lastLine(out))
	}
	return Parse(out)
}

var (
	reIntegrated = regexp.MustCompile(`^\s*I:\s+(-?[\d.]+|-?inf)\s+LUFS`)
	reRange      = regexp.MustCompile(`^\s*LRA:\s+(-?[\d.]+|-?inf)\s+LU\b`)
	rePeak       = regexp.MustCompile(`^\s*Peak:\s+(-?[\d.]+|-?inf)\s+dBFS`)
	reShortTerm  = regexp.MustCompile(`\bS:\s*(-?[\d.]+|-?inf)`)
)

// Parse reads ebur128 output: per-frame lines for the short-term extremes and
// the summary block for integrated loudness, loudness range and true peak.
func Parse(out []byte) (features.LoudnessResult, error) {
	var (
		res       features.LoudnessResult
		inSummary bool
		haveI     bool
		stMax     = math.Inf(-1)
		stMin     = math.Inf(1)
	)

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if strings.Contains(line, "Summary:") {
			inSummary = true
			continue
		}
		if !inSummary {
			if m := reShortTerm.FindStringSubmatch(line); m != nil {
				if v := parseDB(m[1]); v > shortTermGate {
					stMax = math.Max(stMax, v)
					stMin = math.Min(stMin, v)
				}
			}
			continue
		}
		switch {
		case reIntegrated.MatchString(line) && !haveI:
			res.IntegratedLUFS = parseDB(reIntegrated.FindStringSubmatch(line)[1])
			haveI = true
		case reRange.MatchString(line):
			res.LRA = parseDB(reRange.FindStringSubmatch(line)[1])
		case rePeak.MatchString(line):
			res.TruePeakDBTP = parseDB(rePeak.FindStringSubmatch(line)[1])
		}
	}
	if err := sc.Err(); err != nil {
		return features.LoudnessResult{}, err
	}
	if !haveI {
		return features.LoudnessResult{}, ErrNoSummary
	}

	if math.IsInf(stMax, -1) {
		stMax, stMin = res.IntegratedLUFS, res.IntegratedLUFS
	}
	res.ShortTermMax, res.ShortTermMin = stMax, stMin
	return res, nil
}

// parseDB parses a decibel reading, flooring -inf at SilenceFloorDB.
func parseDB(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, -1) || v < SilenceFloorDB {
		return SilenceFloorDB
	}
	return v
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
