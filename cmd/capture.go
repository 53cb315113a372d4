// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"mixref/internal/audio"
	"mixref/internal/capture"
	"mixref/internal/config"
	"mixref/internal/log"

	"github.com/spf13/cobra"
)

type captureOptions struct {
	seconds float64
	output  string
	capture config.CaptureConfig
}

func newCaptureCommand(a *app) *cobra.Command {
	var o captureOptions
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Record a reference from an input device to WAV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.capture = mergeCapture(cmd, a.cfg.Capture, o.capture)
			if o.output == "" {
				o.output = "reference-" + time.Now().UTC().Format("02-01-2006-150405") + ".wav"
			}
			return a.runCapture(cmd.Context(), o)
		},
	}

	f := cmd.Flags()
	f.Float64VarP(&o.seconds, "seconds", "t", 0, "Length of the take in seconds")
	f.StringVarP(&o.output, "output", "o", "", "Output file. Default is reference-DD-MM-YYYY-HHMMSS.wav")
	f.IntVarP(&o.capture.DeviceID, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use the devices command to list them.")
	f.IntVarP(&o.capture.Channels, "channels", "c", config.DefaultChannels, "Number of channels (1=mono, 2=stereo)")
	f.Float64VarP(&o.capture.SampleRate, "sample-rate", "s", config.DefaultSampleRate, "Sample rate in Hz")
	f.IntVarP(&o.capture.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"Frames per buffer (affects latency)")
	f.BoolVarP(&o.capture.LowLatency, "low-latency", "l", config.DefaultLowLatency, "Use the device's low latency setting")
	f.Float64Var(&o.capture.GateThreshold, "gate", config.DefaultGateThreshold,
		"Start recording once the input peak passes this fraction of full scale")
	f.IntVar(&o.capture.BitDepth, "bit-depth", config.DefaultBitDepth, "WAV bit depth (16, 24 or 32)")
	_ = cmd.MarkFlagRequired("seconds")
	return cmd
}

// mergeCapture starts from the configured section and applies only the flags
// the user set.
func mergeCapture(cmd *cobra.Command, base, flags config.CaptureConfig) config.CaptureConfig {
	set := cmd.Flags().Changed
	if set("device") {
		base.DeviceID = flags.DeviceID
	}
	if set("channels") {
		base.Channels = flags.Channels
	}
	if set("sample-rate") {
		base.SampleRate = flags.SampleRate
	}
	if set("frames-per-buffer") {
		base.FramesPerBuffer = flags.FramesPerBuffer
	}
	if set("low-latency") {
		base.LowLatency = flags.LowLatency
	}
	if set("gate") {
		base.GateThreshold = flags.GateThreshold
	}
	if set("bit-depth") {
		base.BitDepth = flags.BitDepth
	}
	return base
}

func (a *app) runCapture(ctx context.Context, o captureOptions) error {
	if err := validateCapture(o.capture); err != nil {
		return err
	}

	if err := capture.Initialize(); err != nil {
		return err
	}
	defer capture.Terminate()

	rec, err := capture.NewRecorder(capture.Config{
		DeviceID:        o.capture.DeviceID,
		SampleRate:      o.capture.SampleRate,
		Channels:        o.capture.Channels,
		FramesPerBuffer: o.capture.FramesPerBuffer,
		LowLatency:      o.capture.LowLatency,
		GateThreshold:   o.capture.GateThreshold,
	}, o.seconds)
	if err != nil {
		return err
	}

	bar := a.progress(100, "Recording")
	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(100 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				_ = bar.Set(int(rec.Progress() * 100))
			}
		}
	}()

	buf, recErr := rec.Record(ctx)
	close(done)
	_ = bar.Finish()

	// An interrupted take is still written so the audio is not lost.
	if recErr != nil && !errors.Is(recErr, context.Canceled) {
		return recErr
	}
	if buf.Frames() == 0 {
		return errors.New("nothing was recorded")
	}

	f, err := os.Create(o.output)
	if err != nil {
		return err
	}
	if err := audio.WriteWAV(f, buf, o.capture.BitDepth); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", o.output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Infof("Recorded %.1f s to %s", buf.Duration(), o.output)
	fmt.Fprintf(a.out, "Recording saved to: %s\n", o.output)
	return nil
}

// validateCapture applies the config rules to flag-merged capture settings.
func validateCapture(c config.CaptureConfig) error {
	cfg := config.Default()
	cfg.Capture = c
	return cfg.Validate()
}
