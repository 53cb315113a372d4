// SPDX-License-Identifier: MIT

// Package cmd is the mixref command line.
package cmd

import (
	"context"
	"io"
	"os"

	"mixref/internal/analysis"
	"mixref/internal/audio"
	"mixref/internal/config"
	"mixref/internal/features"
	"mixref/internal/fft"
	"mixref/internal/log"
	"mixref/internal/meter"
	"mixref/pkg/build"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand. The meter factory is swapped
// in tests so no ffmpeg binary is needed.
type app struct {
	configPath string
	verbose    bool
	quiet      bool
	cfg        *config.Config

	out    io.Writer
	errOut io.Writer

	newMeter func(*config.Config) analysis.LoudnessMeter
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:    out,
		errOut: errOut,
		newMeter: func(c *config.Config) analysis.LoudnessMeter {
			return meter.New(c.Meter.FFmpeg)
		},
	}
}

// Execute runs the command line with args, excluding the program name.
func Execute(ctx context.Context, args []string) error {
	root := newRootCommand(newApp(os.Stdout, os.Stderr))
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	info := build.Get()

	root := &cobra.Command{
		Use:           info.Name,
		Short:         info.Description,
		Version:       info.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetHelpCommand(&cobra.Command{Hidden: true})

	root.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Config file (default ./"+config.DefaultConfigFile+" when present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Show debug output")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false,
		"Hide progress bars")

	root.AddCommand(
		newAnalyzeCommand(a),
		newCompareCommand(a),
		newDevicesCommand(a),
		newCaptureCommand(a),
	)
	return root
}

func (a *app) loadConfig() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	log.SetLevel(cfg.Level())
	if a.verbose {
		log.SetLevel(log.LevelDebug)
	}
	return nil
}

// analyzer builds the DSP pipeline from the analysis section.
func (a *app) analyzer() (*analysis.Analyzer, error) {
	fc, err := a.cfg.FFT()
	if err != nil {
		return nil, err
	}
	proc, err := fft.NewProcessor(fc)
	if err != nil {
		return nil, err
	}
	an, err := analysis.NewAnalyzer(proc, a.newMeter(a.cfg))
	if err != nil {
		return nil, err
	}
	an.MinDuration = a.cfg.Analysis.MinDuration
	return an, nil
}

// genre resolves the --genre flag, falling back to the configured default.
func (a *app) genre(flag string) (features.Genre, error) {
	if flag == "" {
		flag = a.cfg.Analysis.Genre
	}
	return features.ParseGenre(flag)
}

// progress returns a bar on stderr, or one writing nowhere with --quiet.
func (a *app) progress(steps int, desc string) *progressbar.ProgressBar {
	w := a.errOut
	if a.quiet {
		w = io.Discard
	}
	return progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// analyzeFile decodes path and analyses it, advancing bar once per stage.
func analyzeFile(ctx context.Context, an *analysis.Analyzer, path string, opts analysis.Options, bar *progressbar.ProgressBar) (features.Snapshot, error) {
	track, err := audio.Load(path)
	if err != nil {
		return features.Snapshot{}, err
	}
	opts.Name = track.Label()
	opts.OnStage = func(stage string) {
		bar.Describe(track.Label() + ": " + stage)
		_ = bar.Add(1)
	}
	snap, err := an.Analyze(ctx, track.Buffer, opts)
	if err != nil {
		return features.Snapshot{}, err
	}
	if opts.Tempo && snap.Tempo == nil {
		log.Warnf("%s: %.2fs is shorter than %.2fs, tempo not detected", track.Label(), track.Buffer.Duration(), an.MinDuration)
	}
	if opts.Key && snap.Key == nil {
		log.Warnf("%s: %.2fs is shorter than %.2fs, key not detected", track.Label(), track.Buffer.Duration(), an.MinDuration)
	}
	return snap, nil
}

// stageCount is the number of OnStage calls an analysis makes.
func stageCount(opts analysis.Options) int {
	n := 2 // loudness, spectral
	if opts.Tempo {
		n++
	}
	if opts.Key {
		n++
	}
	return n
}
