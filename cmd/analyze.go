// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"strings"

	"mixref/internal/analysis"
	"mixref/internal/compare"
	"mixref/internal/features"
	"mixref/internal/report"

	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	genre     string
	platforms []string
	json      bool
	noTempo   bool
	noKey     bool
}

func newAnalyzeCommand(a *app) *cobra.Command {
	var o analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Measure loudness, tempo, key and spectral balance of a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, args[0], o)
		},
	}
	cmd.Flags().StringVarP(&o.genre, "genre", "g", "",
		"Genre for tempo correction and loudness target ("+strings.Join(features.Genres(), ", ")+")")
	cmd.Flags().StringSliceVarP(&o.platforms, "platform", "p", nil,
		"Check loudness against platform targets ("+strings.Join(features.Platforms(), ", ")+")")
	cmd.Flags().BoolVar(&o.json, "json", false, "Write JSON to stdout")
	cmd.Flags().BoolVar(&o.noTempo, "no-tempo", false, "Skip tempo detection")
	cmd.Flags().BoolVar(&o.noKey, "no-key", false, "Skip key detection")
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, path string, o analyzeOptions) error {
	genre, err := a.genre(o.genre)
	if err != nil {
		return err
	}
	var platforms []features.Platform
	for _, name := range o.platforms {
		p, err := features.ParsePlatform(name)
		if err != nil {
			return err
		}
		platforms = append(platforms, p)
	}

	an, err := a.analyzer()
	if err != nil {
		return err
	}
	opts := analysis.Options{Genre: genre, Tempo: !o.noTempo, Key: !o.noKey}
	bar := a.progress(stageCount(opts), "Analyzing")
	snap, err := analyzeFile(cmd.Context(), an, path, opts, bar)
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("analyze %s: %w", path, err)
	}

	var targets []compare.TargetCheck
	for _, p := range platforms {
		check, err := compare.CheckPlatform(snap.Loudness.IntegratedLUFS, p)
		if err != nil {
			return err
		}
		targets = append(targets, check)
	}
	if genre != features.GenreNone {
		check, err := compare.CheckGenre(snap.Loudness.IntegratedLUFS, genre)
		if err != nil {
			return err
		}
		targets = append(targets, check)
	}

	if o.json {
		return report.WriteJSON(a.out, report.NewAnalysisRecord(snap, targets))
	}
	report.Analysis(a.out, snap, targets)
	return nil
}
