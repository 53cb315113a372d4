// SPDX-License-Identifier: MIT
package cmd

import (
	"mixref/internal/analysis"
	"mixref/internal/compare"
	"mixref/internal/features"
	"mixref/internal/log"
	"mixref/internal/report"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type compareOptions struct {
	genre     string
	bpm       bool
	key       bool
	json      bool
	threshold float64
}

func newCompareCommand(a *app) *cobra.Command {
	var o compareOptions
	cmd := &cobra.Command{
		Use:   "compare MIX REFERENCE",
		Short: "Compare a mix against a reference track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				o.threshold = a.cfg.Compare.SpectralThreshold
			}
			return a.runCompare(cmd, args[0], args[1], o)
		},
	}
	cmd.Flags().StringVarP(&o.genre, "genre", "g", "", "Genre for half-time tempo correction")
	cmd.Flags().BoolVar(&o.bpm, "bpm", false, "Compare tempo")
	cmd.Flags().BoolVar(&o.key, "key", false, "Compare key")
	cmd.Flags().BoolVar(&o.json, "json", false, "Write JSON to stdout")
	cmd.Flags().Float64Var(&o.threshold, "threshold", compare.DefaultSpectralThreshold,
		"Spectral difference in percentage points that counts as significant")
	return cmd
}

func (a *app) runCompare(cmd *cobra.Command, mixPath, refPath string, o compareOptions) error {
	genre, err := a.genre(o.genre)
	if err != nil {
		return err
	}
	thresholds := a.cfg.Thresholds()
	thresholds.SpectralPct = o.threshold
	if err := thresholds.Validate(); err != nil {
		return err
	}

	an, err := a.analyzer()
	if err != nil {
		return err
	}
	opts := analysis.Options{Genre: genre, Tempo: o.bpm, Key: o.key}
	bar := a.progress(2*stageCount(opts), "Analyzing")

	// The analyzer is stateless per call, so both tracks run at once.
	var mix, ref features.Snapshot
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		s, err := analyzeFile(ctx, an, mixPath, opts, bar)
		if err != nil {
			return features.WithSide(err, features.SideMix)
		}
		mix = s
		return nil
	})
	g.Go(func() error {
		s, err := analyzeFile(ctx, an, refPath, opts, bar)
		if err != nil {
			return features.WithSide(err, features.SideReference)
		}
		ref = s
		return nil
	})
	err = g.Wait()
	_ = bar.Finish()
	if err != nil {
		return err
	}

	result, err := compare.NewEngine(thresholds).CompareTracks(mix, ref, o.bpm, o.key)
	if err != nil {
		return err
	}
	log.Debugf("Compared %s against %s: %d suggestions", result.MixName, result.ReferenceName, len(result.Suggestions))

	if o.json {
		return report.WriteJSON(a.out, report.NewComparisonRecord(result))
	}
	report.Comparison(a.out, result)
	return nil
}
