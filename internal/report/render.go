// SPDX-License-Identifier: MIT
package report

import (
	"fmt"
	"io"
	"strings"

	"mixref/internal/capture"
	"mixref/internal/compare"
	"mixref/internal/features"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true).
			Padding(0, 1)

	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFDF5"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94")).Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func section(w io.Writer, title string, body fmt.Stringer) {
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, body.String())
}

func f1(v float64) string { return fmt.Sprintf("%.1f", v) }

// Analysis renders a single-track analysis.
func Analysis(w io.Writer, s features.Snapshot, targets []compare.TargetCheck) {
	lt := newTable("Metric", "Value").
		Row("Integrated", f1(s.Loudness.IntegratedLUFS)+" LUFS").
		Row("True peak", f1(s.Loudness.TruePeakDBTP)+" dBTP").
		Row("Loudness range", f1(s.Loudness.LRA)+" LU").
		Row("Short-term max", f1(s.Loudness.ShortTermMax)+" LUFS").
		Row("Short-term min", f1(s.Loudness.ShortTermMin)+" LUFS")
	section(w, "Loudness: "+s.Name, lt)

	if s.Tempo != nil || s.Key != nil {
		mt := newTable("Feature", "Value", "Confidence", "Notes")
		if t := s.Tempo; t != nil {
			mt.Row("Tempo", f1(t.BPM)+" BPM", confidence(t.Confidence), tempoNotes(*t))
		}
		if k := s.Key; k != nil {
			compat := make([]string, 0, len(k.Compatible))
			for _, c := range k.Compatible {
				compat = append(compat, c.String())
			}
			mt.Row("Key", fmt.Sprintf("%s (%s)", k.Name, k.Camelot), confidence(k.Confidence), "mixes with "+strings.Join(compat, ", "))
		}
		section(w, "Musical", mt)
	}

	st := newTable("Band", "Range", "Energy", "Share")
	for _, b := range s.Spectral.Bands {
		st.Row(b.Name, fmt.Sprintf("%.0f-%.0f Hz", b.LowHz, b.HighHz), f1(b.EnergyDB)+" dB", f1(b.EnergyPct)+"%")
	}
	section(w, "Spectrum", st)

	if len(targets) > 0 {
		tt := newTable("Target", "LUFS", "Diff", "Status")
		for _, t := range targets {
			tt.Row(t.Name, f1(t.TargetLUFS), fmt.Sprintf("%+.1f", t.Diff), t.Status.String())
		}
		section(w, "Targets", tt)
		for _, t := range targets {
			fmt.Fprintln(w, noteStyle.Render(t.Message))
		}
	}
}

func confidence(c float64) string {
	s := fmt.Sprintf("%.0f%%", c*100)
	if c < features.AmbiguousConfidence {
		s += " (uncertain)"
	}
	return s
}

func tempoNotes(t features.CorrectedBPM) string {
	var notes []string
	if r := t.Reason(); r != "" {
		notes = append(notes, r)
	}
	switch t.GenreRange {
	case features.RangeOK:
		notes = append(notes, "in "+string(t.Genre)+" range")
	case features.RangeOutside:
		notes = append(notes, "outside "+string(t.Genre)+" range")
	}
	return strings.Join(notes, "; ")
}

// Comparison renders a mix against reference comparison.
func Comparison(w io.Writer, r compare.Result) {
	l := r.Loudness
	lt := newTable("Metric", "Mix", "Reference", "Diff").
		Row("Integrated (LUFS)", f1(l.MixLUFS), f1(l.ReferenceLUFS), fmt.Sprintf("%+.1f %s", l.DiffLUFS, l.Status.Icon())).
		Row("True peak (dBTP)", f1(l.MixPeak), f1(l.ReferencePeak), fmt.Sprintf("%+.1f", l.PeakDiff)).
		Row("Range (LU)", f1(l.MixLRA), f1(l.ReferenceLRA), fmt.Sprintf("%+.1f", l.LRADiff))
	section(w, fmt.Sprintf("%s vs %s", r.MixName, r.ReferenceName), lt)
	for _, n := range l.Notes {
		style := noteStyle
		if l.ClippingRisk && strings.Contains(n, "peak") {
			style = warnStyle
		}
		fmt.Fprintln(w, style.Render(n))
	}

	st := newTable("Band", "Mix", "Reference", "Diff", "")
	for _, b := range r.Spectral.Bands {
		flag := ""
		if b.Significant {
			flag = "⚠ " + b.Direction.String()
		}
		st.Row(b.Name, f1(b.MixPct)+"%", f1(b.ReferencePct)+"%", fmt.Sprintf("%+.1f%%", b.DiffPct), flag)
	}
	section(w, "Spectrum", st)

	if r.BPM != nil || r.Key != nil {
		mt := newTable("Feature", "Mix", "Reference", "Result")
		if b := r.BPM; b != nil {
			res := "match"
			if b.Significant {
				res = fmt.Sprintf("%+.1f%%", b.PctDiff)
			}
			mt.Row("Tempo", f1(b.MixBPM), f1(b.ReferenceBPM), res)
		}
		if k := r.Key; k != nil {
			mt.Row("Key",
				fmt.Sprintf("%s (%s)", k.Mix.Name, k.Mix.Camelot),
				fmt.Sprintf("%s (%s)", k.Reference.Name, k.Reference.Camelot),
				k.Verdict.String())
		}
		section(w, "Musical", mt)
	}

	if len(r.Suggestions) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Suggestions"))
		for _, s := range r.Suggestions {
			fmt.Fprintln(w, noteStyle.Render(s))
		}
	}
}

// Devices renders the input devices PortAudio reports.
func Devices(w io.Writer, devices []capture.Device, defaultID int) {
	if len(devices) == 0 {
		fmt.Fprintln(w, noteStyle.Render("No input devices found."))
		return
	}
	t := newTable("ID", "Name", "Host API", "Inputs", "Sample rate", "Latency")
	for _, d := range devices {
		name := d.Name
		if d.ID == defaultID {
			name += " (default)"
		}
		t.Row(fmt.Sprint(d.ID), name, d.HostAPI, fmt.Sprint(d.MaxInputChannels),
			fmt.Sprintf("%.0f Hz", d.DefaultSampleRate), fmt.Sprintf("%.1f ms", d.LowInputLatencyMs))
	}
	section(w, "Input devices", t)
}
