// SPDX-License-Identifier: MIT
package compare

import (
	"fmt"
	"math"

	"mixref/internal/features"
)

// TargetToleranceLU is how far integrated loudness may sit from a target and
// still count as on target, inclusive.
const TargetToleranceLU = 1.0

// TargetStatus places a loudness measurement relative to a target.
type TargetStatus int

const (
	OnTarget TargetStatus = iota
	AboveTarget
	BelowTarget
)

func (s TargetStatus) String() string {
	switch s {
	case AboveTarget:
		return "above"
	case BelowTarget:
		return "below"
	default:
		return "on target"
	}
}

// TargetCheck is integrated loudness measured against a platform or genre target.
type TargetCheck struct {
	Name       string
	TargetLUFS float64
	Diff       float64 // measured minus target
	Status     TargetStatus
	Message    string
}

// OK reports whether the measurement is within tolerance.
func (c TargetCheck) OK() bool { return c.Status == OnTarget }

// CheckTarget compares lufs against target.
func CheckTarget(name string, lufs, target float64) TargetCheck {
	c := TargetCheck{Name: name, TargetLUFS: target, Diff: lufs - target}
	switch {
	case math.Abs(c.Diff) <= TargetToleranceLU:
		c.Status = OnTarget
		c.Message = fmt.Sprintf("✅ %.1f LUFS is on target for %s (%.1f LUFS)", lufs, name, target)
	case c.Diff > 0:
		c.Status = AboveTarget
		c.Message = fmt.Sprintf("🔺 %.1f LU louder than the %s target (%.1f LUFS); expect turn-down", c.Diff, name, target)
	default:
		c.Status = BelowTarget
		c.Message = fmt.Sprintf("🔻 %.1f LU quieter than the %s target (%.1f LUFS)", -c.Diff, name, target)
	}
	return c
}

// CheckPlatform compares lufs against a streaming or playback platform target.
func CheckPlatform(lufs float64, p features.Platform) (TargetCheck, error) {
	target, ok := p.LUFSTarget()
	if !ok {
		return TargetCheck{}, features.NewError(features.ErrInvalidInput, "platform", "unknown platform "+string(p))
	}
	return CheckTarget(string(p), lufs, target), nil
}

// CheckGenre compares lufs against the genre's typical master loudness.
func CheckGenre(lufs float64, g features.Genre) (TargetCheck, error) {
	profile, ok := g.Profile()
	if !ok {
		return TargetCheck{}, features.NewError(features.ErrInvalidInput, "genre", "unknown genre "+string(g))
	}
	return CheckTarget(string(g), lufs, profile.LUFSTarget), nil
}
