// SPDX-License-Identifier: MIT
package capture

import "math"

// Gate holds recording until the input first exceeds a threshold, so captures
// do not start with dead air. Once open it stays open.
type Gate struct {
	threshold int32 // absolute amplitude, 0-2147483647
}

// NewGate returns a gate at threshold, a fraction of full scale in [0, 1].
// A zero threshold opens on any non-silent buffer.
func NewGate(threshold float64) *Gate {
	g := &Gate{}
	g.SetThreshold(threshold)
	return g
}

// SetThreshold clamps threshold to [0, 1].
func (g *Gate) SetThreshold(threshold float64) {
	threshold = math.Max(0, math.Min(1, threshold))
	g.threshold = int32(threshold * float64(math.MaxInt32))
}

// Threshold returns the threshold as a fraction of full scale.
func (g *Gate) Threshold() float64 {
	return float64(g.threshold) / float64(math.MaxInt32)
}

// Passes reports whether buffer peaks above the threshold.
func (g *Gate) Passes(buffer []int32) bool {
	return peak(buffer) > g.threshold
}

// peak returns the largest absolute sample without branching in the loop.
func peak(buffer []int32) int32 {
	var maxAmplitude int32
	for _, sample := range buffer {
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		diff := amplitude - maxAmplitude
		maxAmplitude += (diff & (diff >> 31)) ^ diff
	}
	return maxAmplitude
}
