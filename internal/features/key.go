// SPDX-License-Identifier: MIT
package features

import "fmt"

// PitchClass is a chromatic pitch class, 0 = C ... 11 = B.
type PitchClass int

// Mode is the tonality of a key.
type Mode int

const (
	Major Mode = iota
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "minor"
	}
	return "major"
}

// pitchNames uses the flat spelling for Eb, Ab and Bb and keeps C# and F#,
// the convention used in DJ software key columns.
var pitchNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

// String returns the display spelling of the pitch class.
func (p PitchClass) String() string {
	return pitchNames[((int(p)%12)+12)%12]
}

// KeyName formats a tonic and mode as e.g. "Eb minor".
func KeyName(tonic PitchClass, mode Mode) string {
	return fmt.Sprintf("%s %s", tonic, mode)
}

// KeyResult is the detected key of a track.
type KeyResult struct {
	Tonic      PitchClass
	Mode       Mode
	Name       string
	Camelot    Camelot
	Confidence float64
	Compatible [3]Camelot
}

// Ambiguous reports whether the estimate is too uncertain to act on.
func (k KeyResult) Ambiguous() bool {
	return k.Confidence < AmbiguousConfidence
}

// NewKeyResult fills in the derived name and Camelot fields for a tonic and mode.
func NewKeyResult(tonic PitchClass, mode Mode, confidence float64) KeyResult {
	code := CamelotFor(tonic, mode)
	return KeyResult{
		Tonic:      tonic,
		Mode:       mode,
		Name:       KeyName(tonic, mode),
		Camelot:    code,
		Confidence: confidence,
		Compatible: code.Compatible(),
	}
}
