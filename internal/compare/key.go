// SPDX-License-Identifier: MIT
package compare

import (
	"fmt"

	"mixref/internal/features"
)

// KeyVerdict is the harmonic relationship between two keys.
type KeyVerdict int

const (
	KeyMatch KeyVerdict = iota
	KeyCompatible
	KeyIncompatible
)

func (v KeyVerdict) String() string {
	switch v {
	case KeyMatch:
		return "match"
	case KeyCompatible:
		return "compatible"
	default:
		return "incompatible"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v KeyVerdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// KeyDiff compares detected keys on the Camelot wheel.
type KeyDiff struct {
	Mix        features.KeyResult
	Reference  features.KeyResult
	Verdict    KeyVerdict
	Suggestion string
}

// CompareKey reports an exact match, a neighbour on the Camelot wheel in
// either direction, or an incompatible pair.
func (e *Engine) CompareKey(mix, ref features.KeyResult) KeyDiff {
	d := KeyDiff{Mix: mix, Reference: ref}
	switch {
	case mix.Camelot == ref.Camelot:
		d.Verdict = KeyMatch
	case mix.Camelot.CompatibleWith(ref.Camelot) || ref.Camelot.CompatibleWith(mix.Camelot):
		d.Verdict = KeyCompatible
	default:
		d.Verdict = KeyIncompatible
		d.Suggestion = fmt.Sprintf("💡 Key %s (%s) clashes with the reference %s (%s). Compatible keys: %s, %s, %s.",
			mix.Camelot, mix.Name, ref.Camelot, ref.Name,
			ref.Compatible[0], ref.Compatible[1], ref.Compatible[2])
	}
	return d
}
