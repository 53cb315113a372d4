// SPDX-License-Identifier: MIT
package features

import (
	"fmt"
	"strconv"
	"strings"
)

// Camelot is a position on the Camelot wheel: Number 1..12, Letter 'A' (minor)
// or 'B' (major).
type Camelot struct {
	Number int
	Letter byte
}

// Major keys indexed by pitch class. A relative minor (tonic three semitones
// below its major) shares the number with letter A.
var camelotMajor = [12]int{
	8,  // C
	3,  // C#
	10, // D
	5,  // Eb
	12, // E
	7,  // F
	2,  // F#
	9,  // G
	4,  // Ab
	11, // A
	6,  // Bb
	1,  // B
}

var camelotMinor = [12]int{
	5,  // C
	12, // C#
	7,  // D
	2,  // Eb
	9,  // E
	4,  // F
	11, // F#
	6,  // G
	1,  // Ab
	8,  // A
	3,  // Bb
	10, // B
}

// CamelotFor maps a key to its wheel position.
func CamelotFor(tonic PitchClass, mode Mode) Camelot {
	pc := ((int(tonic) % 12) + 12) % 12
	if mode == Minor {
		return Camelot{Number: camelotMinor[pc], Letter: 'A'}
	}
	return Camelot{Number: camelotMajor[pc], Letter: 'B'}
}

// Valid reports whether c is one of the 24 wheel positions.
func (c Camelot) Valid() bool {
	return c.Number >= 1 && c.Number <= 12 && (c.Letter == 'A' || c.Letter == 'B')
}

// Decode returns the key at this wheel position.
func (c Camelot) Decode() (PitchClass, Mode, bool) {
	if !c.Valid() {
		return 0, Major, false
	}
	table, mode := camelotMajor, Major
	if c.Letter == 'A' {
		table, mode = camelotMinor, Minor
	}
	for pc, n := range table {
		if n == c.Number {
			return PitchClass(pc), mode, true
		}
	}
	return 0, Major, false
}

func (c Camelot) String() string {
	if !c.Valid() {
		return "?"
	}
	return strconv.Itoa(c.Number) + string(c.Letter)
}

// MarshalText encodes the code as e.g. "8A".
func (c Camelot) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Compatible returns the harmonic-mixing neighbours of c: the relative
// major/minor at the same number, then the adjacent numbers with the same letter.
func (c Camelot) Compatible() [3]Camelot {
	other := byte('A')
	if c.Letter == 'A' {
		other = 'B'
	}
	prev := c.Number - 1
	if prev < 1 {
		prev = 12
	}
	next := c.Number + 1
	if next > 12 {
		next = 1
	}
	return [3]Camelot{
		{Number: c.Number, Letter: other},
		{Number: prev, Letter: c.Letter},
		{Number: next, Letter: c.Letter},
	}
}

// CompatibleWith reports whether other is one of c's three neighbours.
func (c Camelot) CompatibleWith(other Camelot) bool {
	for _, n := range c.Compatible() {
		if n == other {
			return true
		}
	}
	return false
}

// ParseCamelot parses codes like "8A" or "12b".
func ParseCamelot(s string) (Camelot, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Camelot{}, fmt.Errorf("invalid camelot code %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Camelot{}, fmt.Errorf("invalid camelot code %q: %w", s, err)
	}
	c := Camelot{Number: n, Letter: s[len(s)-1]}
	if !c.Valid() {
		return Camelot{}, fmt.Errorf("invalid camelot code %q", s)
	}
	return c, nil
}
