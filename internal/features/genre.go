// SPDX-License-Identifier: MIT
package features

import (
	"fmt"
	"sort"
	"strings"
)

// Genre is an electronic music style with known tempo and loudness conventions.
type Genre string

const (
	GenreNone    Genre = ""
	GenreDnB     Genre = "dnb"
	GenreTechno  Genre = "techno"
	GenreHouse   Genre = "house"
	GenreDubstep Genre = "dubstep"
	GenreTrance  Genre = "trance"
)

// GenreProfile is the fixed threshold record for a genre.
type GenreProfile struct {
	BPMMin     float64
	BPMMax     float64
	TypicalBPM float64
	LUFSTarget float64
}

var genreProfiles = map[Genre]GenreProfile{
	GenreDnB:     {BPMMin: 160, BPMMax: 180, TypicalBPM: 174, LUFSTarget: -8},
	GenreTechno:  {BPMMin: 120, BPMMax: 140, TypicalBPM: 130, LUFSTarget: -9},
	GenreHouse:   {BPMMin: 118, BPMMax: 128, TypicalBPM: 124, LUFSTarget: -10},
	GenreDubstep: {BPMMin: 135, BPMMax: 145, TypicalBPM: 140, LUFSTarget: -7},
	GenreTrance:  {BPMMin: 125, BPMMax: 145, TypicalBPM: 138, LUFSTarget: -9},
}

// Profile returns the genre's thresholds. ok is false for GenreNone and unknown values.
func (g Genre) Profile() (GenreProfile, bool) {
	p, ok := genreProfiles[g]
	return p, ok
}

// Contains reports whether bpm lies inside the genre range, bounds inclusive.
func (p GenreProfile) Contains(bpm float64) bool {
	return p.BPMMin <= bpm && bpm <= p.BPMMax
}

// InGenreRange reports whether bpm is typical for genre. Unknown genres never match.
func InGenreRange(bpm float64, genre Genre) bool {
	p, ok := genre.Profile()
	return ok && p.Contains(bpm)
}

// ParseGenre converts a case-insensitive name to a Genre. An empty string is GenreNone.
func ParseGenre(name string) (Genre, error) {
	g := Genre(strings.ToLower(strings.TrimSpace(name)))
	if g == GenreNone {
		return GenreNone, nil
	}
	if _, ok := genreProfiles[g]; !ok {
		return GenreNone, fmt.Errorf("unknown genre %q (want one of %s)", name, strings.Join(Genres(), ", "))
	}
	return g, nil
}

// Genres lists the known genre names in sorted order.
func Genres() []string {
	out := make([]string, 0, len(genreProfiles))
	for g := range genreProfiles {
		out = append(out, string(g))
	}
	sort.Strings(out)
	return out
}

// Platform is a distribution target with a loudness normalisation level.
type Platform string

const (
	PlatformSpotify    Platform = "spotify"
	PlatformYouTube    Platform = "youtube"
	PlatformAppleMusic Platform = "apple_music"
	PlatformTidal      Platform = "tidal"
	PlatformSoundCloud Platform = "soundcloud"
	PlatformClub       Platform = "club"
	PlatformBroadcast  Platform = "broadcast"
)

var platformTargets = map[Platform]float64{
	PlatformSpotify:    -14,
	PlatformYouTube:    -14,
	PlatformAppleMusic: -16,
	PlatformTidal:      -14,
	PlatformSoundCloud: -14,
	PlatformClub:       -9,
	PlatformBroadcast:  -23, // EBU R128
}

// LUFSTarget returns the integrated loudness target for the platform.
func (p Platform) LUFSTarget() (float64, bool) {
	t, ok := platformTargets[p]
	return t, ok
}

// ParsePlatform converts a case-insensitive name to a Platform. "apple" and
// "applemusic" are accepted for apple_music.
func ParsePlatform(name string) (Platform, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "apple", "applemusic", "apple-music":
		n = string(PlatformAppleMusic)
	}
	p := Platform(n)
	if _, ok := platformTargets[p]; !ok {
		return "", fmt.Errorf("unknown platform %q (want one of %s)", name, strings.Join(Platforms(), ", "))
	}
	return p, nil
}

// Platforms lists the known platform names in sorted order.
func Platforms() []string {
	out := make([]string, 0, len(platformTargets))
	for p := range platformTargets {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}
