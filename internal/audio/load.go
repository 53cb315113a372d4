// SPDX-License-Identifier: MIT

// Package audio decodes audio files into analysis buffers and writes buffers
// back out as PCM WAV.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mixref/internal/features"
	"mixref/internal/log"

	"github.com/dhowden/tag"
)

// Format is a supported container.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// ErrUnsupportedFormat is returned for files that are neither WAV nor MP3.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Track is a decoded file and its label.
type Track struct {
	Path   string
	Format Format
	Title  string
	Artist string
	Buffer features.Buffer
}

// Label names the track for reports: "Artist - Title" from the file tags when
// present, else the file name.
func (t Track) Label() string {
	switch {
	case t.Title != "" && t.Artist != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	default:
		return filepath.Base(t.Path)
	}
}

// DetectFormat picks the decoder from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".mp3":
		return FormatMP3, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load decodes the file at path. Samples are normalised to [-1, 1] and keep
// their original channel layout and sample rate.
func Load(path string) (Track, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return Track{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Track{}, err
	}
	defer f.Close()

	track := Track{Path: path, Format: format}
	track.Title, track.Artist = readTags(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Track{}, err
	}

	switch format {
	case FormatWAV:
		track.Buffer, err = DecodeWAV(f)
	case FormatMP3:
		track.Buffer, err = DecodeMP3(f)
	}
	if err != nil {
		return Track{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	log.Debugf("Loaded %s: %d Hz, %d ch, %.1f s", path, track.Buffer.SampleRate, track.Buffer.Channels, track.Buffer.Duration())
	return track, nil
}

// readTags returns the title and artist from ID3 or RIFF INFO tags. Untagged
// files are common and not an error.
func readTags(r io.ReadSeeker) (title, artist string) {
	meta, err := tag.ReadFrom(r)
	if err != nil {
		log.Debugf("No readable tags: %v", err)
		return "", ""
	}
	return strings.TrimSpace(meta.Title()), strings.TrimSpace(meta.Artist())
}
