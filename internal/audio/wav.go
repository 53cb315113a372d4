// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"mixref/internal/features"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// PCM format tag in the WAV fmt chunk.
const wavFormatPCM = 1

// DefaultBitDepth is used by WriteWAV when no depth is given.
const DefaultBitDepth = 24

// DecodeWAV reads an integer PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (features.Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return features.Buffer{}, errors.New("not a valid WAV file")
	}
	if d.WavAudioFormat != wavFormatPCM {
		return features.Buffer{}, fmt.Errorf("%w: WAV format tag %d, only integer PCM is supported", ErrUnsupportedFormat, d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return features.Buffer{}, err
	}

	scale := fullScale(int(d.BitDepth))
	offset := 0
	if d.BitDepth == 8 {
		offset = 128 // 8-bit WAV is unsigned
	}
	samples := make([]float64, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = float64(v-offset) / scale
	}

	return features.Buffer{
		Samples:    samples,
		Channels:   int(d.NumChans),
		SampleRate: int(d.SampleRate),
	}, nil
}

// WriteWAV encodes buf as integer PCM at bitDepth (16, 24 or 32). Samples are
// clipped to [-1, 1].
func WriteWAV(w io.WriteSeeker, buf features.Buffer, bitDepth int) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if bitDepth == 0 {
		bitDepth = DefaultBitDepth
	}
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	enc := wav.NewEncoder(w, buf.SampleRate, bitDepth, buf.Channels, wavFormatPCM)
	scale := fullScale(bitDepth)
	peak := scale - 1

	out := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: buf.Channels,
			SampleRate:  buf.SampleRate,
		},
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(buf.Samples)),
	}
	for i, s := range buf.Samples {
		v := math.Round(math.Max(-1, math.Min(1, s)) * scale)
		out.Data[i] = int(math.Min(v, peak))
	}

	if err := enc.Write(out); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// fullScale is the magnitude of the most negative sample at bitDepth.
func fullScale(bitDepth int) float64 {
	return math.Ldexp(1, bitDepth-1)
}
