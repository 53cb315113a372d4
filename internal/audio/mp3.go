// SPDX-License-Identifier: MIT
package audio

import (
	"encoding/binary"
	"errors"
	"io"

	"mixref/internal/features"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always decodes to 16-bit little-endian stereo.
const (
	mp3Channels       = 2
	mp3BytesPerSample = 2
)

// DecodeMP3 decodes an MP3 stream to a stereo buffer.
func DecodeMP3(r io.Reader) (features.Buffer, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return features.Buffer{}, err
	}

	var samples []float64
	if n := d.Length(); n > 0 {
		samples = make([]float64, 0, int(n/mp3BytesPerSample))
	}

	chunk := make([]byte, 4096)
	var carry []byte
	for {
		n, err := d.Read(chunk)
		data := chunk[:n]
		if len(carry) > 0 {
			data = append(carry, data...)
			carry = nil
		}
		even := len(data) &^ 1
		for i := 0; i < even; i += mp3BytesPerSample {
			v := int16(binary.LittleEndian.Uint16(data[i:]))
			samples = append(samples, float64(v)/32768)
		}
		if even < len(data) {
			carry = []byte{data[even]}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return features.Buffer{}, err
		}
	}

	// Drop a trailing partial frame.
	samples = samples[:len(samples)&^1]
	return features.Buffer{
		Samples:    samples,
		Channels:   mp3Channels,
		SampleRate: d.SampleRate(),
	}, nil
}
