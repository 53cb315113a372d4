// SPDX-License-Identifier: MIT
package features

// Buffer is a fully decoded track. Samples are interleaved when Channels > 1
// and normalised to [-1.0, 1.0].
type Buffer struct {
	Samples    []float64
	Channels   int
	SampleRate int
}

// Validate checks the buffer contract: a positive sample rate and channel count
// and at least one frame of audio.
func (b Buffer) Validate() error {
	if b.SampleRate <= 0 {
		return NewError(ErrInvalidInput, "sample_rate", "sample rate must be positive")
	}
	if b.Channels <= 0 {
		return NewError(ErrInvalidInput, "channels", "channel count must be positive")
	}
	if b.Frames() == 0 {
		return NewError(ErrEmptyBuffer, "samples", "")
	}
	return nil
}

// Frames returns the number of sample frames (samples per channel).
func (b Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the length of the buffer in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Mono averages all channels into a single channel. A mono buffer is returned
// as a copy so callers never share the backing array.
func (b Buffer) Mono() []float64 {
	frames := b.Frames()
	out := make([]float64, frames)
	if b.Channels == 1 {
		copy(out, b.Samples[:frames])
		return out
	}
	scale := 1.0 / float64(b.Channels)
	for i := range frames {
		var sum float64
		base := i * b.Channels
		for c := range b.Channels {
			sum += b.Samples[base+c]
		}
		out[i] = sum * scale
	}
	return out
}
