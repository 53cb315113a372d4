// SPDX-License-Identifier: MIT

/*
Package capture records a reference from an audio input device into memory.

The PortAudio callback runs on a locked OS thread and only copies into a
buffer sized for the whole take up front, so it never allocates. State is
shared with the caller through atomics.
*/
package capture

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"mixref/internal/features"
	"mixref/internal/log"

	"github.com/gordonklaus/portaudio"
)

// Config selects the device and stream format.
type Config struct {
	DeviceID        int
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
	LowLatency      bool
	GateThreshold   float64 // fraction of full scale; 0 records from the first callback
}

// Recorder captures a fixed-length take.
type Recorder struct {
	config Config
	gate   *Gate

	data    []int32
	written atomic.Int64
	armed   atomic.Bool
	full    chan struct{}
	filled  atomic.Bool

	device  *portaudio.DeviceInfo
	latency time.Duration
	stream  *portaudio.Stream
}

// NewRecorder resolves the input device and allocates room for seconds of audio.
// PortAudio must already be initialized.
func NewRecorder(cfg Config, seconds float64) (*Recorder, error) {
	device, err := InputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}
	r, err := newRecorder(cfg, seconds)
	if err != nil {
		return nil, err
	}
	r.device = device
	if cfg.LowLatency {
		r.latency = device.DefaultLowInputLatency
	} else {
		r.latency = device.DefaultHighInputLatency
	}
	return r, nil
}

func newRecorder(cfg Config, seconds float64) (*Recorder, error) {
	if cfg.SampleRate <= 0 || cfg.Channels <= 0 || cfg.FramesPerBuffer <= 0 {
		return nil, fmt.Errorf("invalid capture format: %.0f Hz, %d channels, %d frames per buffer",
			cfg.SampleRate, cfg.Channels, cfg.FramesPerBuffer)
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("capture length must be positive, got %.2f s", seconds)
	}
	frames := int(math.Ceil(seconds * cfg.SampleRate))
	r := &Recorder{
		config: cfg,
		gate:   NewGate(cfg.GateThreshold),
		data:   make([]int32, frames*cfg.Channels),
		full:   make(chan struct{}),
	}
	r.armed.Store(cfg.GateThreshold <= 0)
	return r, nil
}

// Record opens the stream and blocks until the take is full or ctx is done.
// A cancelled take returns what was captured so far along with ctx's error.
func (r *Recorder) Record(ctx context.Context) (features.Buffer, error) {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: r.config.Channels,
			Device:   r.device,
			Latency:  r.latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: r.config.FramesPerBuffer,
		SampleRate:      r.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, r.process)
	if err != nil {
		return features.Buffer{}, err
	}
	r.stream = stream
	if err := stream.Start(); err != nil {
		stream.Close()
		return features.Buffer{}, err
	}
	log.Infof("Recording %.1f s from %s", r.Length(), r.device.Name)

	var waitErr error
	select {
	case <-r.full:
	case <-ctx.Done():
		waitErr = ctx.Err()
	}

	if err := r.stop(); err != nil {
		return features.Buffer{}, err
	}
	buf := r.Buffer()
	if waitErr != nil {
		return buf, waitErr
	}
	if !r.armed.Load() {
		return buf, errors.New("input never passed the gate threshold")
	}
	return buf, nil
}

func (r *Recorder) stop() error {
	if r.stream == nil {
		return nil
	}
	if err := r.stream.Stop(); err != nil {
		return err
	}
	if err := r.stream.Close(); err != nil {
		return err
	}
	r.stream = nil
	return nil
}

// process is the stream callback.
func (r *Recorder) process(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if r.filled.Load() {
		return
	}
	if !r.armed.Load() {
		if !r.gate.Passes(in) {
			return
		}
		r.armed.Store(true)
	}

	n := int(r.written.Load())
	copied := copy(r.data[n:], in)
	r.written.Store(int64(n + copied))
	if n+copied == len(r.data) && r.filled.CompareAndSwap(false, true) {
		close(r.full)
	}
}

// Length returns the take length in seconds.
func (r *Recorder) Length() float64 {
	return float64(len(r.data)/r.config.Channels) / r.config.SampleRate
}

// Progress returns the captured fraction of the take.
func (r *Recorder) Progress() float64 {
	return float64(r.written.Load()) / float64(len(r.data))
}

// Buffer converts what has been captured so far, trimmed to whole frames.
func (r *Recorder) Buffer() features.Buffer {
	n := int(r.written.Load())
	n -= n % r.config.Channels
	samples := make([]float64, n)
	for i, v := range r.data[:n] {
		samples[i] = float64(v) / (math.MaxInt32 + 1)
	}
	return features.Buffer{
		Samples:    samples,
		Channels:   r.config.Channels,
		SampleRate: int(r.config.SampleRate),
	}
}
