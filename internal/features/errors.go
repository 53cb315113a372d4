// SPDX-License-Identifier: MIT
package features

import (
	"errors"
	"fmt"
)

// Error kinds reported by the analysis and comparison stages. Match them with
// errors.Is; the concrete error is usually an *Error carrying context.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyBuffer        = errors.New("empty buffer")
	ErrInsufficientSignal = errors.New("insufficient signal")
	ErrMissingFeature     = errors.New("missing feature")
)

// Sides of a comparison, used as Error.Side.
const (
	SideMix       = "mix"
	SideReference = "reference"
)

// Error attaches the track side and metric to one of the error kinds above.
type Error struct {
	Side   string // "mix", "reference" or empty for single-track analysis
	Metric string // e.g. "tempo", "key", "spectral", "sample_rate"
	Detail string
	Err    error
}

// NewError builds an *Error for the given kind.
func NewError(kind error, metric, detail string) *Error {
	return &Error{Metric: metric, Detail: detail, Err: kind}
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Metric != "" {
		msg = e.Metric + ": " + msg
	}
	if e.Side != "" {
		msg = e.Side + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithSide returns err annotated with the comparison side. An *Error gets a copy
// with Side set; any other error is wrapped.
func WithSide(err error, side string) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		cp := *fe
		cp.Side = side
		return &cp
	}
	return fmt.Errorf("%s: %w", side, err)
}
