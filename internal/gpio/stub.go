//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Chip is not available on non-Linux platforms.
type Chip struct{}

// OpenChip returns an error on non-Linux platforms.
func OpenChip(name string) (*Chip, error) {
	return nil, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (c *Chip) Close() error { return nil }

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// RequestOutput returns an error on non-Linux platforms.
func (c *Chip) RequestOutput(offset int, activeLow bool) (*RealOutput, error) {
	return nil, errUnsupported
}

// SetLevel is not implemented on non-Linux platforms.
func (o *RealOutput) SetLevel(on bool) error { return errUnsupported }

// Level is not implemented on non-Linux platforms.
func (o *RealOutput) Level() (bool, error) { return false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (o *RealOutput) Close() error { return nil }

// RealInput is not available on non-Linux platforms.
type RealInput struct{}

// RequestInput returns an error on non-Linux platforms.
func (c *Chip) RequestInput(offset int, pullUp bool) (*RealInput, error) {
	return nil, errUnsupported
}

// RequestEdgeInput returns an error on non-Linux platforms.
func (c *Chip) RequestEdgeInput(offset int, pullUp bool, handler func(time.Time)) (*RealInput, error) {
	return nil, errUnsupported
}

// Pressed is not implemented on non-Linux platforms.
func (i *RealInput) Pressed() (bool, error) { return false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (i *RealInput) Close() error { return nil }
