//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Chip wraps an open GPIO character device and hands out lines.
type Chip struct {
	chip *gpiocdev.Chip
}

// OpenChip opens the named GPIO character device (e.g. "gpiochip0").
func OpenChip(name string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &Chip{chip: chip}, nil
}

// Close releases the chip. Lines requested from it must be closed first.
func (c *Chip) Close() error {
	return c.chip.Close()
}

// RealOutput is an output line on actual hardware.
type RealOutput struct {
	line      *gpiocdev.Line
	offset    int
	activeLow bool
}

// RequestOutput requests the line as an output, driven to logical OFF.
func (c *Chip) RequestOutput(offset int, activeLow bool) (*RealOutput, error) {
	line, err := c.chip.RequestLine(offset, gpiocdev.AsOutput(physicalLevel(false, activeLow)))
	if err != nil {
		return nil, fmt.Errorf("request output line %d: %w", offset, err)
	}
	return &RealOutput{line: line, offset: offset, activeLow: activeLow}, nil
}

// SetLevel drives the line to the polarity-correct voltage for the
// logical state.
func (o *RealOutput) SetLevel(on bool) error {
	if err := o.line.SetValue(physicalLevel(on, o.activeLow)); err != nil {
		return fmt.Errorf("%w: line %d write: %v", ErrHardware, o.offset, err)
	}
	return nil
}

// Level reads the line back, corrected for polarity.
func (o *RealOutput) Level() (bool, error) {
	raw, err := o.line.Value()
	if err != nil {
		return false, fmt.Errorf("%w: line %d read: %v", ErrHardware, o.offset, err)
	}
	return logicalLevel(raw, o.activeLow), nil
}

// Close drives the line OFF and releases it. Driving OFF first matters:
// a released line keeps its last value until something else claims it,
// and a relay left energised across a daemon restart is exactly the
// condition this program exists to prevent.
func (o *RealOutput) Close() error {
	var errs []error
	if err := o.line.SetValue(physicalLevel(false, o.activeLow)); err != nil {
		errs = append(errs, fmt.Errorf("line %d off: %v", o.offset, err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("line %d close: %v", o.offset, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealInput is an input line on actual hardware.
type RealInput struct {
	line   *gpiocdev.Line
	offset int
	pullUp bool
}

// RequestInput requests the line as a plain input with the bias matching
// the button wiring. Suitable for the polling strategy.
func (c *Chip) RequestInput(offset int, pullUp bool) (*RealInput, error) {
	line, err := c.chip.RequestLine(offset, gpiocdev.AsInput, biasFor(pullUp))
	if err != nil {
		return nil, fmt.Errorf("request input line %d: %w", offset, err)
	}
	return &RealInput{line: line, offset: offset, pullUp: pullUp}, nil
}

// RequestEdgeInput requests the line as an input that reports press edges.
// With a pull-up the press edge is falling; with a pull-down it is rising.
// The handler runs on the gpiocdev event goroutine, so it must be quick
// and must tolerate being called after the caller has begun teardown.
func (c *Chip) RequestEdgeInput(offset int, pullUp bool, handler func(time.Time)) (*RealInput, error) {
	var edge gpiocdev.LineReqOption = gpiocdev.WithRisingEdge
	if pullUp {
		edge = gpiocdev.WithFallingEdge
	}
	line, err := c.chip.RequestLine(offset,
		gpiocdev.AsInput,
		biasFor(pullUp),
		edge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			// The kernel timestamp is monotonic-since-boot; wall clock
			// is what the debounce window and logs want.
			handler(time.Now())
		}))
	if err != nil {
		return nil, fmt.Errorf("request edge input line %d: %w", offset, err)
	}
	return &RealInput{line: line, offset: offset, pullUp: pullUp}, nil
}

// Pressed reads the line, corrected for the button wiring.
func (i *RealInput) Pressed() (bool, error) {
	raw, err := i.line.Value()
	if err != nil {
		return false, fmt.Errorf("%w: line %d read: %v", ErrHardware, i.offset, err)
	}
	return logicalPressed(raw, i.pullUp), nil
}

// Close reconfigures the line to a plain biased input before releasing
// it, so edge reporting stops cleanly, then closes it.
func (i *RealInput) Close() error {
	var errs []error
	if err := i.line.Reconfigure(gpiocdev.AsInput, biasFor(i.pullUp)); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure line %d: %v", i.offset, err))
	}
	if err := i.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close line %d: %v", i.offset, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// biasFor returns the bias matching the button wiring. LineBias is
// accepted both at request time and by Reconfigure.
func biasFor(pullUp bool) gpiocdev.LineBias {
	if pullUp {
		return gpiocdev.WithPullUp
	}
	return gpiocdev.WithPullDown
}
