// Package gpio provides digital line access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
//
// Relay boards are commonly active-low: driving the line low energises
// the relay. Polarity is resolved entirely inside this package, so upper
// layers deal only in logical ON/OFF and logical pressed/released.
package gpio

import "errors"

// ErrHardware marks a line read or write failure. Callers can test for it
// with errors.Is; failures are never swallowed at this layer.
var ErrHardware = errors.New("gpio: hardware fault")

// Output drives one digital output line. SetLevel(true) always means
// "relay ON" regardless of the board's polarity. Writes are idempotent:
// re-asserting the level already held is a harmless no-op.
type Output interface {
	SetLevel(on bool) error

	// Level reads the line back, corrected for polarity.
	Level() (bool, error)

	// Close drives the line OFF and releases it.
	Close() error
}

// Input reads one digital input line as a logical pressed state.
type Input interface {
	Pressed() (bool, error)

	// Close releases the line.
	Close() error
}

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// DefaultRelayLines maps relay numbers to BCM offsets for the standard
// 8-channel board wiring.
var DefaultRelayLines = map[int]int{
	1: 17, 2: 18, 3: 27, 4: 22,
	5: 23, 6: 24, 7: 25, 8: 4,
}

// DefaultButtonLine is the BCM offset of the front panel button.
const DefaultButtonLine = 26

// physicalLevel maps a logical relay state to the raw line value.
func physicalLevel(on, activeLow bool) int {
	if on != activeLow {
		return 1
	}
	return 0
}

// logicalLevel maps a raw line value back to the logical relay state.
func logicalLevel(raw int, activeLow bool) bool {
	return (raw != 0) != activeLow
}

// logicalPressed maps a raw input value to the logical pressed state.
// A pull-up wired button reads low while pressed.
func logicalPressed(raw int, pullUp bool) bool {
	if pullUp {
		return raw == 0
	}
	return raw != 0
}
