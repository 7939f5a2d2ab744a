//go:build linux

package gpio

import "github.com/warthog618/go-gpiocdev"

// The bias value is used both when requesting a line and when
// reconfiguring one at teardown, so it must satisfy both option
// interfaces.
var (
	_ gpiocdev.LineReqOption    = biasFor(true)
	_ gpiocdev.LineConfigOption = biasFor(false)
)
