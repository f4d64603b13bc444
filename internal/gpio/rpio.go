//go:build linux

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RpioReader reads the button pin through the Raspberry Pi's memory-mapped
// register interface (/dev/gpiomem). It is a plain polled backend with no
// edge wake support; use the cdev backend when idle-poll relaxation
// matters.
type RpioReader struct {
	pin rpio.Pin
}

// NewRpioReader maps the GPIO registers and configures the pin as input
// with the requested bias ("up", "down", or "none").
func NewRpioReader(pin int, pull string) (*RpioReader, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio registers: %w", err)
	}

	p := rpio.Pin(pin)
	p.Input()
	switch pull {
	case "down":
		p.PullDown()
	case "none":
		p.PullOff()
	default:
		p.PullUp()
	}

	return &RpioReader{pin: p}, nil
}

// Read returns the raw level of the button pin (true = high).
func (r *RpioReader) Read() (bool, error) {
	return r.pin.Read() == rpio.High, nil
}

// Close releases the pull resistor and unmaps the registers.
func (r *RpioReader) Close() error {
	r.pin.PullOff()
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close gpio registers: %w", err)
	}
	return nil
}
