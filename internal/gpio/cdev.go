//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// chipName is the character device all Raspberry Pi models expose.
const chipName = "gpiochip0"

// CdevReader reads the button line through the Linux GPIO character
// device. It also implements Watcher: the line is requested with
// both-edge detection, and delivery to the registered handler is gated by
// an enable flag rather than reconfiguring the line.
type CdevReader struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	handler atomic.Value // of func()
	enabled atomic.Bool
}

// NewCdevReader requests the line at the given offset as input with the
// requested bias ("up", "down", or "none"). Edge events start disabled
// with the no-op handler attached.
func NewCdevReader(offset int, pull string) (*CdevReader, error) {
	r := &CdevReader{}
	r.handler.Store(nopHandler)

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsInput, biasOption(pull),
		gpiocdev.WithBothEdges, gpiocdev.WithEventHandler(r.onEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", offset, err)
	}

	r.chip = chip
	r.line = line
	return r, nil
}

func biasOption(pull string) gpiocdev.LineReqOption {
	switch pull {
	case "down":
		return gpiocdev.WithPullDown
	case "none":
		return gpiocdev.WithBiasDisabled
	default:
		return gpiocdev.WithPullUp
	}
}

// Read returns the raw level of the button line (true = high).
func (r *CdevReader) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v != 0, nil
}

// Watch registers the edge handler. A nil handler restores the no-op
// default.
func (r *CdevReader) Watch(handler func()) {
	if handler == nil {
		handler = nopHandler
	}
	r.handler.Store(handler)
}

// EnableEdgeEvents starts forwarding edges to the registered handler.
func (r *CdevReader) EnableEdgeEvents() {
	r.enabled.Store(true)
}

// DisableEdgeEvents stops forwarding edges.
func (r *CdevReader) DisableEdgeEvents() {
	r.enabled.Store(false)
}

// onEvent runs on the gpiocdev event goroutine.
func (r *CdevReader) onEvent(gpiocdev.LineEvent) {
	if !r.enabled.Load() {
		return
	}
	r.handler.Load().(func())()
}

// Close releases the line and the chip.
func (r *CdevReader) Close() error {
	r.DisableEdgeEvents()

	var errs []error
	if r.line != nil {
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
