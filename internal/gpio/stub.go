//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// CdevReader is not available on non-Linux platforms.
type CdevReader struct{}

// NewCdevReader returns an error on non-Linux platforms.
func NewCdevReader(offset int, pull string) (*CdevReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *CdevReader) Read() (bool, error) { return false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (r *CdevReader) Close() error { return nil }

// Watch is a no-op on non-Linux platforms.
func (r *CdevReader) Watch(handler func()) {}

// EnableEdgeEvents is a no-op on non-Linux platforms.
func (r *CdevReader) EnableEdgeEvents() {}

// DisableEdgeEvents is a no-op on non-Linux platforms.
func (r *CdevReader) DisableEdgeEvents() {}

// RpioReader is not available on non-Linux platforms.
type RpioReader struct{}

// NewRpioReader returns an error on non-Linux platforms.
func NewRpioReader(pin int, pull string) (*RpioReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RpioReader) Read() (bool, error) { return false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (r *RpioReader) Close() error { return nil }
