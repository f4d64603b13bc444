package gpio

import "errors"

// FakeReader is a test double that returns scripted raw levels. It also
// implements Watcher so edge-wake plumbing can be tested without hardware.
type FakeReader struct {
	// Samples contains scripted raw levels (true = high).
	// Each call to Read() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	// EdgesEnabled tracks the Watcher enable state.
	EdgesEnabled bool

	handler func()
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []bool) *FakeReader {
	return &FakeReader{Samples: samples, handler: nopHandler}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Watch registers the edge handler. A nil handler restores the no-op
// default.
func (f *FakeReader) Watch(handler func()) {
	if handler == nil {
		handler = nopHandler
	}
	f.handler = handler
}

// EnableEdgeEvents starts forwarding simulated edges to the handler.
func (f *FakeReader) EnableEdgeEvents() { f.EdgesEnabled = true }

// DisableEdgeEvents stops forwarding simulated edges.
func (f *FakeReader) DisableEdgeEvents() { f.EdgesEnabled = false }

// FireEdge simulates an edge interrupt. The handler runs only while edge
// events are enabled, mirroring the real backends.
func (f *FakeReader) FireEdge() {
	if f.EdgesEnabled {
		f.handler()
	}
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
