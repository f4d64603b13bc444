// Package gpio provides button line access with hardware abstraction.
// Two real backends exist: the Linux GPIO character device (cdev) and the
// Raspberry Pi memory-mapped register interface (rpio). The fake
// implementation allows testing without hardware.
package gpio

// Reader reads the raw electrical level of the button line.
type Reader interface {
	// Read returns the raw level (true = high). Polarity is applied by
	// the button core, not here.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Watcher delivers edge-event wakeups. It is entirely independent of the
// debounce and gesture logic: an edge only nudges the poll loop to tick
// early, and the level is re-sampled and debounced as usual. Backends
// without edge support simply do not implement this interface.
type Watcher interface {
	// Watch registers the handler called on any edge. A nil handler
	// restores the no-op default. The handler runs on the backend's
	// event goroutine and must not block.
	Watch(handler func())

	// EnableEdgeEvents starts delivering edges to the handler.
	EnableEdgeEvents()

	// DisableEdgeEvents stops delivering edges. The line can still be
	// read while disabled.
	DisableEdgeEvents()
}

// DefaultPin is the default button line offset (BCM numbering).
const DefaultPin = 17

// nopHandler is the process-wide default edge handler. It has static
// lifetime and is shared by all instances; Watch(nil) restores it.
func nopHandler() {}
