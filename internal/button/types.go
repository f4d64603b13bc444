// Package button contains the pure debounce and click-detection core.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time comes from an injected millisecond clock, so every path is testable.
package button

import "time"

// EventType classifies a completed button gesture.
type EventType string

const (
	EventClick          EventType = "CLICK"
	EventDoubleClick    EventType = "DOUBLE_CLICK"
	EventLongPressStart EventType = "LONG_PRESS_START"
)

// Event is a completed gesture to be published. The core itself only
// invokes callbacks; consumers build Events in those callbacks.
type Event struct {
	Timestamp time.Time
	Type      EventType
}

// Callback is a gesture notification. Callbacks run synchronously inside
// Tick and must return quickly; they block the next tick.
type Callback func()

// LevelFunc samples the raw electrical level of the input line
// (true = high). It is total: no error path.
type LevelFunc func() bool

// ClockFunc returns monotonic milliseconds. The value wraps modulo 2^32;
// all elapsed-time math in this package is unsigned subtraction, so
// wraparound is harmless for realistic intervals.
type ClockFunc func() uint32

// SystemClock returns a ClockFunc backed by the runtime's monotonic clock,
// anchored at the moment of the call.
func SystemClock() ClockFunc {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

// Config holds the timing and polarity parameters for one button.
type Config struct {
	// ActiveLow is true when the pressed level is electrically low
	// (button pulls the line to ground, input has a pull-up).
	ActiveLow bool

	// DebounceTime is the minimum duration the raw level must hold
	// before a change is accepted as real.
	DebounceTime time.Duration

	// ClickWindow is the maximum gap after a release during which a
	// second press still counts toward the same click group.
	ClickWindow time.Duration

	// PressThreshold is the minimum held duration before a press is
	// classified as a long press.
	PressThreshold time.Duration
}

// DefaultConfig returns the conventional timings for a panel push-button:
// active-low, 50ms debounce, 400ms click window, 800ms press threshold.
func DefaultConfig() Config {
	return Config{
		ActiveLow:      true,
		DebounceTime:   50 * time.Millisecond,
		ClickWindow:    400 * time.Millisecond,
		PressThreshold: 800 * time.Millisecond,
	}
}

// EventCounts tracks the number of each gesture since startup.
type EventCounts struct {
	Clicks       int
	DoubleClicks int
	LongPresses  int
}
