// Package status provides a thread-safe status tracker for the onebutton
// daemon. It is designed to be read by HTTP handlers and the MQTT
// heartbeat path.
package status

import (
	"sync"
	"time"

	"github.com/EMSS-Antennas/onebutton/internal/button"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Pin              int
	Backend          string
	ActiveLow        bool
	PollMs           int64
	IdlePollMs       int64
	DebounceMs       int64
	ClickWindowMs    int64
	PressThresholdMs int64
	HeartbeatMs      int64
	Broker           string
	HTTPAddr         string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Idle          bool
	LastEvent     button.EventType
	LastEventAt   time.Time
	Counts        button.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    button.EventCounts
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu            sync.RWMutex
	snap          Snapshot
	lastHeartbeat time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Idle:      true,
			StartTime: startTime,
			Config:    cfg,
		},
		lastHeartbeat: startTime,
	}
}

// RecordEvent notes a completed gesture: last event, its time, and the
// per-gesture counters.
func (t *Tracker) RecordEvent(event button.Event) {
	t.mu.Lock()
	t.snap.LastEvent = event.Type
	t.snap.LastEventAt = event.Timestamp
	switch event.Type {
	case button.EventClick:
		t.snap.Counts.Clicks++
	case button.EventDoubleClick:
		t.snap.Counts.DoubleClicks++
	case button.EventLongPressStart:
		t.snap.Counts.LongPresses++
	}
	t.mu.Unlock()
}

// SetIdle sets whether the gesture state machine is between gestures.
// Called from runLoop on every tick.
func (t *Tracker) SetIdle(idle bool) {
	t.mu.Lock()
	t.snap.Idle = idle
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed, or if interval is <= 0 (disabled).
func (t *Tracker) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.lastHeartbeat) < interval {
		return nil
	}

	t.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(t.snap.StartTime),
		Counts:    t.snap.Counts,
	}
}
