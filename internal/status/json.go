package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	State         string       `json:"state"`
	LastEvent     string       `json:"last_event,omitempty"`
	LastEventAt   string       `json:"last_event_at,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of gesture counts.
type CountsJSON struct {
	Clicks       int `json:"clicks"`
	DoubleClicks int `json:"double_clicks"`
	LongPresses  int `json:"long_presses"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Pin              int    `json:"pin"`
	Backend          string `json:"backend"`
	ActiveLow        bool   `json:"active_low"`
	PollMs           int64  `json:"poll_ms"`
	IdlePollMs       int64  `json:"idle_poll_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	ClickWindowMs    int64  `json:"click_window_ms"`
	PressThresholdMs int64  `json:"press_threshold_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
}

// StateString names the FSM occupancy for display: IDLE between gestures,
// ACTIVE while one is in flight.
func StateString(idle bool) string {
	if idle {
		return "IDLE"
	}
	return "ACTIVE"
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		State:         StateString(snap.Idle),
		LastEvent:     string(snap.LastEvent),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Clicks:       snap.Counts.Clicks,
			DoubleClicks: snap.Counts.DoubleClicks,
			LongPresses:  snap.Counts.LongPresses,
		},
		Config: ConfigJSON{
			Pin:              snap.Config.Pin,
			Backend:          snap.Config.Backend,
			ActiveLow:        snap.Config.ActiveLow,
			PollMs:           snap.Config.PollMs,
			IdlePollMs:       snap.Config.IdlePollMs,
			DebounceMs:       snap.Config.DebounceMs,
			ClickWindowMs:    snap.Config.ClickWindowMs,
			PressThresholdMs: snap.Config.PressThresholdMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}
	if !snap.LastEventAt.IsZero() {
		inner.LastEventAt = snap.LastEventAt.UTC().Format(time.RFC3339)
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
