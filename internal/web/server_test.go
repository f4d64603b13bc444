package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/EMSS-Antennas/onebutton/internal/button"
	"github.com/EMSS-Antennas/onebutton/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Pin:              17,
		Backend:          "cdev",
		ActiveLow:        true,
		PollMs:           10,
		IdlePollMs:       50,
		DebounceMs:       50,
		ClickWindowMs:    400,
		PressThresholdMs: 800,
		HeartbeatMs:      900000,
		Broker:           "tcp://192.168.1.200:1883",
		HTTPAddr:         ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.RecordEvent(button.Event{
		Timestamp: time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC),
		Type:      button.EventClick,
	})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.State != "IDLE" {
		t.Errorf("state: got %q, want IDLE", sj.Status.State)
	}
	if sj.Status.LastEvent != "CLICK" {
		t.Errorf("last event: got %q, want CLICK", sj.Status.LastEvent)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.Clicks != 1 {
		t.Errorf("clicks: got %d, want 1", sj.Status.Counts.Clicks)
	}
	if sj.Status.Config.Pin != 17 {
		t.Errorf("config pin: got %d, want 17", sj.Status.Config.Pin)
	}
	if sj.Status.Config.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("config broker: got %q", sj.Status.Config.Broker)
	}
}

func TestIndexPage(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.RecordEvent(button.Event{
		Timestamp: time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC),
		Type:      button.EventDoubleClick,
	})
	tr.SetIdle(false)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	html := string(body)

	for _, want := range []string{
		"Button Monitor",
		"ACTIVE",
		"DOUBLE_CLICK",
		"tcp://192.168.1.200:1883",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestIndexPageBeforeAnyGesture(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	html := string(body)

	if !strings.Contains(html, "IDLE") {
		t.Error("index page should show IDLE before any gesture")
	}
	if strings.Contains(html, "Last Event") {
		t.Error("index page should omit the last event row before any gesture")
	}
}

func TestNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
