// Command onebutton monitors a push-button on a GPIO line and publishes
// click, double-click, and long-press events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EMSS-Antennas/onebutton/internal/button"
	"github.com/EMSS-Antennas/onebutton/internal/gpio"
	"github.com/EMSS-Antennas/onebutton/internal/mqtt"
	"github.com/EMSS-Antennas/onebutton/internal/status"
	"github.com/EMSS-Antennas/onebutton/internal/web"
)

func main() {
	pin := flag.Int("pin", gpio.DefaultPin, "BCM pin number of the button line")
	backend := flag.String("backend", "cdev", "GPIO backend: cdev or rpio")
	pull := flag.String("pull", "up", "Bias resistor: up, down, or none")
	activeLow := flag.Bool("active-low", true, "Pressed level is electrically low")
	poll := flag.Duration("poll", 10*time.Millisecond, "GPIO polling interval")
	idlePoll := flag.Duration("idle-poll", 50*time.Millisecond, "Polling interval while idle (cdev backend relaxes to this between gestures)")
	debounce := flag.Duration("debounce", 50*time.Millisecond, "Debounce settle time")
	clickWindow := flag.Duration("click-window", 400*time.Millisecond, "Maximum gap between clicks of one group")
	pressThreshold := flag.Duration("press-threshold", 800*time.Millisecond, "Held duration that classifies a long press")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	printLevel := flag.Bool("print-level", false, "Print current line level and exit")

	flag.Parse()

	cfg := button.Config{
		ActiveLow:      *activeLow,
		DebounceTime:   *debounce,
		ClickWindow:    *clickWindow,
		PressThreshold: *pressThreshold,
	}
	if err := run(*pin, *backend, *pull, cfg, *poll, *idlePoll, *broker, *heartbeat, *httpAddr, *printLevel); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// newReader opens the selected GPIO backend.
func newReader(backend string, pin int, pull string) (gpio.Reader, error) {
	switch backend {
	case "cdev":
		return gpio.NewCdevReader(pin, pull)
	case "rpio":
		return gpio.NewRpioReader(pin, pull)
	default:
		return nil, fmt.Errorf("unknown gpio backend %q (want cdev or rpio)", backend)
	}
}

func run(pin int, backend, pull string, cfg button.Config, poll, idlePoll time.Duration, broker string, heartbeat time.Duration, httpAddr string, printLevel bool) error {
	// Initialize GPIO
	reader, err := newReader(backend, pin, pull)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	// Print level mode
	if printLevel {
		raw, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("pin %d: %s (%s)\n", pin, levelString(raw), pressedString(raw, cfg.ActiveLow))
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(broker, pin)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Pin:              pin,
		Backend:          backend,
		ActiveLow:        cfg.ActiveLow,
		PollMs:           poll.Milliseconds(),
		IdlePollMs:       idlePoll.Milliseconds(),
		DebounceMs:       cfg.DebounceTime.Milliseconds(),
		ClickWindowMs:    cfg.ClickWindow.Milliseconds(),
		PressThresholdMs: cfg.PressThreshold.Milliseconds(),
		HeartbeatMs:      heartbeat.Milliseconds(),
		Broker:           broker,
		HTTPAddr:         httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: pin=%d backend=%s poll=%v debounce=%v click-window=%v press-threshold=%v broker=%s heartbeat=%v",
		pin, backend, poll, cfg.DebounceTime, cfg.ClickWindow, cfg.PressThreshold, broker, heartbeat)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	// Edge wakeups let the loop relax to the idle poll rate between
	// gestures without missing a press: the edge only triggers an early
	// sample, debouncing proceeds as usual.
	wake := make(chan struct{}, 1)
	var onIdleChange func(bool)
	if w, ok := reader.(gpio.Watcher); ok && idlePoll > poll {
		w.Watch(func() {
			select {
			case wake <- struct{}{}:
			default:
			}
		})
		w.EnableEdgeEvents()
		defer w.DisableEdgeEvents()

		onIdleChange = func(idle bool) {
			if idle {
				ticker.Reset(idlePoll)
			} else {
				ticker.Reset(poll)
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(reader, publisher, publisher, tracker, cfg, heartbeat, time.Now, ticker.C, wake, sigCh, onIdleChange)
}

func runLoop(reader gpio.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, cfg button.Config, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, wake <-chan struct{}, sig <-chan os.Signal, onIdleChange func(bool)) error {
	start := now()

	// The gesture core runs on a monotonic millisecond clock derived from
	// the injected time source, so tests can drive both together.
	var pending []button.Event
	btn := button.New(nil, func() uint32 {
		return uint32(now().Sub(start).Milliseconds())
	}, cfg)
	stage := func(typ button.EventType) button.Callback {
		return func() {
			pending = append(pending, button.Event{Timestamp: now(), Type: typ})
		}
	}
	btn.OnClick(stage(button.EventClick))
	btn.OnDoubleClick(stage(button.EventDoubleClick))
	btn.OnLongPressStart(stage(button.EventLongPressStart))

	wasIdle := true

	step := func() {
		raw, err := reader.Read()
		if err != nil {
			log.Printf("gpio read error: %v", err)
			return
		}

		btn.TickLevel(raw)

		for _, event := range pending {
			log.Printf("event: %s", event.Type)
			if err := publisher.Publish(event); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}
			tracker.RecordEvent(event)
		}
		pending = pending[:0]

		idle := btn.IsIdle()
		tracker.SetIdle(idle)
		if idle != wasIdle {
			wasIdle = idle
			if onIdleChange != nil {
				onIdleChange(idle)
			}
		}
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}

		// Check for heartbeat
		if hbData := tracker.CheckHeartbeat(now(), heartbeat); hbData != nil {
			log.Printf("heartbeat: uptime=%v clicks=%d double_clicks=%d long_presses=%d",
				hbData.Uptime, hbData.Counts.Clicks, hbData.Counts.DoubleClicks, hbData.Counts.LongPresses)

			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			hbEvent := mqtt.SystemEvent{
				Timestamp:  hbData.Timestamp,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", ""),
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-wake:
			// Edge interrupt: sample early instead of waiting for the
			// next poll tick.
			step()

		case <-tick:
			step()
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func levelString(raw bool) string {
	if raw {
		return "HIGH"
	}
	return "LOW"
}

func pressedString(raw, activeLow bool) string {
	if raw != activeLow {
		return "pressed"
	}
	return "released"
}
