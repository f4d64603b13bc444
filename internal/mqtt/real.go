package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/EMSS-Antennas/onebutton/internal/button"
)

// bufferCapacity bounds how many messages are held while the broker is
// unreachable. Gestures are low-rate, so a small buffer covers long outages.
const bufferCapacity = 64

// RealPublisher publishes to an actual MQTT broker. Messages that cannot
// be delivered while disconnected are held in a ring buffer and replayed
// from paho's OnConnect handler.
type RealPublisher struct {
	client paho.Client
	pin    int

	mu  sync.Mutex
	buf *ringBuffer
}

// NewRealPublisher creates a publisher connected to the given broker.
// The pin number is included in event payloads.
func NewRealPublisher(broker string, pin int) (*RealPublisher, error) {
	p := &RealPublisher{
		pin: pin,
		buf: newRingBuffer(bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("onebutton").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a gesture event to the MQTT broker.
func (p *RealPublisher) Publish(event button.Event) error {
	payload, err := FormatPayload(event, p.pin)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(Topic, payload, 0, false)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.send(TopicSystem, payload, 1, event.Retained)
}

// send publishes one message, buffering it for replay if the broker is
// unreachable.
func (p *RealPublisher) send(topic string, payload []byte, qos byte, retained bool) error {
	if !p.client.IsConnected() {
		p.buffer(topic, payload, qos, retained)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.buffer(topic, payload, qos, retained)
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		p.buffer(topic, payload, qos, retained)
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

func (p *RealPublisher) buffer(topic string, payload []byte, qos byte, retained bool) {
	p.mu.Lock()
	p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
	n := p.buf.len()
	p.mu.Unlock()
	log.Printf("mqtt: broker unreachable, buffered message (%d pending)", n)
}

// onConnect replays buffered messages. Runs on paho's goroutine for both
// the initial connect and every reconnect.
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}

	log.Printf("mqtt: connected, replaying %d buffered messages", len(msgs))
	for _, m := range msgs {
		token := client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: replay timeout, dropping message")
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: replay failed, dropping message: %v", err)
		}
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
