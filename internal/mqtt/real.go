package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	paho "github.com/eclipse/paho.mqtt.golang"
)

// bufferCapacity bounds how many messages are held while disconnected.
const bufferCapacity = 64

// RealPublisher publishes to an actual MQTT broker. Messages that cannot
// be delivered while the connection is down are held in a ring buffer and
// replayed in order on reconnect.
type RealPublisher struct {
	client paho.Client
	logger *log.Logger

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker string, logger *log.Logger) (*RealPublisher, error) {
	p := &RealPublisher{
		buffer: newRingBuffer(bufferCapacity),
		logger: logger,
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("repeater-controller").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) { p.replay() })

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

// Publish sends a repeater activity event to the MQTT broker.
func (p *RealPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.send(TopicSystem, 1, event.Retained, payload)
}

// IsConnected reports whether the client currently has a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.hold(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.hold(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		p.hold(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

func (p *RealPublisher) hold(msg bufferedMsg) {
	p.mu.Lock()
	dropped := p.buffer.push(msg)
	pending := p.buffer.len()
	p.mu.Unlock()

	if dropped {
		p.logger.Warn("mqtt buffer full, dropping oldest message", "capacity", bufferCapacity)
	} else {
		p.logger.Debug("buffered mqtt message while disconnected", "pending", pending)
	}
}

// replay publishes everything buffered while disconnected, oldest first.
func (p *RealPublisher) replay() {
	p.mu.Lock()
	msgs := p.buffer.drainAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	p.logger.Info("replaying buffered mqtt messages", "count", len(msgs))
	for _, m := range msgs {
		p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}
