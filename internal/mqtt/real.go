package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/relay-control/internal/config"
)

const publishTimeout = 5 * time.Second

// RealPublisher publishes to an actual MQTT broker. While the broker is
// unreachable, messages accumulate in a bounded backlog and are replayed
// on reconnect; the daemon never blocks an actuation on the network.
type RealPublisher struct {
	client paho.Client
	log    *slog.Logger

	mu      sync.Mutex
	queue   *backlog
	onState func(connected bool)
}

// NewRealPublisher creates a publisher for the configured broker. The
// connection is established in the background with automatic retry, so
// the daemon starts even when the broker is down.
func NewRealPublisher(cfg config.MQTTConfig, log *slog.Logger) *RealPublisher {
	p := &RealPublisher{
		log:   log,
		queue: newBacklog(cfg.BufferSize),
	}

	willPayload, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(TopicSystem, willPayload, 1, false).
		SetOnConnectHandler(p.handleConnect).
		SetConnectionLostHandler(p.handleConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// OnConnectionChange registers a callback invoked from the paho client
// goroutine whenever the connection state flips.
func (p *RealPublisher) OnConnectionChange(fn func(connected bool)) {
	p.mu.Lock()
	p.onState = fn
	p.mu.Unlock()
}

func (p *RealPublisher) handleConnect(client paho.Client) {
	p.log.Info("mqtt connected, draining backlog")

	p.mu.Lock()
	msgs, dropped := p.queue.drain()
	fn := p.onState
	p.mu.Unlock()

	if dropped > 0 {
		p.log.Warn("mqtt backlog overflowed while disconnected", "dropped", dropped)
	}
	for _, m := range msgs {
		token := client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
			p.log.Warn("mqtt replay failed", "topic", m.topic, "error", token.Error())
		}
	}

	if fn != nil {
		fn(true)
	}
}

func (p *RealPublisher) handleConnectionLost(_ paho.Client, err error) {
	p.log.Warn("mqtt connection lost", "error", err)

	p.mu.Lock()
	fn := p.onState
	p.mu.Unlock()
	if fn != nil {
		fn(false)
	}
}

// Publish sends a relay event at QoS 0, or queues it when disconnected.
func (p *RealPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(TopicEvents, 0, false, payload)
}

// PublishSystem sends a lifecycle event at QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(TopicSystem, 1, event.Retained, payload)
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		evicted := p.queue.push(queuedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		if evicted {
			p.log.Warn("mqtt backlog full, dropped oldest message")
		}
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker, allowing in-flight messages to
// flush.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
