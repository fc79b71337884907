package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/plant-monitor/internal/plant"
)

// offlineBufferSize bounds how many messages are held while disconnected.
// One sample per minute means roughly an hour of readings survive a broker
// outage.
const offlineBufferSize = 64

// RealPublisher publishes to an actual MQTT broker and serves the command
// topic. Messages published while disconnected are buffered and replayed
// on reconnect.
type RealPublisher struct {
	client  paho.Client
	handler CommandHandler

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewRealPublisher creates a publisher connected to the given broker.
// handler may be nil to disable the command topic.
func NewRealPublisher(broker string, handler CommandHandler) (*RealPublisher, error) {
	p := &RealPublisher{
		handler: handler,
		buffer:  newRingBuffer(offlineBufferSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("plant-monitor").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect)

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

// onConnect runs on every (re)connect: re-subscribe the command topic and
// drain anything buffered while offline.
func (p *RealPublisher) onConnect(client paho.Client) {
	if p.handler != nil {
		token := client.Subscribe(TopicCommand, 1, p.handleCommand)
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("mqtt: subscribe %s: %v", TopicCommand, token.Error())
		}
	}

	p.mu.Lock()
	msgs := p.buffer.drainAll()
	p.mu.Unlock()
	if len(msgs) == 0 {
		return
	}

	log.Printf("mqtt: replaying %d buffered messages", len(msgs))
	for _, m := range msgs {
		token := client.Publish(m.topic, m.qos, m.retained, m.payload)
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("mqtt: replay to %s: %v", m.topic, token.Error())
		}
	}
}

func (p *RealPublisher) handleCommand(_ paho.Client, msg paho.Message) {
	var cmd Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		log.Printf("mqtt: bad command payload: %v", err)
		p.respond(FormatErrorResponse(fmt.Errorf("bad command payload: %w", err)))
		return
	}

	resp, err := p.handler(cmd)
	if err != nil {
		log.Printf("mqtt: command %q failed: %v", cmd.Cmd, err)
		resp = FormatErrorResponse(err)
	}
	p.respond(resp)
}

func (p *RealPublisher) respond(payload []byte) {
	token := p.client.Publish(TopicData, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("mqtt: response publish timeout")
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("mqtt: response publish: %v", err)
	}
}

// publish sends one message, buffering it instead when disconnected.
func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buffer.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		n := p.buffer.len()
		p.mu.Unlock()
		log.Printf("mqtt: disconnected, buffered message for %s (%d pending)", topic, n)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishReading sends one sensor sample to the MQTT broker.
func (p *RealPublisher) PublishReading(s plant.Sample) error {
	payload, err := FormatReadingPayload(s)
	if err != nil {
		return fmt.Errorf("format reading payload: %w", err)
	}
	// QoS 0 (at-most-once): the next reading is a minute away anyway
	return p.publish(TopicReadings, 0, false, payload)
}

// PublishCondition sends a condition-change event to the MQTT broker.
func (p *RealPublisher) PublishCondition(e ConditionEvent) error {
	payload, err := FormatConditionPayload(e)
	if err != nil {
		return fmt.Errorf("format condition payload: %w", err)
	}
	// QoS 1 and retained: a remote client should always see the latest verdict
	return p.publish(TopicEvents, 1, true, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for shutdown events - we want to ensure delivery
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

// IsConnected reports whether the broker connection is active.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
