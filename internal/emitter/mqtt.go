// Package emitter publishes posture results and health snapshots to an
// MQTT broker.
package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/sajadah/posesensor/internal/config"
	"github.com/sajadah/posesensor/internal/pipeline"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 2 * time.Second
)

// MQTTEmitter publishes pipeline output to an MQTT broker.
type MQTTEmitter struct {
	cfg    *config.Config
	client mqtt.Client

	mu        sync.Mutex
	published uint64
	errors    uint64
	connected bool
}

// NewMQTTEmitter creates an emitter for the given configuration.
func NewMQTTEmitter(cfg *config.Config) *MQTTEmitter {
	return &MQTTEmitter{cfg: cfg}
}

// Connect establishes the broker connection with auto-reconnect.
func (e *MQTTEmitter) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", e.cfg.MQTT.Broker))
	opts.SetClientID(e.cfg.InstanceID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		e.mu.Lock()
		e.connected = true
		e.mu.Unlock()
		slog.Info("mqtt connection established",
			"broker", e.cfg.MQTT.Broker,
			"client_id", e.cfg.InstanceID,
		)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		e.mu.Lock()
		e.connected = false
		e.mu.Unlock()
		slog.Warn("mqtt connection lost, will auto-reconnect",
			"error", err,
		)
	}

	e.client = mqtt.NewClient(opts)

	token := e.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect timeout after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect failed: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

// PublishPosture publishes one classified frame result.
func (e *MQTTEmitter) PublishPosture(res pipeline.Result) error {
	payload := struct {
		InstanceID string `json:"instance_id"`
		pipeline.Result
	}{
		InstanceID: e.cfg.InstanceID,
		Result:     res,
	}
	return e.publish(e.cfg.MQTT.Topics.Postures, payload)
}

// HealthSnapshot is the health payload published periodically.
type HealthSnapshot struct {
	InstanceID    string         `json:"instance_id"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Pipeline      pipeline.Stats `json:"pipeline"`
	MQTTConnected bool           `json:"mqtt_connected"`
	Timestamp     time.Time      `json:"timestamp"`
}

// PublishHealth publishes a health snapshot.
func (e *MQTTEmitter) PublishHealth(snap HealthSnapshot) error {
	return e.publish(e.cfg.MQTT.Topics.Health, snap)
}

func (e *MQTTEmitter) publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	token := e.client.Publish(topic, e.cfg.MQTT.QoS, false, data)
	if !token.WaitTimeout(publishTimeout) {
		e.countError()
		return fmt.Errorf("mqtt publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		e.countError()
		return fmt.Errorf("mqtt publish failed on %s: %w", topic, err)
	}

	e.mu.Lock()
	e.published++
	e.mu.Unlock()
	return nil
}

func (e *MQTTEmitter) countError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}

// IsConnected reports the current broker connection state.
func (e *MQTTEmitter) IsConnected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connected
}

// Published returns how many messages were published successfully.
func (e *MQTTEmitter) Published() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.published
}

// Close disconnects from the broker.
func (e *MQTTEmitter) Close() {
	if e.client != nil && e.client.IsConnected() {
		e.client.Disconnect(250) // ms grace for in-flight publishes
	}
}
