package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/NadavNV/SmartHomeSimulator/internal/device"
	"github.com/NadavNV/SmartHomeSimulator/internal/infrastructure/mqtt"
)

// Methods recognised on device topics.
const (
	methodPost   = "post"
	methodUpdate = "update"
	methodDelete = "delete"
)

// DefaultGroup is the sender group shared by every simulator replica.
const DefaultGroup = "simulator"

// Publisher is the outbound transport the router publishes through.
// Satisfied by *mqtt.Client; mocked in tests.
type Publisher interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger is the narrow logging interface the router depends on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Router translates between the MQTT wire and the device registry.
// Inbound messages become registry operations; outbound state deltas
// become tagged publishes. Every domain error is converted into a log
// line at this boundary, so a bad message can never take the process
// down. Publishes that fail while the broker is unreachable land in a
// FIFO retry queue which Flush replays after reconnect.
//
// Thread Safety: all methods are safe for concurrent use.
type Router struct {
	registry *device.Registry
	pub      Publisher
	topics   mqtt.Topics
	qos      byte
	clientID string
	group    string

	queue *retryQueue

	logger   Logger
	loggerMu sync.RWMutex
}

// Options holds configuration for creating a router.
type Options struct {
	// Registry is the device registry operations dispatch into.
	Registry *device.Registry

	// Publisher is the outbound transport.
	Publisher Publisher

	// Namespace is the device topic namespace. Empty selects
	// mqtt.DefaultNamespace.
	Namespace string

	// QoS applies to every outbound publish.
	QoS byte

	// ClientID is this instance's sender identity. Inbound messages
	// carrying it are echoes of our own publishes and are dropped.
	ClientID string

	// Group is the sender group stamped on outbound messages. Inbound
	// messages from the same group are peer-replica traffic and are
	// dropped. Empty selects DefaultGroup.
	Group string

	// Logger is optional structured logger. Nil silences the router.
	Logger Logger
}

// New creates a router. Wire HandleMessage into the MQTT subscription
// and PublishDelta into the simulation loop; call Flush from the
// on-connect hook so queued publishes replay once the broker is back.
func New(opts Options) (*Router, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if opts.ClientID == "" {
		return nil, fmt.Errorf("client id is required")
	}

	group := opts.Group
	if group == "" {
		group = DefaultGroup
	}

	return &Router{
		registry: opts.Registry,
		pub:      opts.Publisher,
		topics:   mqtt.Topics{Namespace: opts.Namespace},
		qos:      opts.QoS,
		clientID: opts.ClientID,
		group:    group,
		queue:    &retryQueue{},
		logger:   opts.Logger,
	}, nil
}

// HandleMessage consumes one inbound MQTT message. It matches the
// mqtt.MessageHandler signature but always returns nil: every failure
// mode ends in a log line here, not an error the transport would log
// a second time.
func (r *Router) HandleMessage(topic string, payload []byte) error {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		r.logError("Failed to decode message payload", "topic", topic, "error", err)
		return nil
	}

	// Sender tags are inspected before anything else so echoes of our
	// own publishes stay completely silent. Untagged messages are an
	// anomaly worth logging, but they still get processed.
	if env.SenderID == "" {
		r.logError("Message missing sender")
	}
	if env.SenderGroup == "" {
		r.logError("Message missing sender group")
	}
	if env.SenderID == r.clientID || env.SenderGroup == r.group {
		return nil
	}

	r.logInfo(fmt.Sprintf("MQTT Message Received on %s", topic))

	deviceID, method, err := mqtt.SplitDeviceTopic(topic)
	if err != nil {
		r.logError(fmt.Sprintf("Incorrect topic %s", topic))
		return nil
	}

	switch method {
	case methodPost:
		r.handlePost(deviceID, env.Contents)
	case methodUpdate:
		r.handleUpdate(deviceID, env.Contents)
	case methodDelete:
		r.handleDelete(deviceID)
	default:
		r.logError(fmt.Sprintf("Unknown method: %s", method))
	}
	return nil
}

// handlePost creates a new device from the message contents. The topic
// id is authoritative; a contents id that disagrees with it rejects the
// whole message before validation.
func (r *Router) handlePost(deviceID string, contents map[string]any) {
	if payloadID, ok := contents["id"].(string); ok && payloadID != deviceID {
		r.logError(fmt.Sprintf("ID mismatch: ID in URL: %s, ID in payload: %s", deviceID, payloadID))
		return
	}

	err := r.registry.Create(contents)
	var verr *device.ValidationError
	switch {
	case err == nil:
		// Registry logs the success line.
	case errors.As(err, &verr):
		r.logError(fmt.Sprintf("Failed to create device, reasons: %s", device.FormatReasons(verr.Reasons)))
	default:
		r.logError(err.Error())
	}
}

func (r *Router) handleUpdate(deviceID string, contents map[string]any) {
	err := r.registry.ApplyUpdate(deviceID, contents)
	var verr *device.ValidationError
	switch {
	case err == nil:
		r.logInfo(fmt.Sprintf("Device %s updated successfully", deviceID))
	case errors.Is(err, device.ErrNotFound):
		r.logError(fmt.Sprintf("Device ID %s not found", deviceID))
	case errors.As(err, &verr):
		r.logError(fmt.Sprintf("Failed to update device, reasons: %s", device.FormatReasons(verr.Reasons)))
	default:
		r.logError("Failed to update device", "device_id", deviceID, "error", err)
	}
}

func (r *Router) handleDelete(deviceID string) {
	switch err := r.registry.Remove(deviceID); {
	case err == nil:
		r.logInfo(fmt.Sprintf("Device %s deleted successfully", deviceID))
	case errors.Is(err, device.ErrNotFound):
		r.logError(fmt.Sprintf("Device ID %s not found", deviceID))
	default:
		r.logError("Failed to delete device", "device_id", deviceID, "error", err)
	}
}

// PublishDelta wraps a device state delta in this instance's sender
// envelope and publishes it to the device's update topic. A failed
// publish is queued for replay on the next successful connect.
func (r *Router) PublishDelta(deviceID string, delta map[string]any) {
	env := Envelope{
		SenderID:    r.clientID,
		SenderGroup: r.group,
		Contents:    delta,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		r.logError("Failed to encode update", "device_id", deviceID, "error", err)
		return
	}

	r.publishOrQueue(queuedMessage{
		topic:   r.topics.DeviceUpdate(deviceID),
		payload: payload,
		qos:     r.qos,
	})
}

func (r *Router) publishOrQueue(msg queuedMessage) {
	if err := r.pub.Publish(msg.topic, msg.payload, msg.qos, msg.retained); err != nil {
		r.logError("Error trying to publish, reason code: 1.", "error", err)
		r.queue.push(msg)
	}
}

// Flush replays queued messages in order. A replay that fails stops the
// flush and restores the message to the head of the queue, so original
// order survives for the next attempt.
func (r *Router) Flush() {
	for {
		msg, ok := r.queue.pop()
		if !ok {
			return
		}
		if err := r.pub.Publish(msg.topic, msg.payload, msg.qos, msg.retained); err != nil {
			r.logError("Error trying to publish, reason code: 1.", "error", err)
			r.queue.pushFront(msg)
			return
		}
	}
}

// QueueLen reports how many failed publishes are waiting for replay.
func (r *Router) QueueLen() int {
	return r.queue.len()
}

// SetLogger sets the logger for the router.
func (r *Router) SetLogger(logger Logger) {
	r.loggerMu.Lock()
	r.logger = logger
	r.loggerMu.Unlock()
}

func (r *Router) logInfo(msg string, args ...any) {
	r.loggerMu.RLock()
	logger := r.logger
	r.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, args...)
	}
}

func (r *Router) logError(msg string, args ...any) {
	r.loggerMu.RLock()
	logger := r.logger
	r.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, args...)
	}
}
