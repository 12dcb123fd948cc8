package mqtt

import (
	"fmt"
	"strings"
)

// DefaultNamespace is the topic namespace shared with the backend and
// any peer simulator replicas. Every device topic lives under it.
const DefaultNamespace = "nadavnv-smart-home/devices"

// deviceTopicSegments is the exact segment count of a device topic:
// <ns-part1>/<ns-part2>/<device-id>/<method>.
const deviceTopicSegments = 4

// Topics builds MQTT topics for the device namespace. A zero value uses
// DefaultNamespace; set Namespace to follow a non-default configuration.
//
//	topics := mqtt.Topics{Namespace: cfg.MQTT.Topic}
//	topics.DeviceUpdate("bedroom-light")
//	// Returns: "nadavnv-smart-home/devices/bedroom-light/update"
type Topics struct {
	Namespace string
}

func (t Topics) ns() string {
	if t.Namespace == "" {
		return DefaultNamespace
	}
	return t.Namespace
}

// DeviceUpdate returns the topic for partial state updates of a device.
//
// Example: nadavnv-smart-home/devices/bedroom-light/update
func (t Topics) DeviceUpdate(deviceID string) string {
	return fmt.Sprintf("%s/%s/update", t.ns(), deviceID)
}

// DevicePost returns the topic for creating a device.
//
// Example: nadavnv-smart-home/devices/bedroom-light/post
func (t Topics) DevicePost(deviceID string) string {
	return fmt.Sprintf("%s/%s/post", t.ns(), deviceID)
}

// DeviceDelete returns the topic for removing a device.
//
// Example: nadavnv-smart-home/devices/bedroom-light/delete
func (t Topics) DeviceDelete(deviceID string) string {
	return fmt.Sprintf("%s/%s/delete", t.ns(), deviceID)
}

// ClientStatus returns the topic carrying a simulator instance's
// online/offline status. The payload is enveloped with sender tags, so
// peer replicas drop it during sender filtering.
//
// Example: nadavnv-smart-home/devices/simulator-abc123/status
func (t Topics) ClientStatus(clientID string) string {
	return fmt.Sprintf("%s/%s/status", t.ns(), clientID)
}

// Shared returns the shared-subscription filter for a consumer group.
// The broker delivers each message to exactly one member of the group,
// so replicas split the inbound load instead of duplicating work.
//
// Example: $share/simulator/nadavnv-smart-home/devices/#
func (t Topics) Shared(group string) string {
	return fmt.Sprintf("$share/%s/%s/#", group, t.ns())
}

// SplitDeviceTopic extracts the device id and method from an inbound
// device topic. The topic must have exactly four segments; the device id
// is the third and the method the fourth. Namespace segments are not
// checked against the configured namespace, matching the subscription
// filter which already scopes what arrives.
func SplitDeviceTopic(topic string) (deviceID, method string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != deviceTopicSegments {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}
	return parts[2], parts[3], nil
}
