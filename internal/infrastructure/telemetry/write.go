package telemetry

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// statusValues maps the binary device statuses onto gauge values so a
// dashboard can plot them alongside numeric attributes.
var statusValues = map[string]float64{
	"on":       1,
	"off":      0,
	"open":     1,
	"closed":   0,
	"locked":   1,
	"unlocked": 0,
}

// WriteDeviceMetric writes a single device sample.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Nil-safe, so callers can hold a nil client when telemetry is
// disabled.
func (c *Client) WriteDeviceMetric(deviceID, attribute string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"device_id": deviceID,
			"attribute": attribute,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordDelta flattens a device state delta into numeric samples and
// writes one point per changed attribute. Attributes with no numeric
// reading, such as colours or schedule clock times, are skipped.
func (c *Client) RecordDelta(deviceID string, delta map[string]any) {
	if !c.IsConnected() {
		return
	}
	for attribute, value := range FlattenDelta(delta) {
		c.WriteDeviceMetric(deviceID, attribute, value)
	}
}

// FlattenDelta converts a state delta, as produced by device ticks or
// decoded from the wire, into plottable samples.
//
// A "status" string maps through statusValues; nested parameter maps
// contribute their numeric and boolean members; everything else is
// dropped. Both native ints from tick deltas and float64s from JSON
// decoding are accepted.
func FlattenDelta(delta map[string]any) map[string]float64 {
	samples := make(map[string]float64)
	for key, value := range delta {
		switch key {
		case "status":
			s, ok := value.(string)
			if !ok {
				continue
			}
			if v, ok := statusValues[s]; ok {
				samples["status"] = v
			}
		case "parameters":
			params, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for name, raw := range params {
				if v, ok := numeric(raw); ok {
					samples[name] = v
				}
			}
		default:
			if v, ok := numeric(value); ok {
				samples[key] = v
			}
		}
	}
	return samples
}

// numeric coerces the value types deltas actually carry.
func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
