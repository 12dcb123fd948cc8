// Package telemetry streams device state changes to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Every delta the
// simulation or the router produces is flattened into numeric samples
// and written through the non-blocking batched write API, so a slow or
// absent InfluxDB never stalls the tick loop.
//
// # Usage
//
//	client, err := telemetry.Connect(cfg.Telemetry)
//	if err != nil {
//	    // ErrDisabled when telemetry.enabled is false
//	}
//	defer client.Close()
//
//	client.RecordDelta("light-living", map[string]any{"status": "on"})
//
// # Error Handling
//
// Writes are batched and asynchronous; failures surface through the
// SetOnError callback rather than return values. Connection and health
// check errors are returned directly.
package telemetry
