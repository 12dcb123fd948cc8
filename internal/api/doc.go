// Package api implements the simulator's observability HTTP surface.
//
// This package provides:
//   - Liveness and readiness endpoints for container probes
//   - Read-only device endpoints serving the same wire records the
//     MQTT protocol uses, so a dashboard can watch the simulated fleet
//   - A metrics snapshot (runtime, broker link, tick counter, fleet)
//   - A WebSocket hub streaming outbound device deltas in real time
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The server reads from the device registry and never writes to it;
// all mutation flows through the MQTT router. Deltas produced by the
// simulation loop are pushed into the hub via Server.BroadcastDelta,
// so WebSocket clients see exactly what is published to the broker.
//
// # Graceful Degradation
//
// Broker, queue and tick-counter dependencies are optional. Without
// them the readiness and metrics payloads simply omit those readings,
// which keeps handler tests free of transport setup.
package api
