// Package router connects the MQTT wire to the device registry.
//
// A fleet of simulator replicas shares one broker with the backend and
// any dashboards. Each replica consumes device commands from a shared
// subscription, applies them to its registry, and publishes the state
// deltas its own simulation produces. The router is the single point
// where wire concerns (envelope tags, topic grammar, retry queueing)
// meet domain concerns (validation, registry mutation), which keeps
// both the transport wrapper and the device package free of each
// other's vocabulary.
//
// # Message flow
//
// Inbound, per message:
//
//  1. Decode the JSON envelope; a malformed payload is logged and
//     dropped.
//  2. Suppress echoes: a sender_id matching this instance, or a
//     sender_group matching its group, means the message originated
//     from this replica or a peer and is silently ignored. Missing
//     tags are logged but the message is still processed.
//  3. Split the topic into <ns>/<device-id>/<method> and dispatch:
//     post creates, update patches, delete removes. Unknown methods
//     and malformed topics are logged and dropped.
//
// Outbound, PublishDelta wraps a registry delta in the envelope and
// publishes it to the device's update topic. A publish that fails is
// appended to an unbounded FIFO retry queue; Flush, wired to the MQTT
// client's on-connect hook, replays the queue in order and stops at
// the first message that fails again.
//
// # Error handling
//
// HandleMessage never returns a non-nil error and never panics on bad
// input: validation failures, unknown ids, duplicates, and transport
// failures each become one log line. The process treats inbound
// traffic as untrusted.
package router
