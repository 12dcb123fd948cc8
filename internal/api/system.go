package api

import (
	"net/http"
)

// handleReady is the readiness probe.
//
// The simulator is ready once the fleet has been loaded and, when a
// broker is wired in, the MQTT session is up. Until both hold the probe
// returns 503 so orchestrators keep traffic away while the simulator is
// still bootstrapping or reconnecting.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	devices := s.registry.Len()
	ready := devices > 0

	payload := map[string]any{
		"devices": devices,
	}
	if s.broker != nil {
		connected := s.broker.IsConnected()
		payload["broker_connected"] = connected
		ready = ready && connected
	}
	if s.queue != nil {
		payload["queued_messages"] = s.queue.QueueLen()
	}
	if s.sim != nil {
		payload["ticks"] = s.sim.Ticks()
	}
	payload["ready"] = ready

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, payload)
}
