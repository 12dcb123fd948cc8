package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Runtime       RuntimeMetrics `json:"runtime"`
	WebSocket     WSMetrics      `json:"websocket"`
	Broker        BrokerMetrics  `json:"broker"`
	Sim           SimMetrics     `json:"sim"`
	Devices       DeviceMetrics  `json:"devices"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// BrokerMetrics contains MQTT link statistics.
type BrokerMetrics struct {
	Connected      bool `json:"connected"`
	QueuedMessages int  `json:"queued_messages"`
}

// SimMetrics contains simulation loop statistics.
type SimMetrics struct {
	Ticks uint64 `json:"ticks"`
}

// DeviceMetrics contains device fleet statistics.
type DeviceMetrics struct {
	Total    int            `json:"total"`
	ByType   map[string]int `json:"by_type"`
	ByStatus map[string]int `json:"by_status"`
	ByRoom   map[string]int `json:"by_room"`
}

// handleMetrics returns comprehensive system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	// Collect runtime stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Devices: s.deviceMetrics(),
	}

	if s.hub != nil {
		metrics.WebSocket = WSMetrics{ConnectedClients: s.hub.ClientCount()}
	}

	// Broker metrics (if available)
	if s.broker != nil {
		metrics.Broker.Connected = s.broker.IsConnected()
	}
	if s.queue != nil {
		metrics.Broker.QueuedMessages = s.queue.QueueLen()
	}

	// Simulation metrics (if available)
	if s.sim != nil {
		metrics.Sim = SimMetrics{Ticks: s.sim.Ticks()}
	}

	writeJSON(w, http.StatusOK, metrics)
}

// deviceMetrics counts the fleet by type, status, and room.
func (s *Server) deviceMetrics() DeviceMetrics {
	devices := s.registry.List()

	m := DeviceMetrics{
		Total:    len(devices),
		ByType:   make(map[string]int),
		ByStatus: make(map[string]int),
		ByRoom:   make(map[string]int),
	}
	for _, d := range devices {
		m.ByType[string(d.Type)]++
		m.ByStatus[string(d.Status)]++
		m.ByRoom[d.Room]++
	}
	return m
}
