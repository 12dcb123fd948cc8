package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NadavNV/SmartHomeSimulator/internal/device"
)

// handleListDevices returns all devices, with optional query filters.
//
// Query parameters:
//   - room: filter by room name
//   - type: filter by device type (light, curtain, etc.)
//   - status: filter by current status (on, off, locked, etc.)
//
// Filters combine with AND. Devices are sorted by ID.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.registry.List()

	if room := r.URL.Query().Get("room"); room != "" {
		devices = filterDevices(devices, func(d *device.Device) bool { return d.Room == room })
	}
	if typ := r.URL.Query().Get("type"); typ != "" {
		devices = filterDevices(devices, func(d *device.Device) bool { return d.Type == device.Type(typ) })
	}
	if status := r.URL.Query().Get("status"); status != "" {
		devices = filterDevices(devices, func(d *device.Device) bool { return d.Status == device.Status(status) })
	}

	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// filterDevices returns the devices matching the predicate, preserving order.
func filterDevices(devices []*device.Device, keep func(*device.Device) bool) []*device.Device {
	filtered := make([]*device.Device, 0, len(devices))
	for _, d := range devices {
		if keep(d) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleDeviceSummary returns fleet counts grouped by type, status, and room.
func (s *Server) handleDeviceSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deviceMetrics())
}
