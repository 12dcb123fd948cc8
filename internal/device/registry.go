package device

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Logger defines the logging interface used by the device package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger { return noopLogger{} }

// Registry is the in-memory catalogue of simulated devices, keyed by
// device id. It is the single source of truth for the fleet: every
// mutation passes validation before it becomes visible, and no partial
// application is ever observable.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
	logger  Logger
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[string]*Device),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Create validates a new-device record and inserts the typed device it
// describes. Duplicate ids are rejected with ErrExists; invalid records
// with a ValidationError carrying every reason found.
func (r *Registry) Create(record map[string]any) error {
	if reasons := ValidateNew(record); len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	id, _ := record["id"].(string)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[id]; ok {
		return fmt.Errorf("%w: ID %s already exists", ErrExists, id)
	}
	d, err := New(record)
	if err != nil {
		return err
	}
	r.devices[id] = d
	r.logger.Info("Device added successfully")
	return nil
}

// Get retrieves a device by ID. Returns ErrNotFound if the device does
// not exist. The returned device is a deep copy; callers can safely
// modify it.
func (r *Registry) Get(id string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.DeepCopy(), nil
}

// List retrieves all devices sorted by id. The returned devices are
// deep copies; callers can safely modify them.
func (r *Registry) List() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, d.DeepCopy())
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices
}

// Remove deletes a device by id, or reports ErrNotFound.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[id]; !ok {
		return ErrNotFound
	}
	delete(r.devices, id)
	return nil
}

// ApplyUpdate validates a partial update against the existing device's
// type and applies it. The update lands on a copy which replaces the
// original only when every field applied cleanly, so a mid-apply
// failure leaves the device exactly as it was.
func (r *Registry) ApplyUpdate(id string, update map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return ErrNotFound
	}
	if reasons := ValidateUpdate(update, d.Type); len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}

	updated := d.DeepCopy()
	if err := updated.ApplyUpdate(update, r.logger); err != nil {
		return err
	}
	r.devices[id] = updated
	return nil
}

// pending pairs a device id with the delta its tick produced.
type pending struct {
	id    string
	delta map[string]any
}

// TickAll advances every device one simulation step in id order while
// holding the lock, then invokes fn outside the lock for each non-empty
// delta. fn may be nil when the caller only wants the state advanced.
func (r *Registry) TickAll(rng Rand, now time.Time, fn func(id string, delta map[string]any)) {
	r.mu.Lock()
	var results []pending
	for _, id := range sortedKeys(r.devices) {
		delta := r.devices[id].Tick(rng, now)
		if len(delta) > 0 {
			results = append(results, pending{id: id, delta: delta})
		}
	}
	r.mu.Unlock()

	if fn == nil {
		return
	}
	for _, res := range results {
		fn(res.id, res.delta)
	}
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}
