package device

import (
	"testing"
	"time"
)

// testNow is a fixed wall clock for ticks that do not depend on time.
var testNow = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

// scriptedRand feeds pre-programmed values into tick logic so tests can
// steer the random branches. Float64 pops from floats and IntN from
// ints; an exhausted script returns 1.0 (never triggers a change) and 0
// respectively.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 1.0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRand) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

// neverChange is a rand whose probability rolls always miss.
func neverChange() *scriptedRand { return &scriptedRand{} }

// captureLogger records logged messages for assertion.
type captureLogger struct {
	infos  []string
	errors []string
}

func (l *captureLogger) Debug(string, ...any)          {}
func (l *captureLogger) Info(msg string, args ...any)  { l.infos = append(l.infos, msg) }
func (l *captureLogger) Warn(string, ...any)           {}
func (l *captureLogger) Error(msg string, args ...any) { l.errors = append(l.errors, msg) }

func (l *captureLogger) hasInfo(msg string) bool {
	for _, m := range l.infos {
		if m == msg {
			return true
		}
	}
	return false
}

// testRecord returns a minimal valid new-device record of the given
// type, with an empty parameters block so every parameter takes its
// default.
func testRecord(id string, typ Type) map[string]any {
	return map[string]any{
		"id":         id,
		"type":       string(typ),
		"room":       "Living Room",
		"name":       "Test Device",
		"status":     string(typ.DefaultStatus()),
		"parameters": map[string]any{},
	}
}

// newTestDevice builds a device directly, bypassing the registry.
func newTestDevice(t *testing.T, typ Type, params map[string]any) *Device {
	t.Helper()

	record := testRecord("dev-"+string(typ), typ)
	record["parameters"] = params
	d, err := New(record)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}
