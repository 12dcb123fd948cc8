package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NadavNV/SmartHomeSimulator/internal/device"
)

// fixedRand returns the same roll on every call. A roll of 0 forces
// every chance-to-change check to fire; a roll of 1 suppresses them all.
type fixedRand struct {
	roll float64
}

func (r fixedRand) Float64() float64 { return r.roll }
func (r fixedRand) IntN(int) int     { return 0 }

type publishedDelta struct {
	ID    string
	Delta map[string]any
}

// capturePublisher records deltas for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	deltas []publishedDelta
}

func (p *capturePublisher) PublishDelta(deviceID string, delta map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deltas = append(p.deltas, publishedDelta{ID: deviceID, Delta: delta})
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.deltas)
}

func (p *capturePublisher) all() []publishedDelta {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedDelta(nil), p.deltas...)
}

// testRegistry builds a registry of plain lights, all off.
func testRegistry(t *testing.T, ids ...string) *device.Registry {
	t.Helper()

	registry := device.NewRegistry()
	for _, id := range ids {
		record := map[string]any{
			"id":         id,
			"type":       "light",
			"room":       "Bedroom",
			"name":       "Ceiling Light",
			"status":     "off",
			"parameters": map[string]any{},
		}
		if err := registry.Create(record); err != nil {
			t.Fatalf("Create(%s): %v", id, err)
		}
	}
	return registry
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNew_RequiresDependencies(t *testing.T) {
	registry := testRegistry(t)
	pub := &capturePublisher{}

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name:    "missing registry",
			opts:    Options{Publisher: pub},
			wantErr: true,
		},
		{
			name:    "missing publisher",
			opts:    Options{Registry: registry},
			wantErr: true,
		},
		{
			name: "valid",
			opts: Options{Registry: registry, Publisher: pub},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if e.interval != defaultTickInterval {
				t.Errorf("interval = %v, want %v", e.interval, defaultTickInterval)
			}
			if e.rng == nil {
				t.Error("expected a seeded rng")
			}
		})
	}
}

func TestTick_PublishesChangedDevices(t *testing.T) {
	registry := testRegistry(t, "l1", "l2")
	pub := &capturePublisher{}

	e, err := New(Options{
		Registry:  registry,
		Publisher: pub,
		Rand:      fixedRand{roll: 0},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	e.tick()

	got := pub.all()
	if len(got) != 2 {
		t.Fatalf("published %d deltas, want 2", len(got))
	}

	// Registry passes run in id order; a forced roll on a plain light
	// toggles its status.
	for i, id := range []string{"l1", "l2"} {
		if got[i].ID != id {
			t.Errorf("delta[%d].ID = %q, want %q", i, got[i].ID, id)
		}
		if got[i].Delta["status"] != "on" {
			t.Errorf("delta[%d] = %v, want status on", i, got[i].Delta)
		}
	}

	if e.Ticks() != 1 {
		t.Errorf("Ticks() = %d, want 1", e.Ticks())
	}
}

func TestTick_QuietPassPublishesNothing(t *testing.T) {
	registry := testRegistry(t, "l1", "l2")
	pub := &capturePublisher{}

	e, err := New(Options{
		Registry:  registry,
		Publisher: pub,
		Rand:      fixedRand{roll: 1},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	e.tick()

	if pub.count() != 0 {
		t.Errorf("published %d deltas, want 0", pub.count())
	}
	if e.Ticks() != 1 {
		t.Errorf("Ticks() = %d, want 1", e.Ticks())
	}
}

func TestEngine_LoopPublishesUntilStopped(t *testing.T) {
	registry := testRegistry(t, "l1")
	pub := &capturePublisher{}

	e, err := New(Options{
		Registry:  registry,
		Publisher: pub,
		Interval:  5 * time.Millisecond,
		Rand:      fixedRand{roll: 0},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	e.Start(context.Background())
	waitFor(t, 2*time.Second, func() bool { return pub.count() >= 2 })
	e.Stop()

	after := pub.count()
	time.Sleep(30 * time.Millisecond)
	if pub.count() != after {
		t.Errorf("published after Stop: count %d -> %d", after, pub.count())
	}
	if e.Ticks() < 2 {
		t.Errorf("Ticks() = %d, want >= 2", e.Ticks())
	}
}

func TestEngine_ContextCancelStopsLoop(t *testing.T) {
	registry := testRegistry(t, "l1")
	pub := &capturePublisher{}

	e, err := New(Options{
		Registry:  registry,
		Publisher: pub,
		Interval:  5 * time.Millisecond,
		Rand:      fixedRand{roll: 0},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.Start(ctx)
	waitFor(t, 2*time.Second, func() bool { return pub.count() >= 1 })
	cancel()

	// Give the loop time to observe cancellation, then confirm it went
	// quiet.
	time.Sleep(30 * time.Millisecond)
	after := pub.count()
	time.Sleep(30 * time.Millisecond)
	if pub.count() != after {
		t.Errorf("published after cancel: count %d -> %d", after, pub.count())
	}

	// Stop must still return promptly after the goroutine exited.
	e.Stop()
}

func TestEngine_StopIsIdempotent(t *testing.T) {
	registry := testRegistry(t, "l1")
	pub := &capturePublisher{}

	e, err := New(Options{
		Registry:  registry,
		Publisher: pub,
		Interval:  5 * time.Millisecond,
		Rand:      fixedRand{roll: 1},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	e.Start(context.Background())
	e.Stop()
	e.Stop()
}
