package sim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NadavNV/SmartHomeSimulator/internal/device"
)

// defaultTickInterval is used when Options leaves Interval zero.
const defaultTickInterval = 2 * time.Second

// DeltaPublisher receives the state changes a tick pass produces. It is
// typically the message router, which wraps each delta in a sender
// envelope before it goes out on the wire.
type DeltaPublisher interface {
	PublishDelta(deviceID string, delta map[string]any)
}

// Logger is the narrow logging interface the engine depends on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Engine advances every registered device on a fixed interval.
type Engine struct {
	registry  *device.Registry
	publisher DeltaPublisher
	interval  time.Duration
	rng       device.Rand

	// ticks counts completed passes, read via atomic for health
	// reporting.
	ticks uint64

	// Shutdown coordination (stopOnce prevents double-close panics)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// Options holds configuration for creating an engine.
type Options struct {
	// Registry is the fleet to advance.
	Registry *device.Registry

	// Publisher receives non-empty deltas.
	Publisher DeltaPublisher

	// Interval between tick passes. Zero selects 2 seconds.
	Interval time.Duration

	// Seed for the randomness source. Zero seeds from the wall clock,
	// so replicas drift independently.
	Seed uint64

	// Rand overrides the seeded source. Tests use this to force or
	// suppress changes.
	Rand device.Rand

	// Logger is optional.
	Logger Logger
}

// New creates an engine. Call Start to begin ticking.
func New(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = defaultTickInterval
	}

	rng := opts.Rand
	if rng == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng = device.NewRand(seed)
	}

	return &Engine{
		registry:  opts.Registry,
		publisher: opts.Publisher,
		interval:  interval,
		rng:       rng,
		done:      make(chan struct{}),
		logger:    opts.Logger,
	}, nil
}

// Start begins the tick loop. Call Stop, or cancel ctx, to shut down.
func (e *Engine) Start(ctx context.Context) {
	e.wg.Add(1)
	go e.run(ctx)
}

// Stop shuts the loop down and waits for the in-flight pass to finish.
// Safe to call multiple times.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.done)
		e.wg.Wait()
	})
}

// Ticks returns the number of completed passes.
func (e *Engine) Ticks() uint64 {
	return atomic.LoadUint64(&e.ticks)
}

// SetLogger sets the logger for this engine.
func (e *Engine) SetLogger(logger Logger) {
	e.loggerMu.Lock()
	e.logger = logger
	e.loggerMu.Unlock()
}

// run fires tick passes until ctx or done says otherwise. The select is
// only re-evaluated between passes, so cancellation mid-pass lets the
// pass complete.
func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// tick runs one pass over the registry and publishes what changed.
func (e *Engine) tick() {
	changed := 0
	e.registry.TickAll(e.rng, time.Now(), func(id string, delta map[string]any) {
		changed++
		e.publisher.PublishDelta(id, delta)
	})
	atomic.AddUint64(&e.ticks, 1)

	if changed > 0 {
		e.logDebug("Tick pass complete", "changed", changed, "devices", e.registry.Len())
	}
}

func (e *Engine) logDebug(msg string, args ...any) {
	e.loggerMu.RLock()
	logger := e.logger
	e.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, args...)
	}
}
