package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/NadavNV/SmartHomeSimulator/internal/device"
)

// Fetch defaults, used when Options leaves them zero.
const (
	defaultRetries         = 5
	defaultTimeout         = 10 * time.Second
	defaultInitialInterval = time.Second

	// backoffMultiplier doubles the delay each attempt: 1s, 2s, 4s, 8s
	// before jitter.
	backoffMultiplier = 2

	// jitterFactor spreads replica retries so a recovering backend is
	// not hit by the whole fleet at once.
	jitterFactor = 0.5
)

// ErrNoDevices is returned when the registry is still empty after
// every fetch attempt. The simulator cannot run without a fleet.
var ErrNoDevices = errors.New("bootstrap: no devices fetched")

// Logger is the narrow logging interface the fetcher depends on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Fetcher pulls the initial device fleet from the backend REST API and
// loads it into the registry.
type Fetcher struct {
	url      string
	retries  int
	interval time.Duration
	client   *http.Client
	registry *device.Registry
	logger   Logger
}

// Options holds configuration for creating a fetcher.
type Options struct {
	// URL is the backend base URL, e.g. "http://localhost:5200". The
	// device listing is fetched from <URL>/api/devices.
	URL string

	// Retries is the total number of fetch attempts. Zero selects 5.
	Retries int

	// Timeout bounds each individual HTTP request. Zero selects 10s.
	Timeout time.Duration

	// InitialInterval is the delay before the first retry; subsequent
	// delays double with jitter. Zero selects one second.
	InitialInterval time.Duration

	// Registry receives every fetched record.
	Registry *device.Registry

	// Logger is optional structured logger.
	Logger Logger
}

// New creates a fetcher. Call Run once at startup.
func New(opts Options) (*Fetcher, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("backend url is required")
	}

	retries := opts.Retries
	if retries < 1 {
		retries = defaultRetries
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	interval := opts.InitialInterval
	if interval <= 0 {
		interval = defaultInitialInterval
	}

	return &Fetcher{
		url:      opts.URL,
		retries:  retries,
		interval: interval,
		client:   &http.Client{Timeout: timeout},
		registry: opts.Registry,
		logger:   opts.Logger,
	}, nil
}

// Run fetches the device fleet, retrying transient failures with
// exponential backoff. Per-record failures are logged and skipped; a
// registry still empty after the last attempt returns ErrNoDevices.
// Context cancellation aborts between attempts.
func (f *Fetcher) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.interval
	b.Multiplier = backoffMultiplier
	b.RandomizationFactor = jitterFactor
	b.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		return f.fetchOnce(ctx)
	}
	notify := func(err error, next time.Duration) {
		f.logError(fmt.Sprintf("Attempt %d/%d failed. Retrying in %.2f seconds...",
			attempt, f.retries, next.Seconds()))
	}

	err := backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.retries-1)), ctx),
		notify,
	)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	if f.registry.Len() == 0 {
		f.logError("Failed to fetch devices. Shutting down.")
		return ErrNoDevices
	}
	return nil
}

// fetchOnce performs one GET against the backend. A nil return means
// the listing was retrieved and decoded; individual record failures do
// not fail the attempt.
func (f *Fetcher) fetchOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url+"/api/devices", nil)
	if err != nil {
		// A URL that cannot form a request will not heal with retries.
		return backoff.Permanent(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logError("Failed to connect to backend")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		f.logError(fmt.Sprintf("Failed to get devices %d.", resp.StatusCode))
		f.logError(string(body))
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var records []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		f.logError(err.Error())
		return err
	}

	for _, record := range records {
		if err := f.registry.Create(record); err != nil {
			var verr *device.ValidationError
			if errors.As(err, &verr) {
				f.logError(fmt.Sprintf("Failed to create device, reasons: %s",
					device.FormatReasons(verr.Reasons)))
			} else {
				f.logError(err.Error())
			}
		}
	}
	return nil
}

func (f *Fetcher) logError(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Error(msg, args...)
	}
}
