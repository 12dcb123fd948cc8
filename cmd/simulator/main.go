// Smart Home Simulator - Virtual Device Fleet
//
// This is the main entry point for the smart home simulator. The
// simulator maintains a fleet of virtual smart home devices and keeps
// it synchronised with the backend and with peer replicas:
//   - Bootstraps the fleet from the backend REST API at startup
//   - Drifts device state on a fixed tick with seeded randomness
//   - Publishes state deltas and consumes peer updates over MQTT
//   - Serves a read-only observability API with a WebSocket delta stream
//
// For configuration details, see: configs/config.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NadavNV/SmartHomeSimulator/internal/api"
	"github.com/NadavNV/SmartHomeSimulator/internal/bootstrap"
	"github.com/NadavNV/SmartHomeSimulator/internal/device"
	"github.com/NadavNV/SmartHomeSimulator/internal/infrastructure/config"
	"github.com/NadavNV/SmartHomeSimulator/internal/infrastructure/logging"
	"github.com/NadavNV/SmartHomeSimulator/internal/infrastructure/mqtt"
	"github.com/NadavNV/SmartHomeSimulator/internal/infrastructure/telemetry"
	"github.com/NadavNV/SmartHomeSimulator/internal/router"
	"github.com/NadavNV/SmartHomeSimulator/internal/sim"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	// This is the Go pattern for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Smart Home Simulator",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Status file for container probes: "healthy" from here on,
	// "ready" appended once the broker session is up
	statusFile := bootstrap.NewStatusFile(cfg.Bootstrap.StatusFile)
	if err := statusFile.MarkHealthy(); err != nil {
		return fmt.Errorf("initialising status file: %w", err)
	}
	log.Info("status file initialised", "path", statusFile.Path())

	// Initialise device registry
	registry := device.NewRegistry()
	registry.SetLogger(log)

	// Connect to MQTT broker
	log.Info("connecting to MQTT broker",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
	)
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", mqttClient.ClientID(),
	)

	// Message router: inbound messages become registry operations,
	// outbound deltas are wrapped in this instance's sender envelope
	group := cfg.MQTT.Group
	if group == "" {
		group = router.DefaultGroup
	}
	rtr, err := router.New(router.Options{
		Registry:  registry,
		Publisher: mqttClient,
		Namespace: cfg.MQTT.Topic,
		QoS:       byte(cfg.MQTT.QoS),
		ClientID:  mqttClient.ClientID(),
		Group:     group,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("creating message router: %w", err)
	}

	// Connection hooks: readiness follows the broker session, and
	// publishes queued during an outage replay once it is back
	mqttClient.SetOnConnect(func() {
		if markErr := statusFile.MarkReady(); markErr != nil {
			log.Error("error updating status file", "error", markErr)
		}
		rtr.Flush()
	})
	mqttClient.SetOnDisconnect(func(_ error) {
		if markErr := statusFile.MarkHealthy(); markErr != nil {
			log.Error("error updating status file", "error", markErr)
		}
	})

	// The initial CONNACK callback may have fired before the hook above
	// was registered, so mark ready explicitly for the first connection.
	// A duplicate "ready" line is harmless to the probes.
	if mqttClient.IsConnected() {
		if markErr := statusFile.MarkReady(); markErr != nil {
			log.Error("error updating status file", "error", markErr)
		}
	}

	// Subscribe through the shared group so replicas split inbound load
	topics := mqtt.Topics{Namespace: cfg.MQTT.Topic}
	filter := topics.Shared(group)
	if err := mqttClient.Subscribe(filter, byte(cfg.MQTT.QoS), rtr.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to device topics: %w", err)
	}
	log.Info("subscribed to device topics", "filter", filter)

	// Fetch the initial device fleet from the backend
	fetcher, err := bootstrap.New(bootstrap.Options{
		URL:      cfg.Bootstrap.URL,
		Retries:  cfg.Bootstrap.Retries,
		Timeout:  cfg.GetBootstrapTimeout(),
		Registry: registry,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("creating bootstrap fetcher: %w", err)
	}
	if err := fetcher.Run(ctx); err != nil {
		return fmt.Errorf("bootstrapping device fleet: %w", err)
	}
	log.Info("device fleet loaded", "devices", registry.Len())

	// Connect to InfluxDB (optional)
	var telemetryClient *telemetry.Client
	if cfg.Telemetry.Enabled {
		telemetryClient, err = telemetry.Connect(cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := telemetryClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.Telemetry.URL,
			"org", cfg.Telemetry.Org,
			"bucket", cfg.Telemetry.Bucket,
		)

		// Set up InfluxDB error callback
		telemetryClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("telemetry disabled")
	}

	// Simulation engine publishes each tick's deltas through the fanout:
	// MQTT wire, WebSocket hub, and telemetry
	fanout := &deltaFanout{router: rtr, telemetry: telemetryClient}
	engine, err := sim.New(sim.Options{
		Registry:  registry,
		Publisher: fanout,
		Interval:  cfg.GetTickInterval(),
		Seed:      cfg.Sim.Seed,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("creating simulation engine: %w", err)
	}

	// Observability API: read-only device endpoints, health/readiness,
	// metrics, and the WebSocket delta stream
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Registry: registry,
		Broker:   mqttClient,
		Queue:    rtr,
		Sim:      engine,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	fanout.api = apiServer

	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"addr", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	engine.Start(ctx)
	defer func() {
		log.Info("stopping simulation engine")
		engine.Stop()
	}()
	log.Info("simulation engine started",
		"tick_interval", cfg.GetTickInterval(),
		"devices", registry.Len(),
	)

	// Verify all connections are healthy
	if err := healthCheck(ctx, mqttClient, telemetryClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls will run in reverse order:
	// 1. Simulation engine
	// 2. API server
	// 3. InfluxDB (if enabled)
	// 4. MQTT

	log.Info("Smart Home Simulator stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SIM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SIM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check
//   - telemetryClient: InfluxDB client to check (may be nil if disabled)
//   - apiServer: API server to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, telemetryClient *telemetry.Client, apiServer *api.Server) error {
	// Check MQTT
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if telemetryClient != nil {
		if err := telemetryClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}

	// Check API server
	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}

// deltaFanout distributes each tick delta to every outbound surface:
// the MQTT router (authoritative, with retry queue), the WebSocket hub,
// and telemetry. It implements sim.DeltaPublisher.
type deltaFanout struct {
	router    *router.Router
	api       *api.Server
	telemetry *telemetry.Client // nil when telemetry is disabled; methods are nil-safe
}

// PublishDelta implements sim.DeltaPublisher.
func (f *deltaFanout) PublishDelta(deviceID string, delta map[string]any) {
	f.router.PublishDelta(deviceID, delta)
	f.api.BroadcastDelta(deviceID, delta)
	f.telemetry.RecordDelta(deviceID, delta)
}
