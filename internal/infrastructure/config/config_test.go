package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
mqtt:
  broker:
    host: "localhost"
    port: 1884
    client_id: "test-client"
  qos: 1
  topic: "test-home/devices"
bootstrap:
  url: "http://backend:5200"
  retries: 3
sim:
  tick_interval: 5
api:
  host: "0.0.0.0"
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	if cfg.MQTT.Broker.Port != 1884 {
		t.Errorf("MQTT.Broker.Port = %d, want 1884", cfg.MQTT.Broker.Port)
	}

	if cfg.MQTT.Topic != "test-home/devices" {
		t.Errorf("MQTT.Topic = %q, want %q", cfg.MQTT.Topic, "test-home/devices")
	}

	if cfg.Bootstrap.URL != "http://backend:5200" {
		t.Errorf("Bootstrap.URL = %q, want %q", cfg.Bootstrap.URL, "http://backend:5200")
	}

	if cfg.Sim.TickInterval != 5 {
		t.Errorf("Sim.TickInterval = %d, want 5", cfg.Sim.TickInterval)
	}

	// Values absent from the file keep their defaults
	if cfg.MQTT.Group != "simulator" {
		t.Errorf("MQTT.Group = %q, want %q", cfg.MQTT.Group, "simulator")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
mqtt:
  qos: 7
bootstrap:
  url: ""
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for invalid QoS, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	// validBase returns a config that passes validation, for tests to break
	// one field at a time.
	validBase := func() *Config {
		return &Config{
			MQTT: MQTTConfig{
				Broker: MQTTBrokerConfig{Host: "localhost", Port: 1883},
				QoS:    2,
				Topic:  "test-home/devices",
			},
			Bootstrap: BootstrapConfig{URL: "http://localhost:5200", Retries: 5},
			Sim:       SimConfig{TickInterval: 2},
			API:       APIConfig{Port: 8080},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "missing topic",
			mutate:  func(c *Config) { c.MQTT.Topic = "" },
			wantErr: true,
		},
		{
			name:    "missing bootstrap URL",
			mutate:  func(c *Config) { c.Bootstrap.URL = "" },
			wantErr: true,
		},
		{
			name:    "zero bootstrap retries",
			mutate:  func(c *Config) { c.Bootstrap.Retries = 0 },
			wantErr: true,
		},
		{
			name:    "zero tick interval",
			mutate:  func(c *Config) { c.Sim.TickInterval = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name: "telemetry enabled without token",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.URL = "http://localhost:8086"
				c.Telemetry.Org = "smart-home"
				c.Telemetry.Bucket = "devices"
			},
			wantErr: true,
		},
		{
			name: "telemetry enabled fully configured",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.URL = "http://localhost:8086"
				c.Telemetry.Token = "secret-token"
				c.Telemetry.Org = "smart-home"
				c.Telemetry.Bucket = "devices"
			},
			wantErr: false,
		},
		{
			name: "telemetry disabled skips telemetry checks",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = false
				c.Telemetry.Token = ""
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBase()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
		Sim:       SimConfig{TickInterval: 2},
		Bootstrap: BootstrapConfig{RequestTimeout: 10},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}

	if got := cfg.GetTickInterval().Seconds(); got != 2 {
		t.Errorf("GetTickInterval() = %v, want 2", got)
	}

	if got := cfg.GetBootstrapTimeout().Seconds(); got != 10 {
		t.Errorf("GetBootstrapTimeout() = %v, want 10", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("SIM_MQTT_HOST", "mqtt.example.com")
	t.Setenv("SIM_MQTT_PORT", "8883")
	t.Setenv("SIM_MQTT_TOPIC", "other-home/devices")
	t.Setenv("SIM_MQTT_USERNAME", "testuser")
	t.Setenv("SIM_MQTT_PASSWORD", "testpass")
	t.Setenv("SIM_BOOTSTRAP_URL", "http://backend:5200")
	t.Setenv("SIM_API_HOST", "192.168.1.1")
	t.Setenv("SIM_TELEMETRY_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}

	if cfg.MQTT.Topic != "other-home/devices" {
		t.Errorf("MQTT.Topic = %q, want %q", cfg.MQTT.Topic, "other-home/devices")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.Bootstrap.URL != "http://backend:5200" {
		t.Errorf("Bootstrap.URL = %q, want %q", cfg.Bootstrap.URL, "http://backend:5200")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.Telemetry.Token != "secret-token" {
		t.Errorf("Telemetry.Token = %q, want %q", cfg.Telemetry.Token, "secret-token")
	}
}

func TestApplyEnvOverrides_InvalidPortIgnored(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("SIM_MQTT_PORT", "not-a-number")

	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want default 1883", cfg.MQTT.Broker.Port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.MQTT.Broker.Host != "test.mosquitto.org" {
		t.Errorf("defaultConfig MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "test.mosquitto.org")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.MQTT.QoS != 2 {
		t.Errorf("defaultConfig MQTT.QoS = %d, want 2", cfg.MQTT.QoS)
	}

	if cfg.MQTT.Topic != "nadavnv-smart-home/devices" {
		t.Errorf("defaultConfig MQTT.Topic = %q, want %q", cfg.MQTT.Topic, "nadavnv-smart-home/devices")
	}

	if cfg.Bootstrap.URL != "http://localhost:5200" {
		t.Errorf("defaultConfig Bootstrap.URL = %q, want %q", cfg.Bootstrap.URL, "http://localhost:5200")
	}

	if cfg.Bootstrap.Retries != 5 {
		t.Errorf("defaultConfig Bootstrap.Retries = %d, want 5", cfg.Bootstrap.Retries)
	}

	if cfg.Sim.TickInterval != 2 {
		t.Errorf("defaultConfig Sim.TickInterval = %d, want 2", cfg.Sim.TickInterval)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate, got error: %v", err)
	}
}
