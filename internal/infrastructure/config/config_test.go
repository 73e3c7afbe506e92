package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/skill"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
device:
  id: "kitchen-01"
mqtt:
  broker:
    host: "broker.local"
    port: 1884
    client_id: "kitchen-01-fixed"
  qos: 0
session:
  reconnect_attempts: 3
  retry_unit: 2s
skills:
  - kind: dht
    pin: 4
    power_pin: 5
    period: 3s
  - kind: relay
    entity: heater
    pin: 12
    led_pin: 13
  - kind: switch
    pin: 0
    auto_off: 1500ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "kitchen-01" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "kitchen-01")
	}
	if cfg.Device.Channel != "std" {
		t.Errorf("Device.Channel = %q, want default std", cfg.Device.Channel)
	}
	if cfg.MQTT.Broker.Host != "broker.local" || cfg.MQTT.Broker.Port != 1884 {
		t.Errorf("MQTT.Broker = %+v", cfg.MQTT.Broker)
	}
	if cfg.MQTT.Broker.ClientID != "kitchen-01-fixed" {
		t.Errorf("ClientID = %q, want the configured one", cfg.MQTT.Broker.ClientID)
	}
	if cfg.Session.RetryUnit != 2*time.Second || cfg.Session.ReconnectAttempts != 3 {
		t.Errorf("Session = %+v", cfg.Session)
	}

	if len(cfg.Skills) != 3 {
		t.Fatalf("len(Skills) = %d, want 3", len(cfg.Skills))
	}
	dht := cfg.Skills[0]
	if dht.Kind != skill.KindDHT || dht.Pin == nil || *dht.Pin != 4 || dht.PowerPin == nil || *dht.PowerPin != 5 {
		t.Errorf("Skills[0] = %+v", dht)
	}
	if dht.LEDPin != nil {
		t.Error("Skills[0].LEDPin set, want nil")
	}
	if cfg.Skills[1].Entity != "heater" {
		t.Errorf("Skills[1].Entity = %q, want heater", cfg.Skills[1].Entity)
	}
	if cfg.Skills[2].AutoOff != 1500*time.Millisecond {
		t.Errorf("Skills[2].AutoOff = %v, want 1.5s", cfg.Skills[2].AutoOff)
	}
}

func TestLoad_DerivesClientID(t *testing.T) {
	path := writeConfig(t, "device:\n  id: porch\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !regexp.MustCompile(`^porch-[0-9a-f]{8}$`).MatchString(cfg.MQTT.Broker.ClientID) {
		t.Errorf("ClientID = %q, want porch-<8 hex>", cfg.MQTT.Broker.ClientID)
	}
}

func TestDeriveClientID_Unique(t *testing.T) {
	a, b := DeriveClientID("n"), DeriveClientID("n")
	if a == b {
		t.Errorf("DeriveClientID() returned %q twice", a)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/node.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
device:
  id: ""
skills:
  - kind: toaster
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"device.id is required", `skills[0].kind "toaster" is unknown`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Load() error = %v, want it to mention %q", err, want)
		}
	}
}

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Device.ID = "node-1"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing device ID", func(c *Config) { c.Device.ID = "" }, true},
		{"wildcard in device ID", func(c *Config) { c.Device.ID = "node/+" }, true},
		{"bad channel", func(c *Config) { c.Device.Channel = "a#b" }, true},
		{"missing broker host", func(c *Config) { c.MQTT.Broker.Host = "" }, true},
		{"invalid port", func(c *Config) { c.MQTT.Broker.Port = 70000 }, true},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"zero reconnect attempts", func(c *Config) { c.Session.ReconnectAttempts = 0 }, true},
		{"zero retry unit", func(c *Config) { c.Session.RetryUnit = 0 }, true},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, true},
		{"influx without url", func(c *Config) { c.InfluxDB.Enabled = true }, true},
		{"influx complete", func(c *Config) {
			c.InfluxDB = InfluxDBConfig{Enabled: true, URL: "http://influx:8086", Org: "gl", Bucket: "nodes"}
		}, false},
		{"update without repo", func(c *Config) { c.Update.Enabled = true }, true},
		{"unknown board", func(c *Config) { c.Hardware.Board = "esp32" }, true},
		{"system skill configured", func(c *Config) { c.Skills = []SkillConfig{{Kind: skill.KindSystem}} }, true},
		{"negative period", func(c *Config) { c.Skills = []SkillConfig{{Kind: skill.KindRelay, Period: -time.Second}} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("GRAYLOGIC_NODE_DEVICE_ID", "env-node")
	t.Setenv("GRAYLOGIC_NODE_DEVICE_CHANNEL", "lab")
	t.Setenv("GRAYLOGIC_NODE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("GRAYLOGIC_NODE_MQTT_PORT", "8883")
	t.Setenv("GRAYLOGIC_NODE_MQTT_USERNAME", "testuser")
	t.Setenv("GRAYLOGIC_NODE_MQTT_PASSWORD", "testpass")
	t.Setenv("GRAYLOGIC_NODE_DATABASE_PATH", "/custom/path.db")
	t.Setenv("GRAYLOGIC_NODE_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("GRAYLOGIC_NODE_LOG_LEVEL", "debug")
	t.Setenv("GRAYLOGIC_NODE_UPDATE_REPO_URL", "https://updates.example.com/node")

	applyEnvOverrides(cfg)

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"Device.ID", cfg.Device.ID, "env-node"},
		{"Device.Channel", cfg.Device.Channel, "lab"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
		{"Update.RepoURL", cfg.Update.RepoURL, "https://updates.example.com/node"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
}

func TestApplyEnvOverrides_BadPortIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("GRAYLOGIC_NODE_MQTT_PORT", "not-a-port")

	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Device.Channel != "std" {
		t.Errorf("defaultConfig Device.Channel = %q, want std", cfg.Device.Channel)
	}
	if cfg.Device.Firmware.PartNumber != "N39005" || cfg.Device.Firmware.Qualifier != "TC" {
		t.Errorf("defaultConfig Firmware = %+v", cfg.Device.Firmware)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Session.ReconnectAttempts != 5 || cfg.Session.RetryUnit != time.Second {
		t.Errorf("defaultConfig Session = %+v, want 5 attempts at 1s", cfg.Session)
	}
	if cfg.Hardware.Board != BoardSim {
		t.Errorf("defaultConfig Hardware.Board = %q, want %q", cfg.Hardware.Board, BoardSim)
	}
}
