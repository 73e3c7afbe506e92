package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-node/internal/skill"
)

// Config is the root configuration structure for a Gray Logic node.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Session   SessionConfig   `yaml:"session"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Update    UpdateConfig    `yaml:"update"`
	Hardware  HardwareConfig  `yaml:"hardware"`
	Skills    []SkillConfig   `yaml:"skills"`
}

// DeviceConfig identifies the node on the bus.
type DeviceConfig struct {
	ID       string         `yaml:"id"`
	Channel  string         `yaml:"channel"`
	Firmware FirmwareConfig `yaml:"firmware"`
}

// FirmwareConfig is the identity published on gen/fwident and gen/desc.
// Version is normally stamped at build time.
type FirmwareConfig struct {
	PartNumber  string `yaml:"part_number"`
	Qualifier   string `yaml:"qualifier"`
	Description string `yaml:"description"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig `yaml:"broker"`
	Auth      MQTTAuthConfig   `yaml:"auth"`
	QoS       int              `yaml:"qos"`
	InboxSize int              `yaml:"inbox_size"`
	KeepAlive time.Duration    `yaml:"keep_alive"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SessionConfig tunes reconnection. Attempt i waits i × RetryUnit.
type SessionConfig struct {
	ReconnectAttempts int           `yaml:"reconnect_attempts"`
	RetryUnit         time.Duration `yaml:"retry_unit"`
}

// SchedulerConfig tunes the cooperative loop.
type SchedulerConfig struct {
	// IdleSleep is the pause between passes.
	IdleSleep time.Duration `yaml:"idle_sleep"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DatabaseConfig contains SQLite settings for the event journal.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
	// JournalLimit caps the number of journal entries kept. 0 keeps all.
	JournalLimit int `yaml:"journal_limit"`
}

// InfluxDBConfig contains InfluxDB connection settings for the telemetry mirror.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// UpdateConfig controls the boot-time firmware update check.
type UpdateConfig struct {
	Enabled bool   `yaml:"enabled"`
	RepoURL string `yaml:"repo_url"`
}

// HardwareConfig selects the board driver.
type HardwareConfig struct {
	Board string `yaml:"board"`
}

// Supported boards.
const (
	BoardSim = "sim"
)

// SkillConfig configures one skill instance. Fields a kind does not use
// are ignored; zero values take the kind's defaults.
type SkillConfig struct {
	Kind   skill.Kind    `yaml:"kind"`
	Entity string        `yaml:"entity"`
	Period time.Duration `yaml:"period"`

	Pin         *int `yaml:"pin"`
	PowerPin    *int `yaml:"power_pin"`
	LEDPin      *int `yaml:"led_pin"`
	LEDInverted bool `yaml:"led_inverted"`
	PixelCount  int  `yaml:"pixel_count"`

	SleepCycles       int     `yaml:"sleep_cycles"`
	Threshold         float64 `yaml:"threshold"`
	HumidityThreshold float64 `yaml:"humidity_threshold"`
	Samples           int     `yaml:"samples"`
	DarkLevel         int     `yaml:"dark_level"`
	TempFactor        float64 `yaml:"temp_factor"`
	HumidityFactor    float64 `yaml:"humidity_factor"`

	TriggerHigh bool          `yaml:"trigger_high"`
	AutoOff     time.Duration `yaml:"auto_off"`
	RateWindow  time.Duration `yaml:"rate_window"`
	RateLimit   int           `yaml:"rate_limit"`

	Location string `yaml:"location"`
	Address  string `yaml:"address"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//  4. Derived values (client ID)
//
// Environment variables follow the pattern: GRAYLOGIC_NODE_SECTION_KEY
// For example: GRAYLOGIC_NODE_DEVICE_ID, GRAYLOGIC_NODE_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.derive()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Channel: "std",
			Firmware: FirmwareConfig{
				PartNumber:  "N39005",
				Qualifier:   "TC",
				Description: "Gray Logic sensor node",
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS:       1,
			InboxSize: 64,
			KeepAlive: 60 * time.Second,
		},
		Session: SessionConfig{
			ReconnectAttempts: 5,
			RetryUnit:         time.Second,
		},
		Scheduler: SchedulerConfig{
			IdleSleep: 10 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Database: DatabaseConfig{
			Path:         "./data/node.db",
			WALMode:      true,
			BusyTimeout:  5,
			JournalLimit: 1000,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Hardware: HardwareConfig{
			Board: BoardSim,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLOGIC_NODE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("GRAYLOGIC_NODE_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_DEVICE_CHANNEL"); v != "" {
		cfg.Device.Channel = v
	}

	// MQTT
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.Broker.ClientID = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Database
	if v := os.Getenv("GRAYLOGIC_NODE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// InfluxDB
	if v := os.Getenv("GRAYLOGIC_NODE_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("GRAYLOGIC_NODE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Update
	if v := os.Getenv("GRAYLOGIC_NODE_UPDATE_REPO_URL"); v != "" {
		cfg.Update.RepoURL = v
	}
}

// derive fills values computed from other settings.
func (c *Config) derive() {
	if c.MQTT.Broker.ClientID == "" && c.Device.ID != "" {
		c.MQTT.Broker.ClientID = DeriveClientID(c.Device.ID)
	}
}

// DeriveClientID returns "<deviceID>-<8 hex chars>". The suffix is random
// so two nodes flashed with the same device ID do not evict each other.
func DeriveClientID(deviceID string) string {
	return deviceID + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.ID == "" {
		errs = append(errs, "device.id is required (set GRAYLOGIC_NODE_DEVICE_ID environment variable)")
	} else if !validSegment(c.Device.ID) {
		errs = append(errs, "device.id must not contain '/', '+', '#' or spaces")
	}
	if c.Device.Channel != "" && !validSegment(c.Device.Channel) {
		errs = append(errs, "device.channel must not contain '/', '+', '#' or spaces")
	}

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Session validation
	if c.Session.ReconnectAttempts < 1 {
		errs = append(errs, "session.reconnect_attempts must be at least 1")
	}
	if c.Session.RetryUnit <= 0 {
		errs = append(errs, "session.retry_unit must be positive")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	// Update validation
	if c.Update.Enabled && c.Update.RepoURL == "" {
		errs = append(errs, "update.repo_url is required when update is enabled")
	}

	// Hardware validation
	if c.Hardware.Board != BoardSim {
		errs = append(errs, fmt.Sprintf("hardware.board %q is not supported", c.Hardware.Board))
	}

	// Skill validation
	for i, s := range c.Skills {
		switch {
		case !s.Kind.Valid():
			errs = append(errs, fmt.Sprintf("skills[%d].kind %q is unknown", i, s.Kind))
		case s.Kind == skill.KindSystem:
			errs = append(errs, fmt.Sprintf("skills[%d]: the system skill is always present and cannot be configured", i))
		}
		if s.Period < 0 {
			errs = append(errs, fmt.Sprintf("skills[%d].period must not be negative", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func validSegment(s string) bool {
	return !strings.ContainsAny(s, "/+# ")
}
