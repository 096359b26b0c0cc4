package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Integration List Exporter.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	HomeAssistant HomeAssistantConfig `yaml:"homeassistant"`
	Supervisor    SupervisorConfig    `yaml:"supervisor"`
	Exporter      ExporterConfig      `yaml:"exporter"`
	Entries       []EntryConfig       `yaml:"entries"`
	Database      DatabaseConfig      `yaml:"database"`
	MQTT          MQTTConfig          `yaml:"mqtt"`
	API           APIConfig           `yaml:"api"`
	InfluxDB      InfluxDBConfig      `yaml:"influxdb"`
	Logging       LoggingConfig       `yaml:"logging"`
	Security      SecurityConfig      `yaml:"security"`
}

// HomeAssistantConfig contains connection settings for the Home Assistant core API.
type HomeAssistantConfig struct {
	// URL is the base URL of the core, e.g. "http://homeassistant.local:8123".
	URL string `yaml:"url"`

	// Token is a long-lived access token.
	Token string `yaml:"token"`

	// ConfigDir overrides the config directory reported by the core.
	// Needed when the exporter sees the directory under a different mount path.
	ConfigDir string `yaml:"config_dir"`

	// RequestTimeout bounds each REST request and WebSocket command (seconds).
	RequestTimeout int `yaml:"request_timeout"`
}

// SupervisorConfig contains connection settings for the Supervisor API.
type SupervisorConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`

	// RetryMax is the number of retries for transient Supervisor failures.
	RetryMax int `yaml:"retry_max"`
}

// ExporterConfig contains report generation settings.
type ExporterConfig struct {
	// Filename is the report file name inside the host config directory.
	Filename string `yaml:"filename"`

	// DefaultUpdateTime is used for entries created without an update time.
	DefaultUpdateTime string `yaml:"default_update_time"`

	// RuntimeSource selects where runtime facts come from: "host" or "local".
	RuntimeSource string `yaml:"runtime_source"`
}

// EntryConfig seeds a configured exporter instance on first start.
type EntryConfig struct {
	Title      string `yaml:"title"`
	UpdateTime string `yaml:"update_time"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
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

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT settings for the HTTP API.
// An empty secret leaves the API unauthenticated (loopback deployments).
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// Runtime sources for system facts.
const (
	RuntimeSourceHost  = "host"
	RuntimeSourceLocal = "local"
)

// DefaultFilename is the report file written into the host config directory.
const DefaultFilename = "integration_list.csv"

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: INTEGRATIONEXPORTER_SECTION_KEY.
// The Supervisor token also falls back to SUPERVISOR_TOKEN, which the
// Supervisor injects into add-on containers.
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		HomeAssistant: HomeAssistantConfig{
			URL:            "http://homeassistant:8123",
			RequestTimeout: 10,
		},
		Supervisor: SupervisorConfig{
			URL:      "http://supervisor",
			RetryMax: 2,
		},
		Exporter: ExporterConfig{
			Filename:          DefaultFilename,
			DefaultUpdateTime: "03:00",
			RuntimeSource:     RuntimeSourceHost,
		},
		Database: DatabaseConfig{
			Path:        "./data/exporter.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "integration-exporter",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8099,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INTEGRATIONEXPORTER_HA_URL"); v != "" {
		cfg.HomeAssistant.URL = v
	}
	if v := os.Getenv("INTEGRATIONEXPORTER_HA_TOKEN"); v != "" {
		cfg.HomeAssistant.Token = v
	}
	if v := os.Getenv("INTEGRATIONEXPORTER_HA_CONFIG_DIR"); v != "" {
		cfg.HomeAssistant.ConfigDir = v
	}

	if v := os.Getenv("INTEGRATIONEXPORTER_SUPERVISOR_TOKEN"); v != "" {
		cfg.Supervisor.Token = v
	} else if v := os.Getenv("SUPERVISOR_TOKEN"); v != "" && cfg.Supervisor.Token == "" {
		cfg.Supervisor.Token = v
	}

	if v := os.Getenv("INTEGRATIONEXPORTER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("INTEGRATIONEXPORTER_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("INTEGRATIONEXPORTER_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("INTEGRATIONEXPORTER_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("INTEGRATIONEXPORTER_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("INTEGRATIONEXPORTER_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors.
//
// Update times are not checked here; the entry package owns that rule and
// rejects bad entries individually so one typo does not stop the daemon.
func (c *Config) Validate() error {
	var errs []string

	if c.HomeAssistant.URL == "" {
		errs = append(errs, "homeassistant.url is required")
	}
	if c.HomeAssistant.Token == "" {
		errs = append(errs, "homeassistant.token is required (set INTEGRATIONEXPORTER_HA_TOKEN)")
	}
	if c.HomeAssistant.RequestTimeout <= 0 {
		errs = append(errs, "homeassistant.request_timeout must be positive")
	}

	if c.Supervisor.Enabled && c.Supervisor.URL == "" {
		errs = append(errs, "supervisor.url is required when supervisor is enabled")
	}

	if c.Exporter.Filename == "" || strings.ContainsAny(c.Exporter.Filename, `/\`) {
		errs = append(errs, "exporter.filename must be a bare file name")
	}
	switch c.Exporter.RuntimeSource {
	case RuntimeSourceHost, RuntimeSourceLocal:
	default:
		errs = append(errs, `exporter.runtime_source must be "host" or "local"`)
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	const minJWTSecretLength = 32
	if c.Security.JWT.Secret != "" && len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetRequestTimeout returns the Home Assistant request timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.HomeAssistant.RequestTimeout) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
