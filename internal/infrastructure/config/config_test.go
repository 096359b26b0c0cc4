package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
homeassistant:
  url: "http://ha.local:8123"
  token: "long-lived-token"
  config_dir: "/config"
supervisor:
  enabled: true
  url: "http://supervisor"
exporter:
  filename: "inventory.csv"
entries:
  - title: "Integration List Exporter"
    update_time: "04:30"
database:
  path: "/tmp/test.db"
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HomeAssistant.URL != "http://ha.local:8123" {
		t.Errorf("HomeAssistant.URL = %q, want %q", cfg.HomeAssistant.URL, "http://ha.local:8123")
	}
	if cfg.HomeAssistant.ConfigDir != "/config" {
		t.Errorf("HomeAssistant.ConfigDir = %q, want %q", cfg.HomeAssistant.ConfigDir, "/config")
	}
	if cfg.Exporter.Filename != "inventory.csv" {
		t.Errorf("Exporter.Filename = %q, want %q", cfg.Exporter.Filename, "inventory.csv")
	}
	if len(cfg.Entries) != 1 || cfg.Entries[0].UpdateTime != "04:30" {
		t.Errorf("Entries = %+v, want one entry at 04:30", cfg.Entries)
	}
	// Defaults survive partial sections
	if cfg.HomeAssistant.RequestTimeout != 10 {
		t.Errorf("HomeAssistant.RequestTimeout = %d, want 10", cfg.HomeAssistant.RequestTimeout)
	}
	if cfg.Exporter.RuntimeSource != RuntimeSourceHost {
		t.Errorf("Exporter.RuntimeSource = %q, want %q", cfg.Exporter.RuntimeSource, RuntimeSourceHost)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
homeassistant:
  url: "http://ha.local:8123"
  token: ""
`
	t.Setenv("INTEGRATIONEXPORTER_HA_TOKEN", "")

	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected validation error for empty token, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.HomeAssistant.Token = "token"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(_ *Config) {},
			wantErr: false,
		},
		{
			name:    "missing url",
			mutate:  func(c *Config) { c.HomeAssistant.URL = "" },
			wantErr: true,
		},
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.HomeAssistant.Token = "" },
			wantErr: true,
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.HomeAssistant.RequestTimeout = 0 },
			wantErr: true,
		},
		{
			name: "supervisor enabled without url",
			mutate: func(c *Config) {
				c.Supervisor.Enabled = true
				c.Supervisor.URL = ""
			},
			wantErr: true,
		},
		{
			name:    "filename with path separator",
			mutate:  func(c *Config) { c.Exporter.Filename = "../escape.csv" },
			wantErr: true,
		},
		{
			name:    "unknown runtime source",
			mutate:  func(c *Config) { c.Exporter.RuntimeSource = "remote" },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "invalid port when api enabled",
			mutate: func(c *Config) {
				c.API.Enabled = true
				c.API.Port = 70000
			},
			wantErr: true,
		},
		{
			name: "invalid port ignored when api disabled",
			mutate: func(c *Config) {
				c.API.Enabled = false
				c.API.Port = 0
			},
			wantErr: false,
		},
		{
			name:    "JWT secret too short",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "short" },
			wantErr: true,
		},
		{
			name:    "JWT secret long enough",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "test-secret-key-at-least-32-chars!" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
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
		HomeAssistant: HomeAssistantConfig{RequestTimeout: 7},
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetRequestTimeout().Seconds(); got != 7 {
		t.Errorf("GetRequestTimeout() = %v, want 7", got)
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
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("INTEGRATIONEXPORTER_HA_URL", "http://10.0.0.2:8123")
	t.Setenv("INTEGRATIONEXPORTER_HA_TOKEN", "ha-token")
	t.Setenv("INTEGRATIONEXPORTER_HA_CONFIG_DIR", "/mnt/config")
	t.Setenv("INTEGRATIONEXPORTER_SUPERVISOR_TOKEN", "sup-token")
	t.Setenv("INTEGRATIONEXPORTER_DATABASE_PATH", "/custom/path.db")
	t.Setenv("INTEGRATIONEXPORTER_MQTT_HOST", "mqtt.example.com")
	t.Setenv("INTEGRATIONEXPORTER_MQTT_USERNAME", "testuser")
	t.Setenv("INTEGRATIONEXPORTER_MQTT_PASSWORD", "testpass")
	t.Setenv("INTEGRATIONEXPORTER_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("INTEGRATIONEXPORTER_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"HomeAssistant.URL", cfg.HomeAssistant.URL, "http://10.0.0.2:8123"},
		{"HomeAssistant.Token", cfg.HomeAssistant.Token, "ha-token"},
		{"HomeAssistant.ConfigDir", cfg.HomeAssistant.ConfigDir, "/mnt/config"},
		{"Supervisor.Token", cfg.Supervisor.Token, "sup-token"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Security.JWT.Secret", cfg.Security.JWT.Secret, "jwt-secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestApplyEnvOverrides_SupervisorTokenFallback(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("INTEGRATIONEXPORTER_SUPERVISOR_TOKEN", "")
	t.Setenv("SUPERVISOR_TOKEN", "injected-by-supervisor")

	applyEnvOverrides(cfg)

	if cfg.Supervisor.Token != "injected-by-supervisor" {
		t.Errorf("Supervisor.Token = %q, want %q", cfg.Supervisor.Token, "injected-by-supervisor")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Exporter.Filename != DefaultFilename {
		t.Errorf("defaultConfig Exporter.Filename = %q, want %q", cfg.Exporter.Filename, DefaultFilename)
	}
	if cfg.Exporter.DefaultUpdateTime != "03:00" {
		t.Errorf("defaultConfig Exporter.DefaultUpdateTime = %q, want 03:00", cfg.Exporter.DefaultUpdateTime)
	}
	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}
