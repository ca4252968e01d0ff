package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `server:
  addr: ":8080"
  read_timeout: 3s
models:
  dir: "/srv/models"
  strict: true
  files:
    traffic_model: "traffic_rf.json"
history:
  path: "/srv/data/water.csv"
  read_timeout: 500ms
store:
  capacity: 50
  audit:
    type: "sqlite"
    conf:
      path: "/var/lib/citypredict/audit.db"
logging:
  level: "debug"
metrics:
  sinks:
    - type: "prometheus"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
sentry:
  environment: "staging"
  traces_sample_rate: 0.25
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.addr", cfg.Server.Addr, ":8080"},
		{"server.read_timeout", cfg.Server.ReadTimeout, 3 * time.Second},
		{"server.write_timeout", cfg.Server.WriteTimeout, 30 * time.Second},
		{"models.dir", cfg.Models.Dir, "/srv/models"},
		{"models.strict", cfg.Models.Strict, true},
		{"models.files.traffic_model", cfg.Models.Files.TrafficModel, "traffic_rf.json"},
		{"models.files.energy_model", cfg.Models.Files.EnergyModel, "energy_model.json"},
		{"history.path", cfg.History.Path, "/srv/data/water.csv"},
		{"history.read_timeout", cfg.History.ReadTimeout, 500 * time.Millisecond},
		{"store.capacity", cfg.Store.Capacity, 50},
		{"store.audit.type", cfg.Store.Audit.Type, "sqlite"},
		{"store.audit.conf.path", cfg.Store.Audit.Conf["path"], "/var/lib/citypredict/audit.db"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"metrics.sinks", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "prometheus", true},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.client_id", cfg.MQTT.ClientID, "cli"},
		{"mqtt.topic_prefix", cfg.MQTT.TopicPrefix, "citypredict/predictions"},
		{"sentry.environment", cfg.Sentry.Environment, "staging"},
		{"sentry.traces_sample_rate", cfg.Sentry.TracesSampleRate, 0.25},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "models", cfg.Models.Dir)
	assert.False(t, cfg.Models.Strict)
	assert.Equal(t, 1000, cfg.Store.Capacity)
	assert.False(t, cfg.Store.AuditEnabled())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Empty(t, cfg.MQTT.ClientID)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeFile(t, "config.json", `{"server": {"addr": ":8080"}}`)
	t.Setenv("K_SERVER__ADDR", ":9999")
	t.Setenv("K_MODELS__DIR", "/opt/models")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "/opt/models", cfg.Models.Dir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"format", "config.toml", "server = 1"},
		{"level", "config.yaml", "logging:\n  level: loud\n"},
		{"audit", "config.yaml", "store:\n  audit:\n    type: postgres\n"},
		{"mqtt", "config.yaml", "mqtt:\n  enabled: true\n"},
		{"sentry", "config.yaml", "sentry:\n  traces_sample_rate: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.data))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
