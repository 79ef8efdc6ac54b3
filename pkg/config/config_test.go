package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_UsesDefaults_WhenNoFile(t *testing.T) {
	// Reset viper to avoid cross-test pollution
	viper.Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Decoder.QueueSize != 64 {
		t.Errorf("expected Decoder.QueueSize default 64, got %d", cfg.Decoder.QueueSize)
	}
	if cfg.Web.Enabled {
		t.Errorf("expected Web.Enabled default false")
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("expected Web.Port default 8080, got %d", cfg.Web.Port)
	}
	if cfg.MQTT.TopicPrefix != "dmr/lc" {
		t.Errorf("expected MQTT.TopicPrefix default dmr/lc, got %s", cfg.MQTT.TopicPrefix)
	}
	if cfg.Logging.Level == "" {
		t.Errorf("expected Logging.Level to be set (default info)")
	}
	if cfg.Database.Retention != 0 {
		t.Errorf("expected Database.Retention default 0, got %s", cfg.Database.Retention)
	}
	if cfg.Metrics.Prometheus.Port != 9090 {
		t.Errorf("expected Prometheus.Port default 9090, got %d", cfg.Metrics.Prometheus.Port)
	}
}

func TestLoad_ReadsFileAndEnvironment(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "dmr-lc.yaml")
	data := []byte(`
decoder:
  capture: captures/site1.yaml
  queue_size: 16
database:
  enabled: true
  path: /var/lib/dmr-lc/lc.db
  retention: 72h
mqtt:
  enabled: true
  broker: tcp://localhost:1883
  qos: 1
logging:
  format: json
  compress: true
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("DMRLC_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "captures/site1.yaml", cfg.Decoder.Capture)
	assert.Equal(t, 16, cfg.Decoder.QueueSize)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "/var/lib/dmr-lc/lc.db", cfg.Database.Path)
	assert.Equal(t, 72*time.Hour, cfg.Database.Retention)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Compress)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decoder:\n  queue_size: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoder.queue_size")
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		return &Config{
			Decoder: DecoderConfig{QueueSize: 8},
			Logging: LoggingConfig{Format: "text"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-positive queue size", func(c *Config) { c.Decoder.QueueSize = 0 }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"web port out of range", func(c *Config) { c.Web = WebConfig{Enabled: true, Port: 70000} }},
		{"web auth without credentials", func(c *Config) { c.Web = WebConfig{Enabled: true, Port: 8080, AuthRequired: true} }},
		{"database without path", func(c *Config) { c.Database = DatabaseConfig{Enabled: true} }},
		{"negative retention", func(c *Config) { c.Database = DatabaseConfig{Path: "x.db", Retention: -time.Hour} }},
		{"radioid without database", func(c *Config) { c.RadioID = RadioIDConfig{Enabled: true, URL: "http://x"} }},
		{"mqtt without broker", func(c *Config) { c.MQTT = MQTTConfig{Enabled: true} }},
		{"mqtt qos out of range", func(c *Config) { c.MQTT = MQTTConfig{Enabled: true, Broker: "tcp://b:1883", QoS: 3} }},
		{"metrics path without slash", func(c *Config) {
			c.Metrics = MetricsConfig{Enabled: true, Prometheus: PrometheusConfig{Enabled: true, Port: 9090, Path: "metrics"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validate(base()))
	})
}
