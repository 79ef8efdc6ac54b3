package config

import (
	"fmt"
	"strings"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Decoder.QueueSize <= 0 {
		return fmt.Errorf("decoder.queue_size must be positive")
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}

	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
		if cfg.Web.AuthRequired && (cfg.Web.Username == "" || cfg.Web.Password == "") {
			return fmt.Errorf("web.username and web.password are required when web.auth_required is set")
		}
	}

	if cfg.Database.Enabled && cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required when database is enabled")
	}
	if cfg.Database.Retention < 0 {
		return fmt.Errorf("database.retention must not be negative")
	}

	if cfg.RadioID.Enabled {
		if !cfg.Database.Enabled {
			return fmt.Errorf("radioid requires database to be enabled")
		}
		if cfg.RadioID.URL == "" {
			return fmt.Errorf("radioid.url is required when radioid is enabled")
		}
	}

	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
		if cfg.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
		if !strings.HasPrefix(cfg.Metrics.Prometheus.Path, "/") {
			return fmt.Errorf("metrics.prometheus.path must start with /")
		}
	}

	return nil
}
