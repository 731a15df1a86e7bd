// Package config defines the configuration structures for chem4word.  No I/O
// or parsing logic lives in this file, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds logger construction parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// CMLConfig holds the CML codec and editing session tunables.
type CMLConfig struct {
	// Indent is the number of spaces used per nesting level on export.
	// Zero writes the document on a single line.
	Indent int `mapstructure:"indent"`

	// DefaultNamespace makes the exporter emit unprefixed elements in the
	// default CML namespace instead of the cml: prefix.
	DefaultNamespace bool `mapstructure:"default_namespace"`

	// UndoDepth bounds the number of snapshots kept by an editing session.
	UndoDepth int `mapstructure:"undo_depth"`

	// MaxErrors rejects an import whose model carries more error messages.
	// Zero disables the check.
	MaxErrors int `mapstructure:"max_errors"`
}

// StorageConfig holds the MinIO parameters of the document part store.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// CacheConfig holds the Redis parameters of the part cache.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// TelemetryConfig holds the Kafka parameters of the telemetry publisher.
type TelemetryConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Brokers   []string `mapstructure:"brokers"`
	Topic     string   `mapstructure:"topic"`
	MachineID string   `mapstructure:"machine_id"`
}

// MetricsConfig holds the Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Namespace  string `mapstructure:"namespace"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	CML       CMLConfig       `mapstructure:"cml"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// CML
	if c.CML.Indent < 0 || c.CML.Indent > 8 {
		return fmt.Errorf("config: cml.indent %d is out of range [0, 8]", c.CML.Indent)
	}
	if c.CML.UndoDepth < 1 {
		return fmt.Errorf("config: cml.undo_depth must be ≥ 1, got %d", c.CML.UndoDepth)
	}
	if c.CML.MaxErrors < 0 {
		return fmt.Errorf("config: cml.max_errors must be ≥ 0, got %d", c.CML.MaxErrors)
	}

	// Storage
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("config: storage.endpoint is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("config: storage.bucket is required")
	}

	// Cache
	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("config: cache.addr is required when the cache is enabled")
		}
		if c.Cache.DB < 0 {
			return fmt.Errorf("config: cache.db must be ≥ 0, got %d", c.Cache.DB)
		}
		if c.Cache.TTL < 0 {
			return fmt.Errorf("config: cache.ttl must not be negative")
		}
	}

	// Telemetry
	if c.Telemetry.Enabled {
		if len(c.Telemetry.Brokers) == 0 {
			return fmt.Errorf("config: telemetry.brokers must contain at least one broker address")
		}
		if c.Telemetry.Topic == "" {
			return fmt.Errorf("config: telemetry.topic is required when telemetry is enabled")
		}
	}

	// Metrics
	if c.Metrics.Enabled {
		if c.Metrics.Namespace == "" {
			return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
		}
		if c.Metrics.ListenAddr == "" {
			return fmt.Errorf("config: metrics.listen_addr is required when metrics are enabled")
		}
	}

	return nil
}
