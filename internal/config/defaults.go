package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultCMLIndent    = 2
	DefaultUndoDepth    = 50
	DefaultCMLMaxErrors = 0

	DefaultStorageEndpoint = "localhost:9000"
	DefaultStorageBucket   = "chem4word-parts"
	DefaultStoragePrefix   = "parts/"

	DefaultCacheAddr      = "localhost:6379"
	DefaultCacheTTL       = time.Hour
	DefaultCacheKeyPrefix = "c4w:part:"

	DefaultTelemetryBroker = "localhost:9092"
	DefaultTelemetryTopic  = "chem4word.telemetry"

	DefaultMetricsNamespace  = "chem4word"
	DefaultMetricsListenAddr = ":9091"
)

// NewDefaultConfig returns a Config with every field set to its default.
func NewDefaultConfig() *Config {
	cfg := &Config{CML: CMLConfig{Indent: DefaultCMLIndent}}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.  Values
// already set by the caller are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── CML ───────────────────────────────────────────────────────────────────
	// Indent 0 is a valid explicit value (single-line output); the viper
	// default covers the unset case when loading.
	if cfg.CML.UndoDepth == 0 {
		cfg.CML.UndoDepth = DefaultUndoDepth
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.Endpoint == "" {
		cfg.Storage.Endpoint = DefaultStorageEndpoint
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = DefaultStorageBucket
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = DefaultStoragePrefix
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}

	// ── Telemetry ─────────────────────────────────────────────────────────────
	if len(cfg.Telemetry.Brokers) == 0 {
		cfg.Telemetry.Brokers = []string{DefaultTelemetryBroker}
	}
	if cfg.Telemetry.Topic == "" {
		cfg.Telemetry.Topic = DefaultTelemetryTopic
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = DefaultMetricsListenAddr
	}
}

// setViperDefaults registers every key with v so that AutomaticEnv can
// override keys that are absent from the config file.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stderr"})

	v.SetDefault("cml.indent", DefaultCMLIndent)
	v.SetDefault("cml.default_namespace", false)
	v.SetDefault("cml.undo_depth", DefaultUndoDepth)
	v.SetDefault("cml.max_errors", DefaultCMLMaxErrors)

	v.SetDefault("storage.endpoint", DefaultStorageEndpoint)
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", DefaultStorageBucket)
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.prefix", DefaultStoragePrefix)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", DefaultCacheAddr)
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.key_prefix", DefaultCacheKeyPrefix)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.brokers", []string{DefaultTelemetryBroker})
	v.SetDefault("telemetry.topic", DefaultTelemetryTopic)
	v.SetDefault("telemetry.machine_id", "")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.listen_addr", DefaultMetricsListenAddr)
}
