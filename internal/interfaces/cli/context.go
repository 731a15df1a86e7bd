package cli

import (
	"context"
	"os"
	"sync"
	"time"

	appchem "github.com/chem4word/chem4word/internal/application/chemistry"
	"github.com/chem4word/chem4word/internal/config"
	"github.com/chem4word/chem4word/internal/infrastructure/cml"
	"github.com/chem4word/chem4word/internal/infrastructure/database/redis"
	"github.com/chem4word/chem4word/internal/infrastructure/messaging/kafka"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/prometheus"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/telemetry"
	"github.com/chem4word/chem4word/internal/infrastructure/storage/minio"
	"github.com/chem4word/chem4word/pkg/errors"
)

// PartBackend is the part store as seen by the store commands.
type PartBackend interface {
	appchem.PartStore
	List(ctx context.Context) ([]minio.PartInfo, error)
}

// TelemetrySource streams telemetry events back out of the broker.
type TelemetrySource interface {
	Run(ctx context.Context, handler kafka.EventHandler) error
	Close() error
}

// Providers construct the backends a command needs.  Each returns the
// backend and a function releasing it.
type Providers struct {
	Store           func(ctx context.Context, cfg *config.Config, log logging.Logger) (PartBackend, func() error, error)
	Cache           func(ctx context.Context, cfg *config.Config, log logging.Logger) (appchem.PartCache, func() error, error)
	TelemetrySink   func(cfg *config.Config, log logging.Logger) (telemetry.Sink, error)
	TelemetrySource func(cfg *config.Config, log logging.Logger) (TelemetrySource, error)
}

// DefaultProviders connects to MinIO, Redis and Kafka as configured.
func DefaultProviders() Providers {
	return Providers{
		Store: func(ctx context.Context, cfg *config.Config, log logging.Logger) (PartBackend, func() error, error) {
			store, err := minio.NewPartStore(ctx, minio.Config{
				Endpoint:  cfg.Storage.Endpoint,
				AccessKey: cfg.Storage.AccessKey,
				SecretKey: cfg.Storage.SecretKey,
				UseSSL:    cfg.Storage.UseSSL,
				Region:    cfg.Storage.Region,
				Bucket:    cfg.Storage.Bucket,
				Prefix:    cfg.Storage.Prefix,
			}, log.Named("store"))
			if err != nil {
				return nil, nil, err
			}
			return store, func() error { return nil }, nil
		},
		Cache: func(ctx context.Context, cfg *config.Config, log logging.Logger) (appchem.PartCache, func() error, error) {
			cache, rdb, err := redis.NewPartCacheFromConfig(ctx, redis.Config{
				Addr:      cfg.Cache.Addr,
				Password:  cfg.Cache.Password,
				DB:        cfg.Cache.DB,
				TTL:       cfg.Cache.TTL,
				KeyPrefix: cfg.Cache.KeyPrefix,
			}, log.Named("cache"))
			if err != nil {
				return nil, nil, err
			}
			return cache, rdb.Close, nil
		},
		TelemetrySink: func(cfg *config.Config, log logging.Logger) (telemetry.Sink, error) {
			if !cfg.Telemetry.Enabled {
				return telemetry.NewLoggerSink(log), nil
			}
			return kafka.NewTelemetryPublisher(kafka.PublisherConfig{
				Brokers: cfg.Telemetry.Brokers,
				Topic:   cfg.Telemetry.Topic,
			}, log.Named("telemetry"))
		},
		TelemetrySource: func(cfg *config.Config, log logging.Logger) (TelemetrySource, error) {
			return kafka.NewTelemetryReader(kafka.ReaderConfig{
				Brokers: cfg.Telemetry.Brokers,
				Topic:   cfg.Telemetry.Topic,
			}, log.Named("telemetry"))
		},
	}
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	Collector    prometheus.MetricsCollector
	Metrics      *prometheus.ChemistryMetrics
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration

	providers Providers
	emitter   *telemetry.Emitter

	mu      sync.Mutex
	closers []func() error
}

func newCLIContext(cfg *config.Config, logger logging.Logger, opts *RootOptions, providers Providers) (*CLIContext, error) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:       cfg.Metrics.Namespace,
		EnableGoMetrics: true,
	}, logger.Named("metrics"))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigInvalid, "failed to create metrics collector")
	}

	c := &CLIContext{
		Config:       cfg,
		ConfigPath:   opts.ConfigPath,
		Logger:       logger,
		Collector:    collector,
		Metrics:      prometheus.NewChemistryMetrics(collector),
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
		Timeout:      opts.Timeout,
		providers:    providers,
	}

	var sink telemetry.Sink
	if providers.TelemetrySink != nil {
		sink, err = providers.TelemetrySink(cfg, logger)
		if err != nil {
			logger.Warn("telemetry disabled", logging.Err(err))
			sink = nil
		}
	}
	c.emitter = telemetry.NewEmitter(sink, machineID(cfg), logger)
	c.addCloser(c.emitter.Close)
	return c, nil
}

func machineID(cfg *config.Config) string {
	if cfg.Telemetry.MachineID != "" {
		return cfg.Telemetry.MachineID
	}
	host, _ := os.Hostname()
	return host
}

func (c *CLIContext) addCloser(fn func() error) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.closers = append(c.closers, fn)
	c.mu.Unlock()
}

// Close releases every backend opened by the command, newest first.
func (c *CLIContext) Close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Converter returns a CML converter configured from the cml section.
func (c *CLIContext) Converter(opts ...cml.Option) *cml.Converter {
	return c.converterFor(c.Config, opts...)
}

func (c *CLIContext) converterFor(cfg *config.Config, opts ...cml.Option) *cml.Converter {
	base := []cml.Option{
		cml.WithLogger(c.Logger.Named("cml")),
		cml.WithIndent(cfg.CML.Indent),
		cml.WithDefaultNamespace(cfg.CML.DefaultNamespace),
	}
	return cml.NewConverter(append(base, opts...)...)
}

func serviceConfig(cfg *config.Config) appchem.ServiceConfig {
	return appchem.ServiceConfig{
		MaxErrors: cfg.CML.MaxErrors,
		UndoDepth: cfg.CML.UndoDepth,
	}
}

// LocalService returns a service without part storage.
func (c *CLIContext) LocalService() appchem.Service {
	return c.localServiceFor(c.Config)
}

// localServiceFor is LocalService with the cml settings of cfg.
func (c *CLIContext) localServiceFor(cfg *config.Config) appchem.Service {
	return appchem.NewService(c.converterFor(cfg), serviceConfig(cfg),
		appchem.WithMetrics(c.Metrics),
		appchem.WithTelemetry(c.emitter),
		appchem.WithLogger(c.Logger),
	)
}

// StoreService connects the part store, and the cache when enabled, and
// returns a service using them together with the raw store.
func (c *CLIContext) StoreService(ctx context.Context) (appchem.Service, PartBackend, error) {
	if c.providers.Store == nil {
		return nil, nil, errors.New(errors.CodeConfigInvalid, "part store not configured")
	}
	store, release, err := c.providers.Store(ctx, c.Config, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	c.addCloser(release)

	opts := []appchem.ServiceOption{
		appchem.WithPartStore(store),
		appchem.WithMetrics(c.Metrics),
		appchem.WithTelemetry(c.emitter),
		appchem.WithLogger(c.Logger),
	}
	if c.Config.Cache.Enabled && c.providers.Cache != nil {
		cache, release, err := c.providers.Cache(ctx, c.Config, c.Logger)
		if err != nil {
			c.Logger.Warn("part cache unavailable, continuing without it", logging.Err(err))
		} else {
			c.addCloser(release)
			opts = append(opts, appchem.WithPartCache(cache))
		}
	}
	return appchem.NewService(c.Converter(), serviceConfig(c.Config), opts...), store, nil
}

// TelemetrySource opens the telemetry reader.
func (c *CLIContext) TelemetrySource() (TelemetrySource, error) {
	if !c.Config.Telemetry.Enabled || c.providers.TelemetrySource == nil {
		return nil, errors.New(errors.CodeConfigInvalid, "telemetry is not enabled")
	}
	src, err := c.providers.TelemetrySource(c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	c.addCloser(src.Close)
	return src, nil
}
