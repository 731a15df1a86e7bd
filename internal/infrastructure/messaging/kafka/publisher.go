package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/telemetry"
	"github.com/chem4word/chem4word/pkg/errors"
)

// ErrPublisherClosed is returned by Write after Close.
var ErrPublisherClosed = errors.New(errors.CodeTelemetry, "publisher closed")

// PublisherConfig holds configuration for the TelemetryPublisher.
type PublisherConfig struct {
	Brokers          []string
	Topic            string
	Acks             string
	MaxRetries       int
	BatchTimeout     time.Duration
	WriteTimeout     time.Duration
	MaxMessageBytes  int
	CompressionCodec string
}

// PublisherMetrics holds publisher counters.
type PublisherMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TelemetryPublisher writes telemetry events to a Kafka topic.  It
// implements telemetry.Sink.
type TelemetryPublisher struct {
	writer  WriterInterface
	config  PublisherConfig
	logger  logging.Logger
	closed  atomic.Bool
	metrics *PublisherMetrics
}

var _ telemetry.Sink = (*TelemetryPublisher)(nil)

// NewTelemetryPublisher creates a publisher backed by a kafka.Writer.
func NewTelemetryPublisher(cfg PublisherConfig, logger logging.Logger) (*TelemetryPublisher, error) {
	if err := ValidatePublisherConfig(cfg); err != nil {
		return nil, err
	}
	cfg = withPublisherDefaults(cfg)

	var acks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		acks = kafka.RequireNone
	case "all":
		acks = kafka.RequireAll
	default:
		acks = kafka.RequireOne
	}

	var compression kafka.Compression
	switch cfg.CompressionCodec {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: acks,
		Compression:  compression,
	}
	return newTelemetryPublisher(writer, cfg, logger), nil
}

func newTelemetryPublisher(w WriterInterface, cfg PublisherConfig, logger logging.Logger) *TelemetryPublisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TelemetryPublisher{
		writer:  w,
		config:  withPublisherDefaults(cfg),
		logger:  logger,
		metrics: &PublisherMetrics{},
	}
}

func withPublisherDefaults(cfg PublisherConfig) PublisherConfig {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 1024 * 1024
	}
	return cfg
}

// Write publishes one event.
func (p *TelemetryPublisher) Write(ctx context.Context, ev telemetry.Event) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}

	// The writer owns the topic; messages must not set one.
	msg, err := NewEventEnvelope(ev).ToMessage("")
	if err != nil {
		return err
	}
	if len(msg.Value) > p.config.MaxMessageBytes {
		return errors.New(errors.CodeTelemetry, "message too large")
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrap(err, errors.CodeTelemetry, "publish failed")
	}
	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(msg.Value)))

	p.logger.Debug("telemetry published",
		logging.String("topic", p.config.Topic),
		logging.String("source", ev.Source),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// Sent returns the number of messages written successfully.
func (p *TelemetryPublisher) Sent() int64 { return p.metrics.MessagesSent.Load() }

// Failed returns the number of failed writes.
func (p *TelemetryPublisher) Failed() int64 { return p.metrics.MessagesFailed.Load() }

// Close flushes and closes the writer.  Further calls are no-ops.
func (p *TelemetryPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("telemetry publisher closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

// ValidatePublisherConfig checks the fields NewTelemetryPublisher needs.
func ValidatePublisherConfig(cfg PublisherConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.InvalidParam("brokers required")
	}
	if cfg.MaxRetries < 0 {
		return errors.InvalidParam("max retries must be >= 0")
	}
	return nil
}
