package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/telemetry"
	"github.com/chem4word/chem4word/pkg/errors"
)

// ReaderConfig holds configuration for the TelemetryReader.
type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventHandler receives decoded telemetry events.
type EventHandler func(ctx context.Context, ev telemetry.Event) error

// TelemetryReader consumes telemetry events from a topic.
type TelemetryReader struct {
	reader       ReaderInterface
	logger       logging.Logger
	retryBackoff time.Duration
}

// NewTelemetryReader creates a reader backed by a kafka.Reader.
func NewTelemetryReader(cfg ReaderConfig, logger logging.Logger) (*TelemetryReader, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidParam("brokers required")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "chem4word-telemetry"
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
	return newTelemetryReader(r, logger), nil
}

func newTelemetryReader(r ReaderInterface, logger logging.Logger) *TelemetryReader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TelemetryReader{reader: r, logger: logger, retryBackoff: time.Second}
}

// Run fetches messages until ctx is done, handing each decoded event to
// handler.  Messages that do not decode are logged and committed; a handler
// error stops Run without committing that message.
func (r *TelemetryReader) Run(ctx context.Context, handler EventHandler) error {
	for {
		m, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Error("fetch failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.retryBackoff):
			}
			continue
		}

		env, err := MessageToEventEnvelope(m)
		if err != nil {
			r.logger.Warn("skipping undecodable message",
				logging.Int64("offset", m.Offset), logging.Err(err))
		} else if err := handler(ctx, env.Event); err != nil {
			return err
		}

		if err := r.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			r.logger.Error("commit failed", logging.Err(err))
		}
	}
}

// Close closes the underlying reader.
func (r *TelemetryReader) Close() error { return r.reader.Close() }
