// Package telemetry defines the usage-event contract shared by the document
// service and the CLI, with a logger-backed Sink for local runs.
package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/logging"
	"github.com/chem4word/chem4word/pkg/errors"
)

// Level classifies an Event.
type Level string

const (
	LevelInformation Level = "Information"
	LevelWarning     Level = "Warning"
	LevelError       Level = "Error"
)

// Event is one telemetry record.
type Event struct {
	Time      time.Time         `json:"time"`
	MachineID string            `json:"machine_id,omitempty"`
	Source    string            `json:"source"`
	Level     Level             `json:"level"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Key partitions events per machine so one machine's events stay ordered.
func (e Event) Key() []byte {
	if e.MachineID == "" {
		return nil
	}
	return []byte(e.MachineID)
}

// Encode renders e as JSON.
func (e Event) Encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTelemetry, "failed to encode telemetry event")
	}
	return b, nil
}

// Sink receives telemetry events.
type Sink interface {
	Write(ctx context.Context, ev Event) error
	Close() error
}

// ─── Emitter ────────────────────────────────────────────────────────────────

// Emitter stamps events with the time and machine id and forwards them to a
// Sink.  Sink failures are logged and returned.
type Emitter struct {
	sink      Sink
	machineID string
	logger    logging.Logger
	now       func() time.Time
}

// NewEmitter returns an Emitter.  A nil sink discards events.
func NewEmitter(sink Sink, machineID string, logger logging.Logger) *Emitter {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Emitter{sink: sink, machineID: machineID, logger: logger, now: time.Now}
}

// Emit sends one event.
func (e *Emitter) Emit(ctx context.Context, source string, level Level, message string, fields map[string]string) error {
	ev := Event{
		Time:      e.now().UTC(),
		MachineID: e.machineID,
		Source:    source,
		Level:     level,
		Message:   message,
		Fields:    fields,
	}
	if err := e.sink.Write(ctx, ev); err != nil {
		e.logger.Warn("telemetry write failed", logging.String("source", source), logging.Err(err))
		return err
	}
	return nil
}

// Close closes the underlying sink.
func (e *Emitter) Close() error { return e.sink.Close() }

// ─── Sinks ──────────────────────────────────────────────────────────────────

// NopSink discards events.
type NopSink struct{}

func (NopSink) Write(context.Context, Event) error { return nil }
func (NopSink) Close() error                       { return nil }

// LoggerSink writes each event as a log line.
type LoggerSink struct {
	logger logging.Logger
}

// NewLoggerSink returns a Sink writing to logger under the "telemetry" name.
func NewLoggerSink(logger logging.Logger) *LoggerSink {
	return &LoggerSink{logger: logger.Named("telemetry")}
}

func (s *LoggerSink) Write(_ context.Context, ev Event) error {
	fields := []logging.Field{
		logging.String("source", ev.Source),
		logging.String("machine_id", ev.MachineID),
	}
	for k, v := range ev.Fields {
		fields = append(fields, logging.String(k, v))
	}
	switch ev.Level {
	case LevelError:
		s.logger.Error(ev.Message, fields...)
	case LevelWarning:
		s.logger.Warn(ev.Message, fields...)
	default:
		s.logger.Info(ev.Message, fields...)
	}
	return nil
}

func (s *LoggerSink) Close() error { return nil }

// MemorySink keeps events in memory.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *MemorySink) Write(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New(errors.CodeTelemetry, "sink closed")
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Events returns a copy of the events written so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}
