// Package kafka carries telemetry events over Kafka: TelemetryPublisher is a
// telemetry.Sink, TelemetryReader consumes what publishers wrote.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/chem4word/chem4word/internal/infrastructure/monitoring/telemetry"
	"github.com/chem4word/chem4word/pkg/errors"
)

// DefaultTopic is the telemetry topic used when none is configured.
const DefaultTopic = "chem4word.telemetry"

const (
	eventTypeTelemetry = "telemetry"
	schemaVersion      = "v1"

	headerEventType     = "event_type"
	headerSchemaVersion = "schema_version"
)

// EventEnvelope wraps a telemetry event on the wire.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	SchemaVersion string          `json:"schema_version"`
	Timestamp     time.Time       `json:"timestamp"`
	Event         telemetry.Event `json:"event"`
}

// NewEventEnvelope wraps ev with a fresh event id.
func NewEventEnvelope(ev telemetry.Event) *EventEnvelope {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventTypeTelemetry,
		SchemaVersion: schemaVersion,
		Timestamp:     ts,
		Event:         ev,
	}
}

// ToMessage renders the envelope as a Kafka message on topic, keyed by the
// event's machine id.
func (e *EventEnvelope) ToMessage(topic string) (kafka.Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, errors.Wrap(err, errors.CodeTelemetry, "failed to marshal envelope")
	}
	return kafka.Message{
		Topic: topic,
		Key:   e.Event.Key(),
		Value: val,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(e.EventType)},
			{Key: headerSchemaVersion, Value: []byte(e.SchemaVersion)},
		},
	}, nil
}

// MessageToEventEnvelope decodes a message written by ToMessage.
func MessageToEventEnvelope(msg kafka.Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.CodeTelemetry, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.CodeTelemetry, "failed to unmarshal envelope")
	}
	if env.EventType != eventTypeTelemetry {
		return nil, errors.New(errors.CodeTelemetry, "unexpected event type").WithDetail(env.EventType)
	}
	return &env, nil
}
