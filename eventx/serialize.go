package eventx

import (
	"encoding/json"
	"time"
)

// SerializableEvent is the JSON form of an event on the wire
type SerializableEvent struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Source    string            `json:"source"`
	Data      json.RawMessage   `json:"data"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ToJSON serializes an event to JSON
func ToJSON(event Event) ([]byte, error) {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return nil, serializationError(err, event.ID(), event.Type())
	}

	out, err := json.Marshal(SerializableEvent{
		ID:        event.ID(),
		Type:      event.Type(),
		Timestamp: event.Timestamp(),
		Source:    event.Source(),
		Data:      data,
		Metadata:  event.Metadata(),
	})
	if err != nil {
		return nil, serializationError(err, event.ID(), event.Type())
	}
	return out, nil
}

// FromJSON deserializes an event, keeping its id and timestamp
func FromJSON[T any](raw []byte) (TypedEvent[T], error) {
	var se SerializableEvent
	if err := json.Unmarshal(raw, &se); err != nil {
		return nil, serializationError(err, "", "")
	}

	var data T
	if err := json.Unmarshal(se.Data, &data); err != nil {
		return nil, serializationError(err, se.ID, se.Type)
	}

	opts := []Option{WithID(se.ID), WithTimestamp(se.Timestamp), WithSource(se.Source)}
	for k, v := range se.Metadata {
		opts = append(opts, WithMetadata(k, v))
	}
	return NewEvent(se.Type, data, opts...), nil
}

func serializationError(err error, id, eventType string) error {
	return ErrorRegistry.New(ErrSerializationFailed).
		WithCause(err).
		WithDetail("event_id", id).
		WithDetail("event_type", eventType)
}
