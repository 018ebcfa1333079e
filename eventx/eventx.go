package eventx

import (
	"time"

	"github.com/google/uuid"
)

// Event is the base interface for all events
type Event interface {
	ID() string
	Type() string
	Timestamp() time.Time
	Source() string
	Payload() any
	Metadata() map[string]string
}

// TypedEvent provides type-safe access to event data
type TypedEvent[T any] interface {
	Event
	Data() T
}

// Option configures a new event
type Option func(*eventOptions)

type eventOptions struct {
	id        string
	source    string
	timestamp time.Time
	metadata  map[string]string
}

func WithSource(source string) Option {
	return func(o *eventOptions) { o.source = source }
}

// WithID replaces the generated id; used when rebuilding a received event.
func WithID(id string) Option {
	return func(o *eventOptions) { o.id = id }
}

func WithTimestamp(ts time.Time) Option {
	return func(o *eventOptions) { o.timestamp = ts }
}

func WithMetadata(key, value string) Option {
	return func(o *eventOptions) { o.metadata[key] = value }
}

// BaseEvent implements TypedEvent for any payload type
type BaseEvent[T any] struct {
	id        string
	eventType string
	timestamp time.Time
	source    string
	data      T
	metadata  map[string]string
}

// NewEvent creates a new typed event with a fresh UUID
func NewEvent[T any](eventType string, data T, opts ...Option) TypedEvent[T] {
	options := eventOptions{
		source:   DefaultSource,
		metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.id == "" {
		options.id = uuid.New().String()
	}
	if options.timestamp.IsZero() {
		options.timestamp = time.Now().UTC()
	}

	return &BaseEvent[T]{
		id:        options.id,
		eventType: eventType,
		timestamp: options.timestamp,
		source:    options.source,
		data:      data,
		metadata:  options.metadata,
	}
}

func (e *BaseEvent[T]) ID() string                  { return e.id }
func (e *BaseEvent[T]) Type() string                { return e.eventType }
func (e *BaseEvent[T]) Timestamp() time.Time        { return e.timestamp }
func (e *BaseEvent[T]) Source() string              { return e.source }
func (e *BaseEvent[T]) Payload() any                { return e.data }
func (e *BaseEvent[T]) Metadata() map[string]string { return e.metadata }
func (e *BaseEvent[T]) Data() T                     { return e.data }
